package record

// Kind is the indexing kind of a field.
type Kind string

// Field kind constants.
const (
	// Text fields are tokenized and fuzzy-matched.
	Text Kind = "text"
	// Tag fields hold enumerated values matched exactly (case-insensitive).
	Tag Kind = "tag"
	// NumericKind fields support range filters and numeric sorts.
	NumericKind Kind = "numeric"
)

// Canonical field names. Filters, weights, and sort keys resolve to these.
const (
	FieldTitle                 = "title"
	FieldTags                  = "tags"
	FieldCategory              = "category"
	FieldFormula               = "formula"
	FieldMolecularMass         = "molecular_mass"
	FieldCASNumber             = "cas_number"
	FieldHazardTags            = "hazard_tags"
	FieldAtomicNumber          = "atomic_number"
	FieldGroup                 = "group"
	FieldPeriod                = "period"
	FieldBlock                 = "block"
	FieldElectronConfiguration = "electron_configuration"
	FieldDifficulty            = "difficulty"
	FieldEducationalLevel      = "educational_level"
	FieldContent               = "content"
	FieldRelatedTopics         = "related_topics"
)

// Def describes an indexed field: its name, kind, and whether it holds a set
// of values rather than a scalar.
type Def struct {
	Name  string
	Kind  Kind
	Multi bool
}

var commonFields = []Def{
	{Name: FieldTitle, Kind: Text},
	{Name: FieldTags, Kind: Tag, Multi: true},
	{Name: FieldCategory, Kind: Tag},
}

var variantFields = map[EntityType][]Def{
	Compound: {
		{Name: FieldFormula, Kind: Text},
		{Name: FieldCASNumber, Kind: Text},
		{Name: FieldHazardTags, Kind: Tag, Multi: true},
		{Name: FieldMolecularMass, Kind: NumericKind},
	},
	Element: {
		{Name: FieldElectronConfiguration, Kind: Text},
		{Name: FieldBlock, Kind: Tag},
		{Name: FieldAtomicNumber, Kind: NumericKind},
		{Name: FieldGroup, Kind: NumericKind},
		{Name: FieldPeriod, Kind: NumericKind},
	},
	Calculator: {
		{Name: FieldDifficulty, Kind: Tag},
		{Name: FieldEducationalLevel, Kind: Tag},
	},
	HelpArticle: {
		{Name: FieldContent, Kind: Text},
		{Name: FieldRelatedTopics, Kind: Tag, Multi: true},
	},
}

// Fields returns the applicable field definitions for an entity type,
// common fields first. The order is stable.
func Fields(t EntityType) []Def {
	defs := make([]Def, 0, len(commonFields)+len(variantFields[t]))
	defs = append(defs, commonFields...)
	defs = append(defs, variantFields[t]...)
	return defs
}

var fieldIndex = func() map[string]Def {
	m := make(map[string]Def)
	for _, d := range commonFields {
		m[d.Name] = d
	}
	for _, defs := range variantFields {
		for _, d := range defs {
			m[d.Name] = d
		}
	}
	return m
}()

// FieldByName resolves a canonical field name across all entity types.
// Unknown names are how misspelled weights and filters get caught at
// startup instead of silently scoring zero.
func FieldByName(name string) (Def, bool) {
	d, ok := fieldIndex[name]
	return d, ok
}
