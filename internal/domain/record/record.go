// Package record defines the searchable content records and the per-entity
// field registry the index and scorer operate on.
package record

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chemlab-cloud/chemsearch/internal/domain"
)

// EntityType identifies the variant of a searchable record.
type EntityType string

// Entity type constants.
const (
	Compound    EntityType = "compound"
	Element     EntityType = "element"
	Calculator  EntityType = "calculator"
	HelpArticle EntityType = "help_article"
)

// IsValid checks if the entity type is one of the supported values.
func (t EntityType) IsValid() bool {
	return t == Compound || t == Element || t == Calculator || t == HelpArticle
}

// Difficulty levels for calculators.
const (
	DifficultyBasic        = "basic"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Record is a tagged union over the four content variants. Exactly one of the
// variant payloads is set, matching Type.
type Record struct {
	ID        string     `json:"id"`
	Type      EntityType `json:"type"`
	Title     string     `json:"title"`
	Tags      []string   `json:"tags,omitempty"`
	URL       string     `json:"url"`
	Category  string     `json:"category,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`

	Compound   *CompoundAttrs   `json:"compound,omitempty"`
	Element    *ElementAttrs    `json:"element,omitempty"`
	Calculator *CalculatorAttrs `json:"calculator,omitempty"`
	Help       *HelpAttrs       `json:"help,omitempty"`
}

// CompoundAttrs holds compound-specific attributes.
type CompoundAttrs struct {
	Formula       string   `json:"formula"`
	MolecularMass float64  `json:"molecular_mass,omitempty"`
	CASNumber     string   `json:"cas_number,omitempty"`
	HazardTags    []string `json:"hazard_tags,omitempty"`
}

// ElementAttrs holds element-specific attributes.
type ElementAttrs struct {
	AtomicNumber          int    `json:"atomic_number"`
	Group                 int    `json:"group,omitempty"`
	Period                int    `json:"period,omitempty"`
	Block                 string `json:"block,omitempty"`
	ElectronConfiguration string `json:"electron_configuration,omitempty"`
}

// CalculatorAttrs holds calculator-specific attributes.
type CalculatorAttrs struct {
	Difficulty       string `json:"difficulty,omitempty"`
	EducationalLevel string `json:"educational_level,omitempty"`
}

// HelpAttrs holds help-article-specific attributes.
type HelpAttrs struct {
	Content       string   `json:"content"`
	RelatedTopics []string `json:"related_topics,omitempty"`
}

// Validate checks structural invariants: required identity fields, a variant
// payload matching the entity type, and numeric domain ranges.
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidRecord)
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: unknown entity type %q", domain.ErrInvalidRecord, r.Type)
	}
	if r.Title == "" {
		return fmt.Errorf("%w: title is required for %q", domain.ErrInvalidRecord, r.ID)
	}

	switch r.Type {
	case Compound:
		if r.Compound == nil {
			return fmt.Errorf("%w: %q has no compound attributes", domain.ErrInvalidRecord, r.ID)
		}
		if m := r.Compound.MolecularMass; m != 0 && (m < 0 || math.IsNaN(m) || math.IsInf(m, 0)) {
			return fmt.Errorf("%w: %q has invalid molecular mass", domain.ErrInvalidRecord, r.ID)
		}
	case Element:
		if r.Element == nil {
			return fmt.Errorf("%w: %q has no element attributes", domain.ErrInvalidRecord, r.ID)
		}
		if z := r.Element.AtomicNumber; z < 1 || z > 118 {
			return fmt.Errorf("%w: %q atomic number %d out of range [1,118]", domain.ErrInvalidRecord, r.ID, z)
		}
	case Calculator:
		if r.Calculator == nil {
			return fmt.Errorf("%w: %q has no calculator attributes", domain.ErrInvalidRecord, r.ID)
		}
		switch r.Calculator.Difficulty {
		case "", DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
		default:
			return fmt.Errorf("%w: %q has unknown difficulty %q",
				domain.ErrInvalidRecord, r.ID, r.Calculator.Difficulty)
		}
	case HelpArticle:
		if r.Help == nil {
			return fmt.Errorf("%w: %q has no help attributes", domain.ErrInvalidRecord, r.ID)
		}
	}
	return nil
}

// Text returns the raw text value of a text or tag field, and whether the
// field is present for this record. Multi-valued fields are joined with spaces.
func (r *Record) Text(field string) (string, bool) {
	switch field {
	case FieldTitle:
		return r.Title, r.Title != ""
	case FieldTags:
		return strings.Join(r.Tags, " "), len(r.Tags) > 0
	case FieldCategory:
		return r.Category, r.Category != ""
	}

	switch {
	case r.Compound != nil:
		switch field {
		case FieldFormula:
			return r.Compound.Formula, r.Compound.Formula != ""
		case FieldCASNumber:
			return r.Compound.CASNumber, r.Compound.CASNumber != ""
		case FieldHazardTags:
			return strings.Join(r.Compound.HazardTags, " "), len(r.Compound.HazardTags) > 0
		}
	case r.Element != nil:
		switch field {
		case FieldBlock:
			return r.Element.Block, r.Element.Block != ""
		case FieldElectronConfiguration:
			return r.Element.ElectronConfiguration, r.Element.ElectronConfiguration != ""
		}
	case r.Calculator != nil:
		switch field {
		case FieldDifficulty:
			return r.Calculator.Difficulty, r.Calculator.Difficulty != ""
		case FieldEducationalLevel:
			return r.Calculator.EducationalLevel, r.Calculator.EducationalLevel != ""
		}
	case r.Help != nil:
		switch field {
		case FieldContent:
			return r.Help.Content, r.Help.Content != ""
		case FieldRelatedTopics:
			return strings.Join(r.Help.RelatedTopics, " "), len(r.Help.RelatedTopics) > 0
		}
	}
	return "", false
}

// Numeric returns the value of a numeric field, and whether the field is
// present for this record. A zero molecular mass counts as absent (the source
// datasets use zero for "unknown").
func (r *Record) Numeric(field string) (float64, bool) {
	switch {
	case r.Compound != nil && field == FieldMolecularMass:
		return r.Compound.MolecularMass, r.Compound.MolecularMass > 0
	case r.Element != nil:
		switch field {
		case FieldAtomicNumber:
			return float64(r.Element.AtomicNumber), r.Element.AtomicNumber > 0
		case FieldGroup:
			return float64(r.Element.Group), r.Element.Group > 0
		case FieldPeriod:
			return float64(r.Element.Period), r.Element.Period > 0
		}
	}
	return 0, false
}

// Values returns the value set of a tag field for enum filtering. Scalar tag
// fields yield a single-element set.
func (r *Record) Values(field string) []string {
	switch field {
	case FieldTags:
		return r.Tags
	case FieldHazardTags:
		if r.Compound != nil {
			return r.Compound.HazardTags
		}
	case FieldRelatedTopics:
		if r.Help != nil {
			return r.Help.RelatedTopics
		}
	default:
		if v, ok := r.Text(field); ok {
			return []string{v}
		}
	}
	return nil
}
