// Package query parses the raw search query language into a structured form.
//
// Grammar (order-independent, left to right): double-quoted phrases, NOT
// negation, OR disjunction chains, field:value and field:min-max filter
// tokens, and plain terms. Parsing never fails; fragments that do not parse
// degrade to plain terms.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
)

// FieldFilter is a single field:value constraint lifted out of the query text.
type FieldFilter struct {
	Field string
	Value string
}

// Range is a numeric field:min-max constraint. Nil bounds are open.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}

// Parsed is the structured result of parsing a raw query string.
type Parsed struct {
	MustInclude  []string
	MustExclude  []string
	ExactPhrases []string
	OrGroups     [][]string
	FieldFilters []FieldFilter
	Ranges       []Range
}

// IsEmpty reports whether the query carries no constraint at all.
// An empty query is valid and means "match everything".
func (p Parsed) IsEmpty() bool {
	return !p.HasTerms() && len(p.MustExclude) == 0 &&
		len(p.FieldFilters) == 0 && len(p.Ranges) == 0
}

// HasTerms reports whether any scoring signal (term, phrase, or OR group)
// is present.
func (p Parsed) HasTerms() bool {
	return len(p.MustInclude) > 0 || len(p.ExactPhrases) > 0 || len(p.OrGroups) > 0
}

// fieldAliases maps user-facing filter names to canonical field names.
// "type" is the entity-type pseudo-field handled by the filter engine.
var fieldAliases = map[string]string{
	"type":                   "type",
	"category":               record.FieldCategory,
	"tag":                    record.FieldTags,
	"tags":                   record.FieldTags,
	"formula":                record.FieldFormula,
	"cas":                    record.FieldCASNumber,
	"cas_number":             record.FieldCASNumber,
	"hazard":                 record.FieldHazardTags,
	"hazard_tags":            record.FieldHazardTags,
	"mw":                     record.FieldMolecularMass,
	"mass":                   record.FieldMolecularMass,
	"molecular_mass":         record.FieldMolecularMass,
	"z":                      record.FieldAtomicNumber,
	"atomic":                 record.FieldAtomicNumber,
	"atomic_number":          record.FieldAtomicNumber,
	"group":                  record.FieldGroup,
	"period":                 record.FieldPeriod,
	"block":                  record.FieldBlock,
	"difficulty":             record.FieldDifficulty,
	"level":                  record.FieldEducationalLevel,
	"educational_level":      record.FieldEducationalLevel,
	"topic":                  record.FieldRelatedTopics,
	"related_topics":         record.FieldRelatedTopics,
	"electron_configuration": record.FieldElectronConfiguration,
}

var rangeValueRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)-(\d+(?:\.\d+)?)$`)

// Parse turns a raw query string into a Parsed query. It never fails:
// malformed fragments become plain include terms.
func Parse(raw string) Parsed {
	var p Parsed

	var (
		negateNext bool
		orGroup    []string
		expectOr   bool
	)

	flushOr := func() {
		switch {
		case len(orGroup) >= 2:
			p.OrGroups = append(p.OrGroups, orGroup)
		case len(orGroup) == 1:
			p.MustInclude = appendUnique(p.MustInclude, orGroup[0])
		}
		orGroup = nil
		expectOr = false
	}

	for _, tk := range lex(raw) {
		if !tk.phrase {
			switch strings.ToUpper(tk.text) {
			case "NOT":
				negateNext = true
				continue
			case "OR":
				if len(orGroup) == 0 && len(p.MustInclude) > 0 {
					last := p.MustInclude[len(p.MustInclude)-1]
					p.MustInclude = p.MustInclude[:len(p.MustInclude)-1]
					orGroup = append(orGroup, last)
				}
				if len(orGroup) > 0 {
					expectOr = true
				}
				continue
			}
		}

		term := strings.ToLower(strings.TrimSpace(tk.text))
		if term == "" {
			negateNext = false
			continue
		}

		if negateNext {
			p.MustExclude = appendUnique(p.MustExclude, term)
			negateNext = false
			continue
		}

		if tk.phrase {
			flushOr()
			p.ExactPhrases = appendUnique(p.ExactPhrases, term)
			continue
		}

		if ff, rg, ok := parseFieldToken(term); ok {
			flushOr()
			if rg != nil {
				p.Ranges = append(p.Ranges, *rg)
			} else {
				p.FieldFilters = append(p.FieldFilters, *ff)
			}
			continue
		}

		if expectOr {
			orGroup = appendUnique(orGroup, term)
			expectOr = false
			continue
		}

		flushOr()
		p.MustInclude = appendUnique(p.MustInclude, term)
	}
	flushOr()

	return p
}

// token is a lexed query fragment. phrase marks double-quoted fragments.
type token struct {
	text   string
	phrase bool
}

// lex splits the raw query into word and phrase tokens. An unmatched quote is
// kept as a literal character in the surrounding word.
func lex(raw string) []token {
	var toks []token
	rest := raw
	for {
		i := strings.IndexByte(rest, '"')
		if i < 0 {
			break
		}
		j := strings.IndexByte(rest[i+1:], '"')
		if j < 0 {
			break // unmatched quote stays literal
		}
		for _, w := range strings.Fields(rest[:i]) {
			toks = append(toks, token{text: w})
		}
		if inner := strings.TrimSpace(rest[i+1 : i+1+j]); inner != "" {
			toks = append(toks, token{text: inner, phrase: true})
		}
		rest = rest[i+j+2:]
	}
	for _, w := range strings.Fields(rest) {
		toks = append(toks, token{text: w})
	}
	return toks
}

// parseFieldToken recognizes field:value and field:min-max tokens. It reports
// ok=false for anything that should degrade to a plain term: unknown field
// names, range syntax on non-numeric fields, or non-numeric values on numeric
// fields.
func parseFieldToken(term string) (*FieldFilter, *Range, bool) {
	name, value, found := strings.Cut(term, ":")
	if !found || name == "" || value == "" {
		return nil, nil, false
	}
	canonical, ok := fieldAliases[name]
	if !ok {
		return nil, nil, false
	}

	if canonical == "type" {
		if !record.EntityType(value).IsValid() {
			return nil, nil, false
		}
		return &FieldFilter{Field: "type", Value: value}, nil, true
	}

	def, ok := record.FieldByName(canonical)
	if !ok {
		return nil, nil, false
	}

	if m := rangeValueRe.FindStringSubmatch(value); m != nil {
		if def.Kind != record.NumericKind {
			return nil, nil, false
		}
		minV, err1 := strconv.ParseFloat(m[1], 64)
		maxV, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil || minV > maxV {
			return nil, nil, false
		}
		return nil, &Range{Field: canonical, Min: &minV, Max: &maxV}, true
	}

	if def.Kind == record.NumericKind {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return nil, nil, false
		}
	}
	return &FieldFilter{Field: canonical, Value: value}, nil, true
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
