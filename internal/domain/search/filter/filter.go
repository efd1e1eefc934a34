// Package filter implements the structural search filters: entity types,
// categories, numeric ranges, and enum memberships. Dimensions are ANDed; an
// absent dimension means "no constraint".
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chemlab-cloud/chemsearch/internal/domain"
	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
)

// MaxValuesPerDimension caps the number of values per filter dimension.
const MaxValuesPerDimension = 32

// NumericRange constrains a numeric field. Nil bounds are open; both bounds
// are inclusive.
type NumericRange struct {
	Field string
	Min   *float64
	Max   *float64
}

// Filters is a validated, immutable set of structural constraints.
type Filters struct {
	types      []record.EntityType
	categories []string
	ranges     []NumericRange
	enums      map[string][]string
}

// New validates and creates Filters. Range and enum field names must resolve
// in the field registry with the matching kind.
func New(
	types []record.EntityType,
	categories []string,
	ranges []NumericRange,
	enums map[string][]string,
) (Filters, error) {
	if len(types) > MaxValuesPerDimension || len(categories) > MaxValuesPerDimension {
		return Filters{}, fmt.Errorf("too many filter values (max %d per dimension)", MaxValuesPerDimension)
	}
	for _, t := range types {
		if !t.IsValid() {
			return Filters{}, fmt.Errorf("%w: unknown entity type %q", domain.ErrInvalidField, t)
		}
	}
	for _, r := range ranges {
		def, ok := record.FieldByName(r.Field)
		if !ok {
			return Filters{}, fmt.Errorf("%w: unknown range field %q", domain.ErrInvalidField, r.Field)
		}
		if def.Kind != record.NumericKind {
			return Filters{}, fmt.Errorf("%w: range filter on non-numeric field %q",
				domain.ErrInvalidField, r.Field)
		}
		if r.Min == nil && r.Max == nil {
			return Filters{}, fmt.Errorf("range filter on %q needs at least one bound", r.Field)
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return Filters{}, fmt.Errorf("range filter on %q has min above max", r.Field)
		}
	}
	var enumsCopy map[string][]string
	if len(enums) > 0 {
		enumsCopy = make(map[string][]string, len(enums))
		for field, values := range enums {
			def, ok := record.FieldByName(field)
			if !ok {
				return Filters{}, fmt.Errorf("%w: unknown enum field %q", domain.ErrInvalidField, field)
			}
			if def.Kind != record.Tag {
				return Filters{}, fmt.Errorf("%w: enum filter on non-tag field %q",
					domain.ErrInvalidField, field)
			}
			if len(values) > MaxValuesPerDimension {
				return Filters{}, fmt.Errorf("too many enum values for %q (max %d)",
					field, MaxValuesPerDimension)
			}
			enumsCopy[field] = append([]string(nil), values...)
		}
	}
	return Filters{
		types:      append([]record.EntityType(nil), types...),
		categories: append([]string(nil), categories...),
		ranges:     append([]NumericRange(nil), ranges...),
		enums:      enumsCopy,
	}, nil
}

// IsEmpty reports whether no dimension is constrained.
func (f Filters) IsEmpty() bool {
	return len(f.types) == 0 && len(f.categories) == 0 &&
		len(f.ranges) == 0 && len(f.enums) == 0
}

// Types returns the selected entity types.
func (f Filters) Types() []record.EntityType { return f.types }

// Matches reports whether a record satisfies every constrained dimension.
// A record missing a range-filtered numeric field does not match.
func (f Filters) Matches(r *record.Record) bool {
	if len(f.types) > 0 && !containsType(f.types, r.Type) {
		return false
	}
	if len(f.categories) > 0 && !containsFold(f.categories, r.Category) {
		return false
	}
	for _, rng := range f.ranges {
		v, ok := r.Numeric(rng.Field)
		if !ok {
			return false
		}
		if rng.Min != nil && v < *rng.Min {
			return false
		}
		if rng.Max != nil && v > *rng.Max {
			return false
		}
	}
	for field, wanted := range f.enums {
		def, _ := record.FieldByName(field)
		have := r.Values(field)
		if def.Multi {
			// Set-valued fields require every selected value to be present.
			for _, w := range wanted {
				if !containsFold(have, w) {
					return false
				}
			}
		} else if !anyFold(wanted, have) {
			// Scalar enums: the record value must be among the selected ones.
			return false
		}
	}
	return true
}

// UsageKeys returns one analytics key per constrained dimension, e.g.
// "type", "category", "range:molecular_mass", "enum:hazard_tags".
func (f Filters) UsageKeys() []string {
	var keys []string
	if len(f.types) > 0 {
		keys = append(keys, "type")
	}
	if len(f.categories) > 0 {
		keys = append(keys, "category")
	}
	for _, r := range f.ranges {
		keys = append(keys, "range:"+r.Field)
	}
	enumKeys := make([]string, 0, len(f.enums))
	for field := range f.enums {
		enumKeys = append(enumKeys, "enum:"+field)
	}
	sort.Strings(enumKeys)
	return append(keys, enumKeys...)
}

// Snapshot is the serializable form of Filters, used for history items and
// bookmarks.
type Snapshot struct {
	Types      []string            `json:"types,omitempty"`
	Categories []string            `json:"categories,omitempty"`
	Ranges     []RangeSnapshot     `json:"ranges,omitempty"`
	Enums      map[string][]string `json:"enums,omitempty"`
}

// RangeSnapshot is the serializable form of a NumericRange.
type RangeSnapshot struct {
	Field string   `json:"field"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// Snapshot returns a serializable copy of the filters.
func (f Filters) Snapshot() Snapshot {
	s := Snapshot{
		Categories: append([]string(nil), f.categories...),
	}
	for _, t := range f.types {
		s.Types = append(s.Types, string(t))
	}
	for _, r := range f.ranges {
		s.Ranges = append(s.Ranges, RangeSnapshot{Field: r.Field, Min: r.Min, Max: r.Max})
	}
	if len(f.enums) > 0 {
		s.Enums = make(map[string][]string, len(f.enums))
		for k, v := range f.enums {
			s.Enums[k] = append([]string(nil), v...)
		}
	}
	return s
}

// FromSnapshot rebuilds Filters from their serialized form.
func FromSnapshot(s Snapshot) (Filters, error) {
	types := make([]record.EntityType, 0, len(s.Types))
	for _, t := range s.Types {
		types = append(types, record.EntityType(t))
	}
	ranges := make([]NumericRange, 0, len(s.Ranges))
	for _, r := range s.Ranges {
		ranges = append(ranges, NumericRange{Field: r.Field, Min: r.Min, Max: r.Max})
	}
	return New(types, s.Categories, ranges, s.Enums)
}

func containsType(list []record.EntityType, t record.EntityType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func anyFold(wanted, have []string) bool {
	for _, w := range wanted {
		if containsFold(have, w) {
			return true
		}
	}
	return false
}
