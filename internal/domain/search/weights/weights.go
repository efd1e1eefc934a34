// Package weights holds the immutable per-field scoring configuration shared
// by all queries.
package weights

import (
	"fmt"

	"github.com/chemlab-cloud/chemsearch/internal/domain"
	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
)

// Defaults for the scoring configuration.
const (
	DefaultThreshold = 0.3
	DefaultDistance  = 2
)

// Config is the validated field-weight configuration: a weight in (0,1] per
// text/tag field, a global match threshold, and the phrase proximity slop.
type Config struct {
	weights   map[string]float64
	threshold float64
	distance  int
}

// New validates and creates a Config. Every weighted field must exist in the
// field registry and must not be numeric; weights must be in (0,1]. An empty
// weight map falls back to the default table.
func New(w map[string]float64, threshold float64, distance int) (Config, error) {
	if threshold < 0 || threshold >= 1 {
		return Config{}, fmt.Errorf("threshold must be in [0,1), got %g", threshold)
	}
	if distance < 0 {
		return Config{}, fmt.Errorf("distance must be non-negative, got %d", distance)
	}
	if len(w) == 0 {
		w = defaultWeights
	}
	copied := make(map[string]float64, len(w))
	for name, weight := range w {
		def, ok := record.FieldByName(name)
		if !ok {
			return Config{}, fmt.Errorf("%w: unknown weight field %q", domain.ErrInvalidField, name)
		}
		if def.Kind == record.NumericKind {
			return Config{}, fmt.Errorf("%w: numeric field %q cannot carry a text weight",
				domain.ErrInvalidField, name)
		}
		if weight <= 0 || weight > 1 {
			return Config{}, fmt.Errorf("weight for %q must be in (0,1], got %g", name, weight)
		}
		copied[name] = weight
	}
	return Config{weights: copied, threshold: threshold, distance: distance}, nil
}

// Default returns the built-in configuration.
func Default() Config {
	cfg, err := New(nil, DefaultThreshold, DefaultDistance)
	if err != nil {
		panic(err) // default table is validated by tests
	}
	return cfg
}

var defaultWeights = map[string]float64{
	record.FieldTitle:                 1.0,
	record.FieldFormula:               0.9,
	record.FieldCASNumber:             0.8,
	record.FieldTags:                  0.7,
	record.FieldContent:               0.6,
	record.FieldElectronConfiguration: 0.6,
	record.FieldCategory:              0.5,
	record.FieldHazardTags:            0.5,
	record.FieldRelatedTopics:         0.5,
	record.FieldBlock:                 0.4,
	record.FieldDifficulty:            0.4,
	record.FieldEducationalLevel:      0.4,
}

// Weight returns the configured weight for a field, or 0 if the field is not
// weighted (numeric fields and unweighted fields do not contribute to text
// relevance).
func (c Config) Weight(field string) float64 { return c.weights[field] }

// Threshold returns the minimum acceptable relevance score.
func (c Config) Threshold() float64 { return c.threshold }

// Distance returns the maximum token-position slop for phrase matching.
func (c Config) Distance() int { return c.distance }
