// Package dataset loads the searchable record corpus from a JSON file.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
)

// Load reads the record corpus from path. Structural validation happens at
// index build time, where invalid records are skipped; Load only requires
// the file to be well-formed JSON.
func Load(path string, logger *zap.Logger) ([]record.Record, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	var records []record.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", path, err)
	}

	logger.Info("dataset loaded", zap.String("path", path), zap.Int("records", len(records)))
	return records, nil
}
