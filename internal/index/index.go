// Package index builds the in-memory searchable representation of the record
// corpus. The index is read-only once built and is rebuilt wholesale when the
// underlying record set changes.
package index

import (
	"sort"

	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
)

// FieldText is one indexed field: the normalized token sequence plus the raw
// value. The raw text is kept for multi-word exclusion matching, which tests
// containment against the unsplit field value.
type FieldText struct {
	Raw    string
	Tokens []string
}

// Document is one indexed record with its per-field text.
type Document struct {
	rec        record.Record
	fields     map[string]FieldText
	fieldNames []string
}

// Record returns the underlying record.
func (d *Document) Record() *record.Record { return &d.rec }

// Field returns the indexed text for a field, if present on this document.
func (d *Document) Field(name string) (FieldText, bool) {
	ft, ok := d.fields[name]
	return ft, ok
}

// FieldNames returns the indexed field names in sorted order, for
// deterministic iteration.
func (d *Document) FieldNames() []string { return d.fieldNames }

// Index is the built corpus. Same input always yields the same index.
type Index struct {
	docs  []*Document
	vocab []string
}

// Build normalizes the record set into an Index. Records failing validation
// are skipped with a warning, never an error; fields absent for a variant are
// simply not indexed.
func Build(records []record.Record, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}

	docs := make([]*Document, 0, len(records))
	vocabSet := make(map[string]struct{})

	for i := range records {
		rec := records[i]
		if err := rec.Validate(); err != nil {
			logger.Warn("skipping invalid record", zap.String("id", rec.ID), zap.Error(err))
			continue
		}

		fields := make(map[string]FieldText)
		var names []string
		for _, def := range record.Fields(rec.Type) {
			if def.Kind == record.NumericKind {
				continue
			}
			raw, ok := rec.Text(def.Name)
			if !ok {
				continue
			}
			tokens := Tokenize(raw)
			if len(tokens) == 0 {
				continue
			}
			fields[def.Name] = FieldText{Raw: raw, Tokens: tokens}
			names = append(names, def.Name)
			for _, tok := range tokens {
				vocabSet[tok] = struct{}{}
			}
		}
		sort.Strings(names)

		docs = append(docs, &Document{rec: rec, fields: fields, fieldNames: names})
	}

	vocab := make([]string, 0, len(vocabSet))
	for tok := range vocabSet {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	return &Index{docs: docs, vocab: vocab}
}

// Documents returns the indexed documents.
func (ix *Index) Documents() []*Document { return ix.docs }

// Vocabulary returns the sorted unique token vocabulary across all fields.
func (ix *Index) Vocabulary() []string { return ix.vocab }

// Size returns the number of indexed documents.
func (ix *Index) Size() int { return len(ix.docs) }
