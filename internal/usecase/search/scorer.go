package search

import (
	"strings"

	"github.com/chemlab-cloud/chemsearch/internal/domain/query"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/weights"
	"github.com/chemlab-cloud/chemsearch/internal/fuzzy"
	"github.com/chemlab-cloud/chemsearch/internal/index"
)

// Token similarity tiers and floors.
const (
	prefixScore    = 0.9
	substringScore = 0.8
	fuzzyFloor     = 0.7
	// exclusionSim is the fuzzy-equality floor for mustExclude terms.
	exclusionSim = 0.85
)

// scoreDocument scores one indexed document against a parsed query.
// Returns ok=false when the document is excluded or the weighted aggregate
// falls below the configured threshold.
//
// Exclusion is absolute: any mustExclude match rejects the document
// regardless of how strongly the included terms match. Each include term,
// OR group, and phrase contributes one signal per field; per-field scores
// are weighted, summed, and normalized by the strongest weight among the
// document's own fields, clamped to 1. A perfect match in a record's best
// field scores 1.0 no matter how many other fields the record carries;
// additional matching fields can only raise the score.
func scoreDocument(doc *index.Document, p query.Parsed, cfg weights.Config) (float64, []string, bool) {
	for _, ex := range p.MustExclude {
		if matchesExclusion(doc, ex) {
			return 0, nil, false
		}
	}

	nSignals := len(p.MustInclude) + len(p.OrGroups) + len(p.ExactPhrases)
	if nSignals == 0 {
		// No text constraint: every surviving candidate is an equal match.
		return 1, nil, true
	}

	var (
		total   float64
		bestW   float64
		matched []string
	)
	for _, field := range doc.FieldNames() {
		w := cfg.Weight(field)
		if w == 0 {
			continue
		}
		if w > bestW {
			bestW = w
		}
		ft, _ := doc.Field(field)

		var sum float64
		for _, term := range p.MustInclude {
			sum += termScore(ft.Tokens, term)
		}
		for _, group := range p.OrGroups {
			sum += groupScore(ft.Tokens, group)
		}
		for _, phrase := range p.ExactPhrases {
			sum += phraseScore(ft.Tokens, phrase, cfg.Distance())
		}

		fieldScore := sum / float64(nSignals)
		if fieldScore > 0 {
			matched = append(matched, field)
		}
		total += w * fieldScore
	}

	if bestW == 0 {
		return 0, nil, false
	}
	score := total / bestW
	if score > 1 {
		score = 1
	}
	if score < cfg.Threshold() {
		return 0, nil, false
	}
	return score, matched, true
}

// termScore is the best token similarity for a term across a field's tokens.
func termScore(tokens []string, term string) float64 {
	term = index.FoldLower(term)
	var best float64
	for _, tok := range tokens {
		if s := tokenSimilarity(tok, term); s > best {
			best = s
			if best == 1 {
				break
			}
		}
	}
	return best
}

// groupScore is the OR-group contribution: the maximum member score.
// A non-matching group lowers the aggregate but never excludes.
func groupScore(tokens []string, group []string) float64 {
	var best float64
	for _, term := range group {
		if s := termScore(tokens, term); s > best {
			best = s
			if best == 1 {
				break
			}
		}
	}
	return best
}

// phraseScore is a binary signal: 1 when the phrase's tokens appear in order
// within the allowed positional slop, 0 otherwise.
func phraseScore(tokens []string, phrase string, distance int) float64 {
	parts := index.Tokenize(phrase)
	if len(parts) == 0 {
		return 0
	}
	if phrasePresent(tokens, parts, distance) {
		return 1
	}
	return 0
}

// phrasePresent reports whether the phrase tokens occur as an in-order run,
// with at most distance extra positions between consecutive tokens.
func phrasePresent(tokens, phrase []string, distance int) bool {
	for start := range tokens {
		if tokens[start] != phrase[0] {
			continue
		}
		pos := start
		found := true
		for _, pt := range phrase[1:] {
			next := -1
			for j := pos + 1; j <= pos+1+distance && j < len(tokens); j++ {
				if tokens[j] == pt {
					next = j
					break
				}
			}
			if next < 0 {
				found = false
				break
			}
			pos = next
		}
		if found {
			return true
		}
	}
	return false
}

// tokenSimilarity scores one indexed token against one query term.
// Exact match 1.0, prefix 0.9, substring 0.8, otherwise edit-distance
// similarity when above the fuzzy floor.
func tokenSimilarity(tok, term string) float64 {
	if tok == term {
		return 1
	}
	if strings.HasPrefix(tok, term) || strings.HasPrefix(term, tok) {
		return prefixScore
	}
	if strings.Contains(tok, term) {
		return substringScore
	}
	if s := fuzzy.Similarity(tok, term); s >= fuzzyFloor {
		return s
	}
	return 0
}

// matchesExclusion checks a mustExclude term against a document. Multi-word
// exclusions match against raw field text; single words match tokens by
// equality, prefix, or fuzzy equality. A bare substring test is deliberately
// not used here: excluding "organic" must not reject "inorganic".
func matchesExclusion(doc *index.Document, ex string) bool {
	exNorm := index.FoldLower(ex)
	if strings.ContainsRune(exNorm, ' ') {
		for _, field := range doc.FieldNames() {
			ft, _ := doc.Field(field)
			if strings.Contains(index.FoldLower(ft.Raw), exNorm) {
				return true
			}
		}
		return false
	}
	for _, field := range doc.FieldNames() {
		ft, _ := doc.Field(field)
		for _, tok := range ft.Tokens {
			if tok == exNorm || strings.HasPrefix(tok, exNorm) || fuzzy.Similarity(tok, exNorm) >= exclusionSim {
				return true
			}
		}
	}
	return false
}
