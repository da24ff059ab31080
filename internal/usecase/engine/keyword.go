package engine

import (
	"context"
	"strings"

	"github.com/kailas-cloud/semsearch/internal/domain"
)

// keywordScorer ranks documents by normalized token overlap: the fraction
// of distinct query tokens that appear in the document. Document token
// sets are built once at construction.
type keywordScorer struct {
	docTokens []map[string]struct{}
}

func newKeywordScorer(docs []domain.Document) *keywordScorer {
	sets := make([]map[string]struct{}, len(docs))
	for i, d := range docs {
		sets[i] = tokenSet(d.Text)
	}
	return &keywordScorer{docTokens: sets}
}

func (s *keywordScorer) score(_ context.Context, query string) ([]float64, error) {
	qset := tokenSet(query)

	scores := make([]float64, len(s.docTokens))
	for i, dset := range s.docTokens {
		var matched int
		for tok := range qset {
			if _, ok := dset[tok]; ok {
				matched++
			}
		}
		scores[i] = float64(matched) / float64(len(qset))
	}
	return scores, nil
}

// tokenize lowercases, trims punctuation from each word, and splits on
// whitespace. Words reduced to nothing by trimming are dropped.
func tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		cleaned := strings.ToLower(strings.Trim(w, ".,!?;:'\"-()[]{}"))
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	return tokens
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}
