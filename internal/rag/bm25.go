package rag

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	bm25 "github.com/iwilltry42/bm25-go/bm25"
	"golang.org/x/text/cases"

	"github.com/edufuture/edubot/internal/logger"
)

// Standard BM25 parameters.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// BM25Index provides keyword-based retrieval over course documents.
// Works fully offline, no embedding API required.
type BM25Index struct {
	okapi       *bm25.BM25Okapi
	docs        []Document
	logger      *logger.Logger
	mu          sync.RWMutex
	initialized bool
}

// BM25Result is a scored document from the lexical search.
type BM25Result struct {
	Document Document
	Score    float64 // BM25 score, higher is better
	Rank     int     // 1-indexed rank
}

// NewBM25Index creates an empty BM25 index.
func NewBM25Index(log *logger.Logger) *BM25Index {
	return &BM25Index{logger: log.WithModule("rag")}
}

// Initialize builds the index from the documents. The corpus is small
// (one entry per course), so the whole index is rebuilt on every call.
func (idx *BM25Index) Initialize(docs []Document) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(docs) == 0 {
		idx.initialized = true
		return nil
	}

	corpus := make([]string, len(docs))
	for i, doc := range docs {
		corpus[i] = doc.Content
	}

	okapi, err := bm25.NewBM25Okapi(corpus, tokenize, bm25K1, bm25B, nil)
	if err != nil {
		return fmt.Errorf("building BM25 index: %w", err)
	}

	idx.okapi = okapi
	idx.docs = docs
	idx.initialized = true

	idx.logger.WithField("docs", len(docs)).Info("BM25 index initialized")
	return nil
}

// IsEnabled reports whether the index is ready for queries.
func (idx *BM25Index) IsEnabled() bool {
	if idx == nil {
		return false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.initialized && idx.okapi != nil
}

// Search returns up to topN documents sorted by BM25 score descending.
// Zero-score documents are excluded.
func (idx *BM25Index) Search(query string, topN int) ([]BM25Result, error) {
	if idx == nil || !idx.IsEnabled() || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	scores, err := idx.okapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("BM25 scoring failed: %w", err)
	}

	results := make([]BM25Result, 0, len(scores))
	for i, score := range scores {
		if score > 0 {
			results = append(results, BM25Result{Document: idx.docs[i], Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

// tokenize lowercases (Unicode case folding) and splits on
// non-letter/non-digit runes. Shared by indexing and querying.
func tokenize(s string) []string {
	folded := cases.Fold().String(s)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
