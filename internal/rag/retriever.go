package rag

import (
	"context"
	"strings"
	"sync"

	"github.com/edufuture/edubot/internal/course"
	"github.com/edufuture/edubot/internal/logger"
)

// Retriever combines BM25 keyword search and vector semantic search over
// the course catalog using Reciprocal Rank Fusion. Either side may be
// absent: with only one available that side gets full weight; with
// neither, Retrieve returns no context.
type Retriever struct {
	vector *VectorStore
	bm25   *BM25Index
	topK   int
	logger *logger.Logger
}

// NewRetriever creates a hybrid retriever. vector may be nil (BM25-only)
// and bm25 may be nil (vector-only).
func NewRetriever(vector *VectorStore, bm25 *BM25Index, topK int, log *logger.Logger) *Retriever {
	if topK < 1 {
		topK = 2
	}
	return &Retriever{
		vector: vector,
		bm25:   bm25,
		topK:   topK,
		logger: log.WithModule("rag"),
	}
}

// BuildDocuments renders course records into indexable documents, one per
// course.
func BuildDocuments(records []course.Record) []Document {
	docs := make([]Document, len(records))
	for i, rec := range records {
		var b strings.Builder
		b.WriteString("Курс: ")
		b.WriteString(rec.Name)
		if rec.Description != "" {
			b.WriteString("\nОписание: ")
			b.WriteString(rec.Description)
		}
		docs[i] = Document{Name: rec.Name, Content: b.String()}
	}
	return docs
}

// Retrieve returns the joined content of the top-k courses relevant to
// the query, or an empty string when nothing relevant was found.
// A failure on one search side degrades to the other side's results.
func (r *Retriever) Retrieve(ctx context.Context, query string) string {
	if r == nil {
		return ""
	}

	bm25Enabled := r.bm25.IsEnabled()
	vectorEnabled := r.vector.IsEnabled()
	if !bm25Enabled && !vectorEnabled {
		return ""
	}

	// Fetch more than topK from each side for better fusion.
	fetchN := r.topK * 3

	var (
		bm25Results   []BM25Result
		vectorResults []VectorResult
		wg            sync.WaitGroup
	)

	if bm25Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			bm25Results, err = r.bm25.Search(query, fetchN)
			if err != nil {
				r.logger.WithError(err).Warn("BM25 search failed")
			}
		}()
	}

	if vectorEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			vectorResults, err = r.vector.Search(ctx, query, fetchN)
			if err != nil {
				r.logger.WithError(err).Warn("vector search failed")
			}
		}()
	}

	wg.Wait()

	weight := defaultBM25Weight
	if !vectorEnabled || len(vectorResults) == 0 {
		weight = 1.0
	} else if !bm25Enabled {
		weight = 0.0
	}

	fused := fuseRRF(bm25Results, vectorResults, weight, r.topK)
	if len(fused) == 0 {
		return ""
	}

	contents := make([]string, len(fused))
	for i, f := range fused {
		contents[i] = f.Document.Content
	}
	return strings.Join(contents, "\n\n")
}
