package rag

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/edufuture/edubot/internal/logger"
)

const (
	// courseCollectionName is the chromem collection holding course records.
	courseCollectionName = "courses"

	// minSimilarityThreshold filters matches too weak to be useful
	// prompt context (cosine similarity, 0-1).
	minSimilarityThreshold float32 = 0.3
)

// VectorStore wraps an in-memory chromem-go database for semantic search
// over course records. Requires an OpenAI embedding API key; callers fall
// back to BM25-only retrieval without one.
type VectorStore struct {
	db          *chromem.DB
	collection  *chromem.Collection
	logger      *logger.Logger
	mu          sync.RWMutex
	initialized bool
}

// VectorResult is a scored document from the semantic search.
type VectorResult struct {
	Document   Document
	Similarity float32 // cosine similarity, 0-1
	Rank       int     // 1-indexed rank
}

// NewVectorStore creates a vector store backed by OpenAI embeddings.
// Returns nil if apiKey is empty (semantic side disabled).
func NewVectorStore(apiKey string, log *logger.Logger) (*VectorStore, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // feature disabled without an API key
	}

	db := chromem.NewDB()
	embeddingFunc := chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI3Small)

	collection, err := db.GetOrCreateCollection(courseCollectionName, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("creating chromem collection: %w", err)
	}

	return &VectorStore{
		db:         db,
		collection: collection,
		logger:     log.WithModule("rag"),
	}, nil
}

// Initialize embeds and stores the documents. The catalog is small, so
// all records are embedded up front at startup.
func (v *VectorStore) Initialize(ctx context.Context, docs []Document) error {
	if v == nil {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if len(docs) == 0 {
		v.initialized = true
		return nil
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromemDocs[i] = chromem.Document{
			ID:       fmt.Sprintf("course-%d", i),
			Content:  doc.Content,
			Metadata: map[string]string{"name": doc.Name},
		}
	}

	if err := v.collection.AddDocuments(ctx, chromemDocs, 1); err != nil {
		return fmt.Errorf("adding documents to chromem: %w", err)
	}

	v.initialized = true
	v.logger.WithField("docs", len(docs)).Info("vector store initialized")
	return nil
}

// IsEnabled reports whether the store is ready for queries.
func (v *VectorStore) IsEnabled() bool {
	if v == nil {
		return false
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.initialized
}

// Search returns up to topN documents by cosine similarity, filtered by
// the minimum similarity threshold.
func (v *VectorStore) Search(ctx context.Context, query string, topN int) ([]VectorResult, error) {
	if v == nil || !v.IsEnabled() {
		return nil, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	count := v.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topN > count {
		topN = count
	}

	results, err := v.collection.Query(ctx, query, topN, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	vectorResults := make([]VectorResult, 0, len(results))
	for _, r := range results {
		if r.Similarity < minSimilarityThreshold {
			continue
		}
		vectorResults = append(vectorResults, VectorResult{
			Document: Document{
				Name:    r.Metadata["name"],
				Content: r.Content,
			},
			Similarity: r.Similarity,
			Rank:       len(vectorResults) + 1,
		})
	}
	return vectorResults, nil
}
