// Package rag provides the optional retrieval enhancement for the
// completion fallback stage: course records are indexed with BM25 and an
// embedded vector store, and the top matches for a user message are joined
// into reference context for the completion prompt.
//
// Retrieval never replaces FAQ or course routing — it only enriches what
// the completion collaborator sees when both deterministic stages missed.
package rag

// Document is one indexed course record.
type Document struct {
	// Name is the course name, used as the fusion key.
	Name string
	// Content is the rendered record text included in prompt context.
	Content string
}
