// File: internal/domain/document.go
package domain

// Document is the normalized plain text of one drug label, identified by the
// search term that produced it. Documents are pipeline-scoped and never
// persisted in the relational store.
type Document struct {
	ID   string
	Text string
}

// Chunk is a bounded substring of a document prepared for embedding. The ID is
// derived from the document ID plus the chunk index, so re-ingesting the same
// document produces the same IDs.
type Chunk struct {
	ID    string
	Index int
	Text  string
}

// ScoredChunk is a retrieval hit: a chunk text with its similarity score,
// ordered nearest-first by the index that returned it.
type ScoredChunk struct {
	ID    string
	Text  string
	Score float32
}
