// File: internal/services/ai/interface.go
package ai

import "context"

// EmbeddingProvider maps a text chunk to a fixed-length vector. Vectors are
// stable for a fixed model version only; callers must not assume stability
// across deployments.
type EmbeddingProvider interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CompletionProvider produces a text reply from a system+user message pair.
type CompletionProvider interface {
	GetCompletion(ctx context.Context, system, user string) (string, error)
}

// Provider combines embedding and completion capabilities.
type Provider interface {
	EmbeddingProvider
	CompletionProvider
}
