// File: internal/services/index/interface.go
package index

import (
	"context"

	"github.com/medlabel/go-medlabel/internal/domain"
)

// Index stores (chunk id, vector, text) triples and answers top-k
// nearest-neighbor queries. Similarity is cosine, nearest-first; ties are
// broken by insertion order.
type Index interface {
	// Upsert inserts or atomically replaces the entry keyed by id.
	// Re-upserting identical content is observably a no-op.
	Upsert(ctx context.Context, id string, vector []float32, text string) error
	// Query returns up to k entries nearest to vector. It returns fewer than
	// k when the index holds fewer entries, and an empty slice when empty.
	Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error)
}

// Logger is the logging interface used by index implementations.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
