// File: internal/services/index/memory.go
package index

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/medlabel/go-medlabel/internal/domain"
)

type memoryEntry struct {
	id     string
	vector []float32
	text   string
	order  int // insertion order, used for deterministic tie-breaking
}

// scoredEntry is a query-time snapshot of one entry, taken under the read
// lock so later mutations cannot reach it.
type scoredEntry struct {
	chunk domain.ScoredChunk
	order int
}

// Memory is an in-process vector index using brute-force cosine similarity.
// Entries survive for the process lifetime; chunk ids are derived from their
// source document, so re-ingesting a document replaces the same entries.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	nextOrd int
	logger  Logger
}

func NewMemory(logger Logger) *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
		logger:  logger,
	}
}

// Upsert inserts or replaces the entry for id. The entry is swapped under the
// write lock, so a concurrent Query sees either the old or the new value,
// never a partial write.
func (m *Memory) Upsert(ctx context.Context, id string, vector []float32, text string) error {
	if id == "" {
		return NewOperationError("chunk id is required", nil)
	}
	if len(vector) == 0 {
		return NewOperationError("vector is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	copied := make([]float32, len(vector))
	copy(copied, vector)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[id]; ok {
		// Replacement keeps the original insertion rank.
		existing.vector = copied
		existing.text = text
		return nil
	}
	m.entries[id] = &memoryEntry{id: id, vector: copied, text: text, order: m.nextOrd}
	m.nextOrd++
	return nil
}

func (m *Memory) Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	// Entry fields are copied while the lock is held; a replace-upsert after
	// release cannot tear a result.
	m.mu.RLock()
	scored := make([]scoredEntry, 0, len(m.entries))
	for _, e := range m.entries {
		scored = append(scored, scoredEntry{
			chunk: domain.ScoredChunk{ID: e.id, Text: e.text, Score: cosineSimilarity(e.vector, vector)},
			order: e.order,
		})
	}
	m.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].chunk.Score != scored[j].chunk.Score {
			return scored[i].chunk.Score > scored[j].chunk.Score
		}
		return scored[i].order < scored[j].order
	})

	if k > len(scored) {
		k = len(scored)
	}
	results := make([]domain.ScoredChunk, 0, k)
	for _, e := range scored[:k] {
		results = append(results, e.chunk)
	}
	return results, nil
}

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
