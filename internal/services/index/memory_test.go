// File: internal/services/index/memory_test.go
package index

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlabel/go-medlabel/internal/domain"
)

type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}
func (testLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (testLogger) Warn(msg string, keysAndValues ...interface{})  {}

func newTestMemory() *Memory {
	return NewMemory(testLogger{})
}

func ids(chunks []domain.ScoredChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.ID
	}
	return out
}

func TestMemoryQueryOrdersByCosineSimilarity(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	require.NoError(t, m.Upsert(ctx, "a", []float32{1, 0}, "aligned"))
	require.NoError(t, m.Upsert(ctx, "b", []float32{0, 1}, "orthogonal"))
	require.NoError(t, m.Upsert(ctx, "c", []float32{1, 1}, "diagonal"))

	results, err := m.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c", "b"}, ids(results))
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestMemoryUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	require.NoError(t, m.Upsert(ctx, "a", []float32{1, 0}, "text"))
	require.NoError(t, m.Upsert(ctx, "b", []float32{0.9, 0.1}, "other"))

	before, err := m.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)

	// Same id, same content: results must not change.
	require.NoError(t, m.Upsert(ctx, "a", []float32{1, 0}, "text"))

	after, err := m.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 2, m.Len())
}

func TestMemoryUpsertReplacesContent(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	require.NoError(t, m.Upsert(ctx, "a", []float32{1, 0}, "old"))
	require.NoError(t, m.Upsert(ctx, "a", []float32{0, 1}, "new"))

	results, err := m.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Text)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryTieBreakByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	// Identical vectors score identically; insertion order decides.
	require.NoError(t, m.Upsert(ctx, "second", []float32{1, 0}, ""))
	require.NoError(t, m.Upsert(ctx, "third", []float32{1, 0}, ""))

	// Re-upserting the first entry must not demote it.
	require.NoError(t, m.Upsert(ctx, "second", []float32{1, 0}, ""))

	results, err := m.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "third"}, ids(results))
}

func TestMemoryQueryBounds(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	empty, err := m.Query(ctx, []float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, m.Upsert(ctx, "only", []float32{1}, "t"))

	results, err := m.Query(ctx, []float32{1}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	none, err := m.Query(ctx, []float32{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryRejectsInvalidUpsert(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	assert.Error(t, m.Upsert(ctx, "", []float32{1}, "t"))
	assert.Error(t, m.Upsert(ctx, "id", nil, "t"))
}

func TestMemoryConcurrentReplaceAndQuery(t *testing.T) {
	// Replace-upserts of one id race against queries; every observed result
	// must be a complete (vector, text) pair from some single upsert, never a
	// mix of two.
	ctx := context.Background()
	m := newTestMemory()

	require.NoError(t, m.Upsert(ctx, "shared", []float32{0, 1}, "revision-0"))

	valid := map[string]bool{"revision-0": true}
	for n := 1; n <= 200; n++ {
		valid["revision-"+strconv.Itoa(n)] = true
	}

	var wg sync.WaitGroup
	errs := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := 1; n <= 200; n++ {
			if err := m.Upsert(ctx, "shared", []float32{float32(n), 1}, "revision-"+strconv.Itoa(n)); err != nil {
				select {
				case errs <- err:
				default:
				}
				return
			}
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				results, err := m.Query(ctx, []float32{1, 0}, 1)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					return
				}
				if len(results) != 1 || !valid[results[0].Text] {
					select {
					case errs <- fmt.Errorf("torn query result: %+v", results):
					default:
					}
					return
				}
			}
		}()
	}
	wg.Wait()

	select {
	case err := <-errs:
		t.Fatal(err)
	default:
	}
	assert.Equal(t, 1, m.Len())
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = m.Upsert(ctx, "shared", []float32{float32(n), 1}, "t")
		}(i)
		go func() {
			defer wg.Done()
			_, _ = m.Query(ctx, []float32{1, 0}, 3)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.Len())
}
