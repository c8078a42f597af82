// File: internal/services/rag/pipeline.go

package rag

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/medlabel/go-medlabel/internal/domain"
	conversationrepo "github.com/medlabel/go-medlabel/internal/repository/conversation"
	"github.com/medlabel/go-medlabel/internal/services/ai"
	"github.com/medlabel/go-medlabel/internal/services/label"
)

// Per-stage timeouts. Each stage gets its own deadline derived from the
// request context so one slow dependency cannot consume the whole budget.
const (
	fetchTimeout   = 20 * time.Second
	embedTimeout   = 60 * time.Second
	indexTimeout   = 30 * time.Second
	llmTimeout     = 90 * time.Second
	persistTimeout = 5 * time.Second
)

const titleMaxRunes = 50

// LabelFetcher retrieves the full label text for a medication.
type LabelFetcher interface {
	FetchLabelText(ctx context.Context, term string) (string, error)
}

// VectorIndex stores chunk embeddings and answers nearest-neighbor queries.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float32, text string) error
	Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error)
}

// TurnStore persists one prompt/response pair, creating the conversation
// when conversationID is empty.
type TurnStore interface {
	AppendTurn(ctx context.Context, conversationID string, userID uint, title, prompt, response string) (*domain.Conversation, error)
}

// Logger is the logging interface used by the pipeline.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Request is one question about one medication, optionally continuing an
// existing conversation.
type Request struct {
	UserID         uint
	Medication     string
	Question       string
	ConversationID string
}

// Result is the generated answer plus the conversation it was recorded in.
type Result struct {
	Response       string
	ConversationID string
}

// Pipeline runs the full retrieval-augmented answer flow: fetch the label,
// chunk it, embed chunks and question, retrieve the nearest chunks, generate
// an answer grounded on them, and persist the turn.
type Pipeline struct {
	fetcher  LabelFetcher
	provider ai.Provider
	index    VectorIndex
	store    TurnStore
	chunker  *Chunker
	prompts  *PromptBuilder
	config   *Config
	logger   Logger
}

func NewPipeline(
	fetcher LabelFetcher,
	provider ai.Provider,
	idx VectorIndex,
	store TurnStore,
	config *Config,
	logger Logger,
) (*Pipeline, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if fetcher == nil || provider == nil || idx == nil || store == nil {
		return nil, NewConfigError("fetcher, provider, index and store are required")
	}

	chunker, err := NewChunker(config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		fetcher:  fetcher,
		provider: provider,
		index:    idx,
		store:    store,
		chunker:  chunker,
		prompts:  NewPromptBuilder(),
		config:   config,
		logger:   logger,
	}, nil
}

// Ask answers one question about one medication and records the turn.
func (p *Pipeline) Ask(ctx context.Context, req Request) (*Result, error) {
	medication := strings.TrimSpace(req.Medication)
	question := strings.TrimSpace(req.Question)

	if req.UserID == 0 {
		return nil, NewValidationError("validate", "user ID is required")
	}
	if medication == "" {
		return nil, NewValidationError("validate", "medication name cannot be empty")
	}
	if question == "" {
		return nil, NewValidationError("validate", "prompt cannot be empty")
	}

	start := time.Now()
	p.logger.Info("Pipeline started",
		"user_id", req.UserID,
		"medication", medication,
		"has_conversation", req.ConversationID != "")

	doc, err := p.fetchLabel(ctx, medication)
	if err != nil {
		return nil, err
	}

	chunks := p.chunker.Split(doc)
	p.logger.Debug("Label chunked", "medication", medication, "chunks", len(chunks))

	vectors, questionVec, err := p.embedAll(ctx, chunks, question)
	if err != nil {
		return nil, err
	}

	retrieved, err := p.indexAndRetrieve(ctx, chunks, vectors, questionVec)
	if err != nil {
		return nil, err
	}

	answer, err := p.generate(ctx, question, retrieved)
	if err != nil {
		return nil, err
	}

	conv, err := p.persist(ctx, req.ConversationID, req.UserID, question, answer)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Pipeline completed",
		"user_id", req.UserID,
		"conversation_id", conv.ID,
		"duration_ms", time.Since(start).Milliseconds())

	return &Result{Response: answer, ConversationID: conv.ID}, nil
}

func (p *Pipeline) fetchLabel(ctx context.Context, medication string) (domain.Document, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	text, err := p.fetcher.FetchLabelText(fetchCtx, medication)
	if err != nil {
		if errors.Is(err, label.ErrNoResults) {
			p.logger.Warn("No label found", "medication", medication)
			return domain.Document{}, NewNotFoundError("fetch", "no label found for "+medication, err)
		}
		p.logger.Error("Label fetch failed", "medication", medication, "error", err)
		return domain.Document{}, NewNotFoundError("fetch", "label lookup failed for "+medication, err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.Document{}, NewNotFoundError("fetch", "label text is empty for "+medication, nil)
	}
	return domain.Document{ID: strings.ToLower(medication), Text: text}, nil
}

// embedAll embeds every chunk and the question concurrently, bounded by
// EmbedConcurrency. The question rides in the same group as slot len(chunks).
func (p *Pipeline) embedAll(ctx context.Context, chunks []domain.Chunk, question string) ([][]float32, []float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	vectors := make([][]float32, len(chunks))
	var questionVec []float32

	g, gctx := errgroup.WithContext(embedCtx)
	g.SetLimit(p.config.EmbedConcurrency)

	for i := range chunks {
		i := i
		g.Go(func() error {
			vec, err := p.provider.CreateEmbedding(gctx, chunks[i].Text)
			if err != nil {
				return err
			}
			vectors[i] = vec
			return nil
		})
	}
	g.Go(func() error {
		vec, err := p.provider.CreateEmbedding(gctx, question)
		if err != nil {
			return err
		}
		questionVec = vec
		return nil
	})

	if err := g.Wait(); err != nil {
		p.logger.Error("Embedding failed", "chunks", len(chunks), "error", err)
		return nil, nil, NewEmbeddingError("embed", "embedding failed", err)
	}

	return vectors, questionVec, nil
}

func (p *Pipeline) indexAndRetrieve(ctx context.Context, chunks []domain.Chunk, vectors [][]float32, questionVec []float32) ([]domain.ScoredChunk, error) {
	idxCtx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	for i, chunk := range chunks {
		if err := p.index.Upsert(idxCtx, chunk.ID, vectors[i], chunk.Text); err != nil {
			p.logger.Error("Index upsert failed", "chunk_id", chunk.ID, "error", err)
			return nil, NewEmbeddingError("index", "storing chunk vectors failed", err)
		}
	}

	retrieved, err := p.index.Query(idxCtx, questionVec, p.config.RetrievalTopK)
	if err != nil {
		p.logger.Error("Index query failed", "error", err)
		return nil, NewEmbeddingError("retrieve", "vector retrieval failed", err)
	}
	p.logger.Debug("Chunks retrieved", "count", len(retrieved))

	return retrieved, nil
}

func (p *Pipeline) generate(ctx context.Context, question string, retrieved []domain.ScoredChunk) (string, error) {
	llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	system, user := p.prompts.Build(question, retrieved)
	answer, err := p.provider.GetCompletion(llmCtx, system, user)
	if err != nil {
		p.logger.Error("Completion failed", "error", err)
		return "", NewGenerationError("generate", "answer generation failed", err)
	}
	return answer, nil
}

func (p *Pipeline) persist(ctx context.Context, conversationID string, userID uint, question, answer string) (*domain.Conversation, error) {
	persistCtx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	conv, err := p.store.AppendTurn(persistCtx, conversationID, userID, deriveTitle(question), question, answer)
	if err != nil {
		if errors.Is(err, conversationrepo.ErrConversationNotFound) {
			return nil, NewNotFoundError("persist", "conversation not found", err)
		}
		p.logger.Error("Persisting turn failed", "conversation_id", conversationID, "error", err)
		return nil, NewPersistenceError("persist", "saving the conversation turn failed", err)
	}
	return conv, nil
}

// deriveTitle names a new conversation after its first prompt.
func deriveTitle(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= titleMaxRunes {
		return prompt
	}
	return string(runes[:titleMaxRunes]) + "..."
}
