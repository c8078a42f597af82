// File: internal/services/index/pinecone.go
package index

import (
	"context"
	"time"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/medlabel/go-medlabel/internal/domain"
)

// Pinecone is the externally persisted index mode. Upserts and queries go
// through the Pinecone SDK with the chunk text carried in vector metadata.
type Pinecone struct {
	config *PineconeConfig
	conn   *pinecone.IndexConnection
	logger Logger
}

func NewPinecone(config *PineconeConfig, logger Logger) (*Pinecone, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: config.APIKey})
	if err != nil {
		return nil, NewConnectionError("creating pinecone client", err)
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{
		Host:      config.IndexHost,
		Namespace: config.Namespace,
	})
	if err != nil {
		return nil, NewConnectionError("connecting to pinecone index", err)
	}

	logger.Info("pinecone index connected",
		"host", config.IndexHost, "namespace", config.Namespace)

	return &Pinecone{config: config, conn: conn, logger: logger}, nil
}

func (p *Pinecone) Upsert(ctx context.Context, id string, vector []float32, text string) error {
	metadata, err := structpb.NewStruct(map[string]interface{}{"text": text})
	if err != nil {
		return NewOperationError("building vector metadata", err)
	}

	values := make([]float32, len(vector))
	copy(values, vector)

	return p.retry(ctx, func(ctx context.Context) error {
		_, err := p.conn.UpsertVectors(ctx, []*pinecone.Vector{{
			Id:       id,
			Values:   &values,
			Metadata: metadata,
		}})
		if err != nil {
			return NewOperationError("upsert failed", err)
		}
		return nil
	})
}

func (p *Pinecone) Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	var results []domain.ScoredChunk
	err := p.retry(ctx, func(ctx context.Context) error {
		resp, err := p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
			Vector:          vector,
			TopK:            uint32(k),
			IncludeMetadata: true,
		})
		if err != nil {
			return NewOperationError("query failed", err)
		}

		results = make([]domain.ScoredChunk, 0, len(resp.Matches))
		for _, match := range resp.Matches {
			if match == nil || match.Vector == nil {
				continue
			}
			text := ""
			if match.Vector.Metadata != nil {
				text = match.Vector.Metadata.GetFields()["text"].GetStringValue()
			}
			results = append(results, domain.ScoredChunk{
				ID:    match.Vector.Id,
				Text:  text,
				Score: match.Score,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// retry runs call with the configured per-attempt timeout and delay between
// attempts, stopping early when the parent context is done.
func (p *Pinecone) retry(parent context.Context, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Warn("retrying pinecone operation", "attempt", attempt, "error", lastErr)
			select {
			case <-parent.Done():
				return parent.Err()
			case <-time.After(p.config.RetryDelay):
			}
		}

		ctx, cancel := context.WithTimeout(parent, p.config.Timeout)
		err := call(ctx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if parent.Err() != nil {
			return parent.Err()
		}
	}
	p.logger.Error("pinecone operation failed after retries",
		"attempts", p.config.MaxRetries+1, "error", lastErr)
	return lastErr
}
