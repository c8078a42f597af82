// File: internal/services/rag/config.go
package rag

import "fmt"

type Config struct {
	// Chunking Configuration
	ChunkSize    int // window size in characters
	ChunkOverlap int // characters shared by consecutive chunks

	// Retrieval Configuration
	RetrievalTopK int

	// Embedding fan-out bound for independent chunks.
	EmbedConcurrency int
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap cannot be negative")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be smaller than chunk_size")
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("retrieval_top_k must be positive")
	}
	if c.RetrievalTopK > 20 {
		return fmt.Errorf("retrieval_top_k cannot exceed 20")
	}
	if c.EmbedConcurrency < 1 {
		return fmt.Errorf("embed_concurrency must be at least 1")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		ChunkSize:        1000,
		ChunkOverlap:     20,
		RetrievalTopK:    4,
		EmbedConcurrency: 4,
	}
}
