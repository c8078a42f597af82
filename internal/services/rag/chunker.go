// File: internal/services/rag/chunker.go
package rag

import (
	"strconv"

	"github.com/medlabel/go-medlabel/internal/domain"
)

// Chunker splits normalized text into fixed-size windows where consecutive
// windows share exactly overlap characters. Offsets are in runes so multibyte
// text never splits mid-character.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) (*Chunker, error) {
	cfg := &Config{ChunkSize: size, ChunkOverlap: overlap, RetrievalTopK: 1, EmbedConcurrency: 1}
	if err := cfg.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split produces the chunk sequence for one document. Dropping each non-first
// chunk's leading overlap runes and concatenating reconstructs the document
// text exactly. Text no longer than the window yields a single chunk.
func (c *Chunker) Split(doc domain.Document) []domain.Chunk {
	runes := []rune(doc.Text)
	step := c.size - c.overlap

	var chunks []domain.Chunk
	for start, idx := 0, 0; ; start, idx = start+step, idx+1 {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, domain.Chunk{
				ID:    doc.ID + ":" + strconv.Itoa(idx),
				Index: idx,
				Text:  string(runes[start:]),
			})
			break
		}
		chunks = append(chunks, domain.Chunk{
			ID:    doc.ID + ":" + strconv.Itoa(idx),
			Index: idx,
			Text:  string(runes[start:end]),
		})
	}
	return chunks
}
