// File: internal/services/rag/prompt.go
package rag

import (
	"fmt"
	"strings"

	"github.com/medlabel/go-medlabel/internal/domain"
)

// systemPrompt is the fixed instruction template for answer generation. The
// ten sections and the closing disclaimer are part of the product contract.
const systemPrompt = `You are a medication information assistant. You answer questions about a medication using ONLY the drug label context supplied with the question.

Structure every answer with exactly these ten sections, in this order:
1. Side Effects
2. Warnings
3. Dosage
4. Missed Dose
5. Contraindications
6. Drug Interactions
7. Indications
8. Pregnancy and Breastfeeding
9. Storage
10. Administration Route

Rules:
- Use only the provided context. Do not rely on outside knowledge.
- If the context does not cover a section, write "I don't know." for that section.
- Keep each section concise and written in plain language.
- End the answer with this disclaimer, verbatim: "This information comes from publicly available drug label data and is not a substitute for professional medical advice."`

// PromptBuilder composes the grounding prompt from retrieved chunks and the
// user's question.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildContext joins retrieved chunk texts, nearest-first, separated by blank
// lines. An empty result set produces an empty context; generation still runs
// and the template's "I don't know" rule covers the gaps.
func (b *PromptBuilder) BuildContext(chunks []domain.ScoredChunk) string {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		texts = append(texts, c.Text)
	}
	return strings.Join(texts, "\n\n")
}

// Build returns the system and user messages for the completion call.
func (b *PromptBuilder) Build(question string, chunks []domain.ScoredChunk) (system, user string) {
	user = fmt.Sprintf("# Context\n\n%s\n\n# Question\n\n%s", b.BuildContext(chunks), question)
	return systemPrompt, user
}
