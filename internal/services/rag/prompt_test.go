// File: internal/services/rag/prompt_test.go
package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medlabel/go-medlabel/internal/domain"
)

func TestSystemPromptSections(t *testing.T) {
	builder := NewPromptBuilder()
	system, _ := builder.Build("What are the side effects?", nil)

	sections := []string{
		"Side Effects",
		"Warnings",
		"Dosage",
		"Missed Dose",
		"Contraindications",
		"Drug Interactions",
		"Indications",
		"Pregnancy and Breastfeeding",
		"Storage",
		"Administration Route",
	}
	for _, section := range sections {
		assert.Contains(t, system, section)
	}
	assert.Contains(t, system, "I don't know.")
	assert.Contains(t, system, "not a substitute for professional medical advice")
}

func TestBuildContextJoinsChunks(t *testing.T) {
	builder := NewPromptBuilder()

	context := builder.BuildContext([]domain.ScoredChunk{
		{ID: "a:0", Text: "first chunk", Score: 0.9},
		{ID: "a:1", Text: "second chunk", Score: 0.8},
	})
	assert.Equal(t, "first chunk\n\nsecond chunk", context)
}

func TestBuildContextSkipsBlankChunks(t *testing.T) {
	builder := NewPromptBuilder()

	context := builder.BuildContext([]domain.ScoredChunk{
		{ID: "a:0", Text: "useful", Score: 0.9},
		{ID: "a:1", Text: "   ", Score: 0.8},
		{ID: "a:2", Text: "also useful", Score: 0.7},
	})
	assert.Equal(t, "useful\n\nalso useful", context)
}

func TestBuildUserMessage(t *testing.T) {
	builder := NewPromptBuilder()

	_, user := builder.Build("dosage of Lipitor", []domain.ScoredChunk{
		{ID: "lipitor:0", Text: "take one tablet daily", Score: 0.95},
	})

	assert.True(t, strings.HasPrefix(user, "# Context\n\n"))
	assert.Contains(t, user, "take one tablet daily")
	assert.Contains(t, user, "# Question\n\ndosage of Lipitor")
}

func TestBuildWithEmptyRetrieval(t *testing.T) {
	builder := NewPromptBuilder()

	_, user := builder.Build("anything", nil)
	assert.Contains(t, user, "# Context\n\n\n\n# Question")
}
