// File: internal/services/rag/errors.go
package rag

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation  ErrorKind = "VALIDATION"
	KindNotFound    ErrorKind = "NOT_FOUND"
	KindEmbedding   ErrorKind = "EMBEDDING"
	KindGeneration  ErrorKind = "GENERATION"
	KindPersistence ErrorKind = "PERSISTENCE"
	KindConfig      ErrorKind = "CONFIG"
)

// PipelineError is the failure of one pipeline stage. The kind decides the
// HTTP status a handler maps it to.
type PipelineError struct {
	Kind    ErrorKind
	Stage   string
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pipeline %s error in %s: %s (caused by: %v)",
			e.Kind, e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("pipeline %s error in %s: %s", e.Kind, e.Stage, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func NewValidationError(stage, msg string) *PipelineError {
	return &PipelineError{Kind: KindValidation, Stage: stage, Message: msg}
}

func NewNotFoundError(stage, msg string, cause error) *PipelineError {
	return &PipelineError{Kind: KindNotFound, Stage: stage, Message: msg, Cause: cause}
}

func NewEmbeddingError(stage, msg string, cause error) *PipelineError {
	return &PipelineError{Kind: KindEmbedding, Stage: stage, Message: msg, Cause: cause}
}

func NewGenerationError(stage, msg string, cause error) *PipelineError {
	return &PipelineError{Kind: KindGeneration, Stage: stage, Message: msg, Cause: cause}
}

func NewPersistenceError(stage, msg string, cause error) *PipelineError {
	return &PipelineError{Kind: KindPersistence, Stage: stage, Message: msg, Cause: cause}
}

func NewConfigError(msg string) *PipelineError {
	return &PipelineError{Kind: KindConfig, Stage: "config", Message: msg}
}

// KindOf extracts the error kind from err, or empty when err is not a
// pipeline error.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
