// File: internal/services/ai/errors.go
package ai

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeEmbedding  ErrorType = "EMBEDDING"
	ErrTypeCompletion ErrorType = "COMPLETION"
	ErrTypeValidation ErrorType = "VALIDATION"
)

type AIError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Operation: "config", Message: msg}
}

func NewEmbeddingError(msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeEmbedding, Operation: "embedding", Message: msg, Cause: cause}
}

func NewCompletionError(msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeCompletion, Operation: "completion", Message: msg, Cause: cause}
}
