// File: internal/services/index/errors.go
package index

import "fmt"

// IndexError represents a vector index failure.
type IndexError struct {
	Type    string
	Message string
	Err     error
}

func (e *IndexError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("index %s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("index %s error: %s", e.Type, e.Message)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

func NewConfigError(message string) *IndexError {
	return &IndexError{Type: "config", Message: message}
}

func NewConnectionError(message string, err error) *IndexError {
	return &IndexError{Type: "connection", Message: message, Err: err}
}

func NewOperationError(message string, err error) *IndexError {
	return &IndexError{Type: "operation", Message: message, Err: err}
}
