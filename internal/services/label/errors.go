// File: internal/services/label/errors.go
package label

import "fmt"

// LabelError wraps failures of the outbound label API call.
type LabelError struct {
	Type    string
	Message string
	Err     error
}

func (e *LabelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("label %s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("label %s error: %s", e.Type, e.Message)
}

func (e *LabelError) Unwrap() error {
	return e.Err
}

// ErrNoResults reports that the label API returned no record for the term.
// Callers surface it as "no information found".
var ErrNoResults = &LabelError{Type: "not_found", Message: "no label data found"}

func NewConfigError(message string) *LabelError {
	return &LabelError{Type: "config", Message: message}
}

func NewRequestError(message string, err error) *LabelError {
	return &LabelError{Type: "request", Message: message, Err: err}
}

func NewDecodeError(message string, err error) *LabelError {
	return &LabelError{Type: "decode", Message: message, Err: err}
}
