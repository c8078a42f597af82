// File: internal/handlers/prompt_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/medlabel/go-medlabel/internal/middleware"
	"github.com/medlabel/go-medlabel/internal/services/rag"
)

type PromptHandler struct {
	pipeline *rag.Pipeline
}

func NewPromptHandler(pipeline *rag.Pipeline) *PromptHandler {
	return &PromptHandler{pipeline: pipeline}
}

// HandlePrompt answers a medication question and records it as a turn of the
// caller's conversation, creating one when no conversation_id is supplied.
func (h *PromptHandler) HandlePrompt(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		UserPrompt     string `json:"user_prompt"`
		ConversationID string `json:"conversation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserPrompt) == "" {
		writeError(w, "user_prompt is required", http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.Ask(r.Context(), rag.Request{
		UserID:         userID,
		Medication:     req.UserPrompt,
		Question:       req.UserPrompt,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"response":        result.Response,
		"conversation_id": result.ConversationID,
	})
}

// writePipelineError maps pipeline error kinds to HTTP statuses. Internals
// stay in the logs; callers get a generic message.
func writePipelineError(w http.ResponseWriter, err error) {
	switch rag.KindOf(err) {
	case rag.KindValidation:
		message := "Invalid request"
		var pe *rag.PipelineError
		if errors.As(err, &pe) {
			message = pe.Message
		}
		writeError(w, message, http.StatusBadRequest)
	case rag.KindNotFound:
		writeError(w, "No information found for this medication or conversation", http.StatusNotFound)
	default:
		writeError(w, "An error occurred while processing your prompt", http.StatusInternalServerError)
	}
}
