// File: internal/handlers/conversation_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/medlabel/go-medlabel/internal/middleware"
	conversationrepo "github.com/medlabel/go-medlabel/internal/repository/conversation"
	"github.com/medlabel/go-medlabel/internal/services"
)

type ConversationHandler struct {
	service *services.ConversationService
}

func NewConversationHandler(service *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// ListConversations returns the caller's conversations, newest-updated first.
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	summaries, err := h.service.ListConversations(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve conversations", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": summaries})
}

// GetConversation returns one conversation with its messages in order.
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	detail, err := h.service.GetConversation(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		if errors.Is(err, conversationrepo.ErrConversationNotFound) {
			writeError(w, "Conversation not found", http.StatusNotFound)
			return
		}
		writeError(w, "Could not retrieve conversation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// CreateConversation starts an empty conversation with an optional title.
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	// A missing body is fine; the title just defaults.
	_ = json.NewDecoder(r.Body).Decode(&req)

	conv, err := h.service.CreateConversation(r.Context(), userID, req.Title)
	if err != nil {
		writeError(w, "Could not create conversation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"conversation": conv})
}

// RenameConversation updates the title.
func (h *ConversationHandler) RenameConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conv, err := h.service.RenameConversation(r.Context(), mux.Vars(r)["id"], userID, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyTitle):
			writeError(w, "Title is required", http.StatusBadRequest)
		case errors.Is(err, conversationrepo.ErrConversationNotFound):
			writeError(w, "Conversation not found", http.StatusNotFound)
		default:
			writeError(w, "Could not update conversation", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"conversation": conv})
}

// DeleteConversation removes the conversation and its messages.
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.DeleteConversation(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		if errors.Is(err, conversationrepo.ErrConversationNotFound) {
			writeError(w, "Conversation not found", http.StatusNotFound)
			return
		}
		writeError(w, "Could not delete conversation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted successfully"})
}
