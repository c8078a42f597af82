// File: internal/repository/conversation/interface.go

package conversation

import (
	"context"

	"github.com/medlabel/go-medlabel/internal/domain"
)

// ConversationRepository persists conversations and their turns.
type ConversationRepository interface {
	// Create stores a new conversation. The ID must already be set.
	Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error)

	// FindByIDAndUserID returns the conversation only if it belongs to the user.
	FindByIDAndUserID(ctx context.Context, id string, userID uint) (*domain.Conversation, error)

	// FindByUserID returns the user's conversations, most recently updated first.
	FindByUserID(ctx context.Context, userID uint) ([]domain.Conversation, error)

	// UpdateTitle renames the conversation if it belongs to the user.
	UpdateTitle(ctx context.Context, id string, userID uint, title string) error

	// Delete removes the conversation and all of its turns.
	Delete(ctx context.Context, id string, userID uint) error

	// AppendTurn records one prompt/response pair. When conversationID is empty
	// a new conversation is created with the given title; otherwise the turn is
	// appended to the existing conversation after an ownership check. The whole
	// operation runs in a single transaction.
	AppendTurn(ctx context.Context, conversationID string, userID uint, title, prompt, response string) (*domain.Conversation, error)
}
