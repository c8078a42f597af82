package chat

import (
	"context"

	"github.com/medlabel/go-medlabel/internal/domain"
)

// ChatRepository handles persistence of prompt/response turns. Create and
// DeleteByConversationID are called inside conversation-level transactions;
// construct the repository over the transaction handle for that.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByConversationID(ctx context.Context, conversationID string) ([]domain.Chat, error)
	FindFirstByConversationID(ctx context.Context, conversationID string) (*domain.Chat, error)
	DeleteByConversationID(ctx context.Context, conversationID string) error
}
