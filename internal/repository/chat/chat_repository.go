// File: internal/repository/chat/chat_repository.go

package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/medlabel/go-medlabel/internal/domain"
	"gorm.io/gorm"
)

var ErrChatNotFound = errors.New("chat not found")

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

// Create inserts one turn. The caller is responsible for running it inside a
// transaction when the insert must be atomic with conversation bookkeeping.
func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if err := r.validateChatInput(chat); err != nil {
		log.Printf("[ChatRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Create(chat).Error
	if err != nil {
		// Secure logging - no prompt content exposed
		log.Printf("[ChatRepository] Database error during chat creation for conversation %s: %v", chat.ConversationID, err)
		return nil, errors.New("database error creating chat")
	}

	return chat, nil
}

// FindByConversationID returns all turns of a conversation in creation order.
// Creation order reconstructs the dialogue.
func (r *gormChatRepository) FindByConversationID(ctx context.Context, conversationID string) ([]domain.Chat, error) {
	if conversationID == "" {
		return nil, errors.New("invalid conversation ID")
	}

	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&chats).Error

	if err != nil {
		log.Printf("[ChatRepository] Database error finding chats for conversation %s: %v", conversationID, err)
		return nil, errors.New("database error fetching chats")
	}

	return chats, nil
}

// FindFirstByConversationID returns the oldest turn, used for list previews.
func (r *gormChatRepository) FindFirstByConversationID(ctx context.Context, conversationID string) (*domain.Chat, error) {
	if conversationID == "" {
		return nil, errors.New("invalid conversation ID")
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		First(&chat).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		log.Printf("[ChatRepository] Database error finding first chat for conversation %s: %v", conversationID, err)
		return nil, errors.New("database query failed")
	}

	return &chat, nil
}

// DeleteByConversationID removes every turn of a conversation.
func (r *gormChatRepository) DeleteByConversationID(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return errors.New("invalid conversation ID")
	}

	result := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&domain.Chat{})
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error deleting chats for conversation %s: %v", conversationID, result.Error)
		return errors.New("database error deleting chats")
	}

	return nil
}

func (r *gormChatRepository) validateChatInput(chat *domain.Chat) error {
	if chat == nil {
		return errors.New("chat cannot be nil")
	}
	if chat.ConversationID == "" {
		return errors.New("conversation ID is required")
	}
	if chat.UserID == 0 {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(chat.UserPrompt) == "" {
		return errors.New("user prompt cannot be empty")
	}
	return nil
}
