// File: internal/repository/conversation/conversation_repository.go

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medlabel/go-medlabel/internal/domain"
	chatrepo "github.com/medlabel/go-medlabel/internal/repository/chat"
	"gorm.io/gorm"
)

var ErrConversationNotFound = errors.New("conversation not found")

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

func (r *gormConversationRepository) Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	if err := validateConversationInput(conv); err != nil {
		log.Printf("[ConversationRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Create(conv).Error
	if err != nil {
		log.Printf("[ConversationRepository] Database error creating conversation for user %d: %v", conv.UserID, err)
		return nil, errors.New("database error creating conversation")
	}

	return conv, nil
}

func (r *gormConversationRepository) FindByIDAndUserID(ctx context.Context, id string, userID uint) (*domain.Conversation, error) {
	if id == "" || userID == 0 {
		return nil, errors.New("invalid conversation or user ID")
	}

	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&conv).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		log.Printf("[ConversationRepository] Database error finding conversation %s: %v", id, err)
		return nil, errors.New("database query failed")
	}

	return &conv, nil
}

func (r *gormConversationRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var convs []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&convs).Error

	if err != nil {
		log.Printf("[ConversationRepository] Database error listing conversations for user %d: %v", userID, err)
		return nil, errors.New("database error fetching conversations")
	}

	return convs, nil
}

func (r *gormConversationRepository) UpdateTitle(ctx context.Context, id string, userID uint, title string) error {
	if id == "" || userID == 0 {
		return errors.New("invalid conversation or user ID")
	}
	if strings.TrimSpace(title) == "" {
		return errors.New("title cannot be empty")
	}

	result := r.db.WithContext(ctx).Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"title":      title,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		log.Printf("[ConversationRepository] Database error renaming conversation %s: %v", id, result.Error)
		return errors.New("database error updating conversation")
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}

	return nil
}

// Delete removes the conversation and its turns in one transaction so a
// failure cannot leave orphaned chats behind.
func (r *gormConversationRepository) Delete(ctx context.Context, id string, userID uint) error {
	if id == "" || userID == 0 {
		return errors.New("invalid conversation or user ID")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).
			Delete(&domain.Conversation{})
		if result.Error != nil {
			log.Printf("[ConversationRepository] Database error deleting conversation %s: %v", id, result.Error)
			return errors.New("database error deleting conversation")
		}
		if result.RowsAffected == 0 {
			return ErrConversationNotFound
		}

		// The chats cascade goes through the chat repository, bound to this
		// transaction.
		if err := chatrepo.NewChatRepository(tx).DeleteByConversationID(ctx, id); err != nil {
			return err
		}

		return nil
	})
}

func (r *gormConversationRepository) AppendTurn(ctx context.Context, conversationID string, userID uint, title, prompt, response string) (*domain.Conversation, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("user prompt cannot be empty")
	}

	var conv domain.Conversation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if conversationID == "" {
			conv = domain.Conversation{
				ID:     uuid.NewString(),
				UserID: userID,
				Title:  title,
			}
			if err := tx.Create(&conv).Error; err != nil {
				log.Printf("[ConversationRepository] Database error creating conversation for user %d: %v", userID, err)
				return errors.New("database error creating conversation")
			}
		} else {
			if err := tx.Where("id = ? AND user_id = ?", conversationID, userID).
				First(&conv).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrConversationNotFound
				}
				log.Printf("[ConversationRepository] Database error finding conversation %s: %v", conversationID, err)
				return errors.New("database query failed")
			}
		}

		// The turn insert goes through the chat repository, bound to this
		// transaction, so its validation and ownership invariant apply.
		if _, err := chatrepo.NewChatRepository(tx).Create(ctx, &domain.Chat{
			ConversationID: conv.ID,
			UserID:         conv.UserID,
			UserPrompt:     prompt,
			LLMResponse:    response,
		}); err != nil {
			return err
		}

		if err := tx.Model(&domain.Conversation{}).
			Where("id = ?", conv.ID).
			Update("updated_at", time.Now()).Error; err != nil {
			log.Printf("[ConversationRepository] Database error touching conversation %s: %v", conv.ID, err)
			return errors.New("database error updating conversation")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &conv, nil
}

func validateConversationInput(conv *domain.Conversation) error {
	if conv == nil {
		return errors.New("conversation cannot be nil")
	}
	if conv.ID == "" {
		return errors.New("conversation ID is required")
	}
	if conv.UserID == 0 {
		return errors.New("user ID is required")
	}
	return nil
}
