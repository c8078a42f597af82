// File: internal/services/conversation_service.go

package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/medlabel/go-medlabel/internal/domain"
	chatrepo "github.com/medlabel/go-medlabel/internal/repository/chat"
	conversationrepo "github.com/medlabel/go-medlabel/internal/repository/conversation"
)

const (
	defaultConversationTitle = "New Conversation"
	previewMaxRunes          = 50
)

// ConversationSummary is one row of the conversation list. Preview is the
// first prompt of the conversation, truncated for display.
type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationView is the conversation header returned by detail, create and
// rename responses.
type ConversationView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one side of a turn. Assistant messages additionally carry the
// markdown response rendered to HTML.
type Message struct {
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ConversationDetail is a conversation with its full dialogue in
// chronological order.
type ConversationDetail struct {
	Conversation ConversationView `json:"conversation"`
	Messages     []Message        `json:"messages"`
}

// ConversationService exposes the per-user conversation surface: list with
// previews, detail with rendered messages, create, rename, delete.
type ConversationService struct {
	conversations conversationrepo.ConversationRepository
	chats         chatrepo.ChatRepository
	markdown      goldmark.Markdown
	logger        Logger
}

func NewConversationService(
	conversations conversationrepo.ConversationRepository,
	chats chatrepo.ChatRepository,
	logger Logger,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		chats:         chats,
		markdown:      goldmark.New(),
		logger:        logger,
	}
}

// ListConversations returns the caller's conversations, newest-updated first.
func (s *ConversationService) ListConversations(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	convs, err := s.conversations.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		preview := ""
		first, err := s.chats.FindFirstByConversationID(ctx, conv.ID)
		if err != nil && !errors.Is(err, chatrepo.ErrChatNotFound) {
			return nil, err
		}
		if first != nil {
			preview = truncateRunes(first.UserPrompt, previewMaxRunes)
		}
		summaries = append(summaries, ConversationSummary{
			ID:        conv.ID,
			Title:     conv.Title,
			Preview:   preview,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}

	return summaries, nil
}

// GetConversation returns the conversation and its dialogue. Each stored turn
// expands to a user message and, when a response exists, an assistant message.
func (s *ConversationService) GetConversation(ctx context.Context, id string, userID uint) (*ConversationDetail, error) {
	conv, err := s.conversations.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	turns, err := s.chats.FindByConversationID(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, 2*len(turns))
	for _, turn := range turns {
		messages = append(messages, Message{
			Role:      domain.RoleUser,
			Content:   turn.UserPrompt,
			Timestamp: turn.CreatedAt,
		})
		if turn.LLMResponse != "" {
			messages = append(messages, Message{
				Role:        domain.RoleAssistant,
				Content:     turn.LLMResponse,
				ContentHTML: s.renderMarkdown(turn.LLMResponse),
				Timestamp:   turn.CreatedAt,
			})
		}
	}

	return &ConversationDetail{
		Conversation: viewOf(conv),
		Messages:     messages,
	}, nil
}

// CreateConversation starts an empty conversation. A blank title falls back
// to the default.
func (s *ConversationService) CreateConversation(ctx context.Context, userID uint, title string) (*ConversationView, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultConversationTitle
	}

	conv, err := s.conversations.Create(ctx, &domain.Conversation{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  title,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Conversation created", "conversation_id", conv.ID, "user_id", userID)
	view := viewOf(conv)
	return &view, nil
}

func (s *ConversationService) RenameConversation(ctx context.Context, id string, userID uint, title string) (*ConversationView, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	if err := s.conversations.UpdateTitle(ctx, id, userID, title); err != nil {
		return nil, err
	}

	conv, err := s.conversations.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	view := viewOf(conv)
	return &view, nil
}

func (s *ConversationService) DeleteConversation(ctx context.Context, id string, userID uint) error {
	if err := s.conversations.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("Conversation deleted", "conversation_id", id, "user_id", userID)
	return nil
}

// ErrEmptyTitle rejects rename requests with a missing or blank title.
var ErrEmptyTitle = errors.New("title is required")

func (s *ConversationService) renderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(src), &buf); err != nil {
		s.logger.Warn("Markdown rendering failed", "error", err)
		return ""
	}
	return buf.String()
}

func viewOf(conv *domain.Conversation) ConversationView {
	return ConversationView{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
