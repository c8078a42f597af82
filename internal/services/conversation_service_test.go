// File: internal/services/conversation_service_test.go
package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medlabel/go-medlabel/internal/domain"
	chatrepo "github.com/medlabel/go-medlabel/internal/repository/chat"
	conversationrepo "github.com/medlabel/go-medlabel/internal/repository/conversation"
)

func newTestService(t *testing.T) (*ConversationService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Conversation{}, &domain.Chat{}))

	service := NewConversationService(
		conversationrepo.NewConversationRepository(db),
		chatrepo.NewChatRepository(db),
		&NoOpLogger{},
	)
	return service, db
}

func TestCreateConversationDefaults(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	conv, err := service.CreateConversation(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "New Conversation", conv.Title)
	assert.NotEmpty(t, conv.ID)

	named, err := service.CreateConversation(ctx, 1, "Ibuprofen")
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen", named.Title)
}

func TestListConversationsWithPreview(t *testing.T) {
	ctx := context.Background()
	service, db := newTestService(t)

	conv, err := service.CreateConversation(ctx, 1, "With messages")
	require.NoError(t, err)
	empty, err := service.CreateConversation(ctx, 1, "Empty")
	require.NoError(t, err)

	longPrompt := strings.Repeat("what should I know about this medication ", 3)
	require.NoError(t, db.Create(&domain.Chat{
		ConversationID: conv.ID,
		UserID:         1,
		UserPrompt:     longPrompt,
		LLMResponse:    "answer",
	}).Error)

	// Deterministic recency order for the assertion below.
	require.NoError(t, db.Model(&domain.Conversation{}).
		Where("id = ?", empty.ID).
		Update("updated_at", time.Now().Add(-time.Hour)).Error)

	summaries, err := service.ListConversations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, conv.ID, summaries[0].ID)
	assert.Equal(t, string([]rune(longPrompt)[:50])+"...", summaries[0].Preview)
	assert.Equal(t, empty.ID, summaries[1].ID)
	assert.Empty(t, summaries[1].Preview)
}

func TestListConversationsIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	_, err := service.CreateConversation(ctx, 1, "mine")
	require.NoError(t, err)

	summaries, err := service.ListConversations(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestGetConversationMessages(t *testing.T) {
	ctx := context.Background()
	service, db := newTestService(t)

	conv, err := service.CreateConversation(ctx, 1, "Dialogue")
	require.NoError(t, err)

	require.NoError(t, db.Create(&domain.Chat{
		ConversationID: conv.ID,
		UserID:         1,
		UserPrompt:     "what is it for?",
		LLMResponse:    "**Indications**: cholesterol",
	}).Error)
	require.NoError(t, db.Create(&domain.Chat{
		ConversationID: conv.ID,
		UserID:         1,
		UserPrompt:     "pending question",
		LLMResponse:    "",
	}).Error)

	detail, err := service.GetConversation(ctx, conv.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, detail.Conversation.ID)

	// Two turns: answered one expands to a pair, unanswered one stays alone.
	require.Len(t, detail.Messages, 3)
	assert.Equal(t, domain.RoleUser, detail.Messages[0].Role)
	assert.Equal(t, "what is it for?", detail.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, detail.Messages[1].Role)
	assert.Contains(t, detail.Messages[1].ContentHTML, "<strong>Indications</strong>")
	assert.Equal(t, domain.RoleUser, detail.Messages[2].Role)
	assert.Empty(t, detail.Messages[2].ContentHTML)
}

func TestGetConversationOwnership(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	conv, err := service.CreateConversation(ctx, 1, "mine")
	require.NoError(t, err)

	_, err = service.GetConversation(ctx, conv.ID, 2)
	assert.ErrorIs(t, err, conversationrepo.ErrConversationNotFound)
}

func TestRenameConversation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	conv, err := service.CreateConversation(ctx, 1, "before")
	require.NoError(t, err)

	renamed, err := service.RenameConversation(ctx, conv.ID, 1, "after")
	require.NoError(t, err)
	assert.Equal(t, "after", renamed.Title)

	_, err = service.RenameConversation(ctx, conv.ID, 1, "  ")
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = service.RenameConversation(ctx, conv.ID, 2, "stolen")
	assert.ErrorIs(t, err, conversationrepo.ErrConversationNotFound)
}

func TestDeleteConversation(t *testing.T) {
	ctx := context.Background()
	service, db := newTestService(t)

	conv, err := service.CreateConversation(ctx, 1, "doomed")
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Chat{
		ConversationID: conv.ID,
		UserID:         1,
		UserPrompt:     "q",
		LLMResponse:    "a",
	}).Error)

	require.NoError(t, service.DeleteConversation(ctx, conv.ID, 1))

	_, err = service.GetConversation(ctx, conv.ID, 1)
	assert.ErrorIs(t, err, conversationrepo.ErrConversationNotFound)

	var count int64
	require.NoError(t, db.Model(&domain.Chat{}).Where("conversation_id = ?", conv.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, service.DeleteConversation(ctx, conv.ID, 1), conversationrepo.ErrConversationNotFound)
}
