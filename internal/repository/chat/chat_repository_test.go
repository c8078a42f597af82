// File: internal/repository/chat/chat_repository_test.go
package chat

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medlabel/go-medlabel/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Conversation{}, &domain.Chat{}))
	return db
}

func newTurn(convID, prompt, response string) *domain.Chat {
	return &domain.Chat{
		ConversationID: convID,
		UserID:         1,
		UserPrompt:     prompt,
		LLMResponse:    response,
	}
}

func TestCreateAndFindByConversationID(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(newTestDB(t))

	_, err := repo.Create(ctx, newTurn("conv-1", "first question", "first answer"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTurn("conv-1", "second question", "second answer"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTurn("conv-2", "unrelated", "answer"))
	require.NoError(t, err)

	chats, err := repo.FindByConversationID(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "first question", chats[0].UserPrompt)
	assert.Equal(t, "second question", chats[1].UserPrompt)
}

func TestCreateAllowsRepeatedPrompts(t *testing.T) {
	// Asking the same question twice records two distinct turns.
	ctx := context.Background()
	repo := NewChatRepository(newTestDB(t))

	_, err := repo.Create(ctx, newTurn("conv-1", "same question", "a1"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTurn("conv-1", "same question", "a2"))
	require.NoError(t, err)

	chats, err := repo.FindByConversationID(ctx, "conv-1")
	require.NoError(t, err)
	assert.Len(t, chats, 2)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(newTestDB(t))

	_, err := repo.Create(ctx, nil)
	assert.Error(t, err)

	_, err = repo.Create(ctx, &domain.Chat{UserID: 1, UserPrompt: "q"})
	assert.Error(t, err)

	_, err = repo.Create(ctx, &domain.Chat{ConversationID: "c", UserPrompt: "q"})
	assert.Error(t, err)

	_, err = repo.Create(ctx, &domain.Chat{ConversationID: "c", UserID: 1, UserPrompt: "   "})
	assert.Error(t, err)
}

func TestFindFirstByConversationID(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(newTestDB(t))

	_, err := repo.FindFirstByConversationID(ctx, "missing")
	assert.ErrorIs(t, err, ErrChatNotFound)

	_, err = repo.Create(ctx, newTurn("conv-1", "the opening question", "a1"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTurn("conv-1", "a later question", "a2"))
	require.NoError(t, err)

	first, err := repo.FindFirstByConversationID(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "the opening question", first.UserPrompt)
}

func TestDeleteByConversationID(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(newTestDB(t))

	_, err := repo.Create(ctx, newTurn("conv-1", "q", "a"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTurn("conv-2", "kept", "a"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByConversationID(ctx, "conv-1"))

	deleted, err := repo.FindByConversationID(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, deleted)

	kept, err := repo.FindByConversationID(ctx, "conv-2")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
