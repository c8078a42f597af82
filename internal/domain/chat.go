// File: internal/domain/chat.go
package domain

import "time"

// Chat is a single prompt/response turn inside a Conversation.
// UserID always equals the owning Conversation's UserID; the repository
// enforces that invariant at write time.
type Chat struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	ConversationID string    `json:"conversation_id" gorm:"not null;index"`
	UserID         uint      `json:"-" gorm:"not null"`
	UserPrompt     string    `json:"user_prompt" gorm:"not null"`
	LLMResponse    string    `json:"llm_response"`
	CreatedAt      time.Time `json:"created_at"`
}

// Message roles used when replaying a conversation as a dialogue.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
