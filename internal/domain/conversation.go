// File: internal/domain/conversation.go
package domain

import "time"

// Conversation is a titled thread of prompt/response turns owned by one user.
type Conversation struct {
	ID        string    `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"-" gorm:"not null;index"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
