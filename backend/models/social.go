package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type FriendRequest struct {
	gorm.Model
	SenderID       uint `gorm:"uniqueIndex:idx_sender_receiver"`
	ReceiverID     uint `gorm:"uniqueIndex:idx_sender_receiver"`
	SenderName     string
	SenderPhotoURL string
}

// Friendship rows are stored in both directions so each side can list its
// own friends with a single equality query.
type Friendship struct {
	gorm.Model
	UserID         uint `gorm:"uniqueIndex:idx_user_friend"`
	FriendID       uint `gorm:"uniqueIndex:idx_user_friend"`
	FriendName     string
	FriendPhotoURL string
}

type DirectMessage struct {
	gorm.Model
	ChatID   string `gorm:"index"`
	SenderID uint
	Text     string
	SentAt   time.Time
}

// ChatID returns the conversation key for two users. Ordering the IDs makes
// both sides resolve to the same conversation.
func ChatID(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}
