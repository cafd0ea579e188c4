package models

import "gorm.io/gorm"

type ForumPost struct {
	gorm.Model
	AuthorID     uint
	AuthorName   string
	Title        string
	Content      string
	CommentCount int `gorm:"default:0"`
}

// ForumComment forms a tree via ParentID (nil means root comment).
// Upvotes are not stored: they are derived from CommentLike rows on read so
// the counter can never drift from the like set.
type ForumComment struct {
	gorm.Model
	PostID         uint `gorm:"index"`
	ParentID       *uint
	AuthorID       uint
	AuthorName     string
	AuthorPhotoURL string
	Content        string
}

type CommentLike struct {
	gorm.Model
	CommentID uint `gorm:"uniqueIndex:idx_comment_user"`
	UserID    uint `gorm:"uniqueIndex:idx_comment_user"`
}
