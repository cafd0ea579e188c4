package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	DisplayName  string
	PhotoURL     string
	XP           int    `gorm:"default:0"` // monotonic counter, never reset
	Level        int    `gorm:"default:1"`
	Title        string `gorm:"default:Ferro"`
	IsAdmin      bool   `gorm:"default:false"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}

// LessonCompletion records a lesson as completed for a user exactly once.
// The unique index is what makes the completion insert idempotent.
type LessonCompletion struct {
	gorm.Model
	UserID   uint `gorm:"uniqueIndex:idx_user_lesson"`
	LessonID uint `gorm:"uniqueIndex:idx_user_lesson"`
}

type CourseCompletion struct {
	gorm.Model
	UserID   uint `gorm:"uniqueIndex:idx_user_course"`
	CourseID uint `gorm:"uniqueIndex:idx_user_course"`
}
