package models

import "gorm.io/gorm"

// Achievement is immutable reference data seeded at startup. Keys in the
// "elo_" namespace are rank achievements: they award the badge only, never
// XP, since ranks are themselves derived from level.
type Achievement struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Description string
	ImageURL    string
	XP          int
}

// UserBadge is a badge held by a user. The composite unique index gives the
// badge set its set-union insert semantics: a concurrent double insert for
// the same (user, badge) pair leaves exactly one row.
type UserBadge struct {
	gorm.Model
	UserID      uint   `gorm:"uniqueIndex:idx_user_badge"`
	BadgeID     string `gorm:"uniqueIndex:idx_user_badge"`
	Name        string
	Description string
	ImageURL    string
}

// Badge is the read-side value handed to clients and event listeners.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

func (b UserBadge) AsBadge() Badge {
	return Badge{ID: b.BadgeID, Name: b.Name, Description: b.Description, ImageURL: b.ImageURL}
}
