package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionKey is the primary key of the singleton live session record. The
// design allows at most one active session system-wide.
const SessionKey = "current"

type LiveSession struct {
	Key         string `gorm:"primaryKey"`
	IsLive      bool   `gorm:"default:false"`
	IsPaused    bool   `gorm:"default:false"`
	HostID      uint
	HostName    string
	ChannelName string
	StartedAt   time.Time
	UpdatedAt   time.Time
}

// SessionHistory archives a finished broadcast together with its live chat,
// serialized as JSON.
type SessionHistory struct {
	gorm.Model
	ChannelName string `gorm:"index"`
	HostID      uint
	HostName    string
	StartedAt   time.Time
	EndedAt     time.Time
	Chat        string
}
