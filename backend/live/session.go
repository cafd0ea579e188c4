package live

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"comunidade/backend/models"
	"comunidade/backend/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrAlreadyLive rejects a second Start while a broadcast is running, so
	// a concurrent channel can never be created silently.
	ErrAlreadyLive = errors.New("a live session is already running")
	// ErrNotLive rejects pause/resume/stop without a running broadcast.
	ErrNotLive = errors.New("no live session is running")
)

// Coordinator manages the singleton "current" session record and its
// presence room: Idle -> Live <-> Paused -> Idle.
type Coordinator struct {
	DB     *gorm.DB
	Hub    *Hub
	Log    *log.Logger
	Events *services.Bus
}

func NewCoordinator(db *gorm.DB, hub *Hub, logger *log.Logger, events *services.Bus) *Coordinator {
	return &Coordinator{DB: db, Hub: hub, Log: logger, Events: events}
}

// Current loads the singleton session record; an Idle record is returned
// when no broadcast has ever run.
func (c *Coordinator) Current() (models.LiveSession, error) {
	var session models.LiveSession
	err := c.DB.Where(models.LiveSession{Key: models.SessionKey}).
		FirstOrInit(&session).Error
	return session, err
}

// Start flips the singleton to Live under a fresh channel name. Only valid
// from Idle: starting while live is rejected rather than silently replacing
// the running channel.
func (c *Coordinator) Start(host models.User) (models.LiveSession, error) {
	session, err := c.Current()
	if err != nil {
		return session, err
	}
	if session.IsLive {
		return session, ErrAlreadyLive
	}

	session = models.LiveSession{
		Key:         models.SessionKey,
		IsLive:      true,
		IsPaused:    false,
		HostID:      host.ID,
		HostName:    host.DisplayName,
		ChannelName: uuid.NewString(),
		StartedAt:   time.Now(),
	}
	if err := c.DB.Save(&session).Error; err != nil {
		return session, err
	}

	c.Hub.Room(session.ChannelName).SetSessionState(true, false)
	c.Events.Publish(services.SessionStarted{HostID: host.ID, ChannelName: session.ChannelName})
	c.Log.Printf("live session started on channel %s by user %d", session.ChannelName, host.ID)
	return session, nil
}

// Pause keeps the session live but blocks non-admin clients out of the media
// transport until Resume.
func (c *Coordinator) Pause() error {
	return c.setPaused(true)
}

func (c *Coordinator) Resume() error {
	return c.setPaused(false)
}

func (c *Coordinator) setPaused(paused bool) error {
	session, err := c.Current()
	if err != nil {
		return err
	}
	if !session.IsLive {
		return ErrNotLive
	}

	session.IsPaused = paused
	if err := c.DB.Save(&session).Error; err != nil {
		return err
	}

	c.Hub.Room(session.ChannelName).SetSessionState(true, paused)
	return nil
}

// Stop returns the singleton to Idle, purges the roster, disconnects every
// presence client and archives the live chat.
func (c *Coordinator) Stop() error {
	session, err := c.Current()
	if err != nil {
		return err
	}
	if !session.IsLive {
		return ErrNotLive
	}

	session.IsLive = false
	session.IsPaused = false
	if err := c.DB.Save(&session).Error; err != nil {
		return err
	}

	chat := c.Hub.CloseRoom(session.ChannelName)
	c.archiveChat(session, chat)

	c.Events.Publish(services.SessionStopped{ChannelName: session.ChannelName})
	c.Log.Printf("live session stopped on channel %s", session.ChannelName)
	return nil
}

// archiveChat persists the finished session and its chat log. Best-effort:
// an archival failure never blocks the stop.
func (c *Coordinator) archiveChat(session models.LiveSession, chat []ChatMessage) {
	encoded, err := json.Marshal(chat)
	if err != nil {
		c.Log.Printf("archive chat for channel %s: %v", session.ChannelName, err)
		return
	}

	history := models.SessionHistory{
		ChannelName: session.ChannelName,
		HostID:      session.HostID,
		HostName:    session.HostName,
		StartedAt:   session.StartedAt,
		EndedAt:     time.Now(),
		Chat:        string(encoded),
	}
	if err := c.DB.Create(&history).Error; err != nil {
		c.Log.Printf("archive session %s: %v", session.ChannelName, err)
	}
}
