package services

import (
	"log"
	"sync"

	"comunidade/backend/models"
)

// Event is the tagged union of cross-feature notifications. Delivery is
// fire-and-forget: publishing never fails the caller and listeners are not
// part of durable state.
type Event interface {
	EventKind() string
}

type BadgeGranted struct {
	UserID uint
	Badge  models.Badge
}

func (BadgeGranted) EventKind() string { return "badge_granted" }

// FriendAccepted is the cross-page "start chat" signal.
type FriendAccepted struct {
	UserID   uint
	FriendID uint
}

func (FriendAccepted) EventKind() string { return "friend_accepted" }

type SessionStarted struct {
	HostID      uint
	ChannelName string
}

func (SessionStarted) EventKind() string { return "session_started" }

type SessionStopped struct {
	ChannelName string
}

func (SessionStopped) EventKind() string { return "session_stopped" }

// Bus is an explicit publish/subscribe service passed to its consumers, not
// an ambient global.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
	log  *log.Logger
}

func NewBus(logger *log.Logger) *Bus {
	return &Bus{subs: make(map[int]func(Event)), log: logger}
}

// Subscribe registers a listener and returns its unsubscribe func.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers the event to every current subscriber. A panicking
// listener is logged and skipped so it can never take down the publisher.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	listeners := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		listeners = append(listeners, fn)
	}
	b.mu.RUnlock()

	for _, fn := range listeners {
		b.dispatch(fn, e)
	}
}

func (b *Bus) dispatch(fn func(Event), e Event) {
	defer func() {
		if r := recover(); r != nil && b.log != nil {
			b.log.Printf("event listener panicked on %s: %v", e.EventKind(), r)
		}
	}()
	fn(e)
}
