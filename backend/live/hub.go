package live

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// Participant is the ephemeral presence record of one connected user. It
// lives only in the hub: created on join, removed on explicit leave and on
// socket disconnect.
type Participant struct {
	UserID      uint   `json:"uid"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	HandRaised  bool   `json:"handRaised"`
	MicEnabled  bool   `json:"micEnabledByAdmin"`
}

type ChatMessage struct {
	SenderID   uint      `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

// wsConn is the slice of the websocket connection the hub needs; the
// concrete type is *websocket.Conn.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// client serializes all writes to one connection through a single writer
// goroutine so concurrent broadcasts never interleave frames.
type client struct {
	conn wsConn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn wsConn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *client) writeLoop() {
	for {
		select {
		case data := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// enqueue drops the frame when the client cannot keep up; presence state is
// re-broadcast on every change so a dropped frame self-corrects.
func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	case <-c.done:
	default:
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Room is the presence channel of one broadcast: the roster, the live chat
// log and the connected sockets.
type Room struct {
	channel string
	log     *log.Logger

	mu           sync.Mutex
	clients      map[uint]*client
	participants map[uint]*Participant
	chat         []ChatMessage
	isLive       bool
	isPaused     bool
}

// Join writes the presence record, sends the newcomer a roster and session
// snapshot and broadcasts the new roster. A second connection for the same
// user replaces the first.
func (r *Room) Join(p Participant, conn wsConn) {
	r.mu.Lock()
	if old, ok := r.clients[p.UserID]; ok {
		old.close()
	}
	cl := newClient(conn)
	r.clients[p.UserID] = cl
	stored := p
	r.participants[p.UserID] = &stored

	cl.enqueue(marshalSessionState(r.isLive, r.isPaused))
	roster := marshalRoster(r.rosterLocked())
	r.mu.Unlock()

	r.broadcast(roster)
}

// Leave removes the participant and its socket. It serves both the explicit
// leave and the disconnect-cleanup path, whichever fires first.
func (r *Room) Leave(userID uint) {
	r.mu.Lock()
	cl, connected := r.clients[userID]
	delete(r.clients, userID)
	_, present := r.participants[userID]
	delete(r.participants, userID)
	roster := marshalRoster(r.rosterLocked())
	r.mu.Unlock()

	if connected {
		cl.close()
	}
	if present {
		r.broadcast(roster)
	}
}

// RaiseHand toggles the caller's own hand-raise flag.
func (r *Room) RaiseHand(userID uint, raised bool) {
	r.mu.Lock()
	p, ok := r.participants[userID]
	if ok {
		p.HandRaised = raised
	}
	roster := marshalRoster(r.rosterLocked())
	r.mu.Unlock()

	if ok {
		r.broadcast(roster)
	}
}

// SetMicEnabled is the admin's answer to a raised hand. Granting is
// permission to unmute on the participant's side, never an automatic unmute.
func (r *Room) SetMicEnabled(target uint, enabled bool) {
	r.mu.Lock()
	p, ok := r.participants[target]
	if ok {
		p.MicEnabled = enabled
		if !enabled {
			p.HandRaised = false
		}
	}
	roster := marshalRoster(r.rosterLocked())
	r.mu.Unlock()

	if ok {
		r.broadcast(roster)
	}
}

// ResetHand lowers a participant's hand without granting the mic (denial).
func (r *Room) ResetHand(target uint) {
	r.mu.Lock()
	p, ok := r.participants[target]
	if ok {
		p.HandRaised = false
	}
	roster := marshalRoster(r.rosterLocked())
	r.mu.Unlock()

	if ok {
		r.broadcast(roster)
	}
}

// AppendChat stores the message in arrival order and broadcasts it. The log
// is archived when the session stops.
func (r *Room) AppendChat(msg ChatMessage) {
	msg.SentAt = time.Now()

	r.mu.Lock()
	r.chat = append(r.chat, msg)
	r.mu.Unlock()

	data, err := json.Marshal(struct {
		Type    string      `json:"type"`
		Message ChatMessage `json:"message"`
	}{Type: "chat", Message: msg})
	if err != nil {
		r.log.Printf("marshal chat message: %v", err)
		return
	}
	r.broadcast(data)
}

// SetSessionState broadcasts a live/paused flip to every connected client.
func (r *Room) SetSessionState(isLive, isPaused bool) {
	r.mu.Lock()
	r.isLive = isLive
	r.isPaused = isPaused
	r.mu.Unlock()

	r.broadcast(marshalSessionState(isLive, isPaused))
}

// Roster returns a snapshot of the participants ordered by user ID.
func (r *Room) Roster() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

func (r *Room) rosterLocked() []Participant {
	roster := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		roster = append(roster, *p)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].UserID < roster[j].UserID })
	return roster
}

func (r *Room) broadcast(data []byte) {
	r.mu.Lock()
	clients := make([]*client, 0, len(r.clients))
	for _, cl := range r.clients {
		clients = append(clients, cl)
	}
	r.mu.Unlock()

	for _, cl := range clients {
		cl.enqueue(data)
	}
}

func marshalRoster(roster []Participant) []byte {
	data, _ := json.Marshal(struct {
		Type         string        `json:"type"`
		Participants []Participant `json:"participants"`
	}{Type: "roster", Participants: roster})
	return data
}

func marshalSessionState(isLive, isPaused bool) []byte {
	data, _ := json.Marshal(struct {
		Type     string `json:"type"`
		IsLive   bool   `json:"isLive"`
		IsPaused bool   `json:"isPaused"`
	}{Type: "session_state", IsLive: isLive, IsPaused: isPaused})
	return data
}

// Hub owns the presence rooms, one per channel.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	log   *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{rooms: make(map[string]*Room), log: logger}
}

// Room returns the presence room for a channel, creating it on first use.
func (h *Hub) Room(channel string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[channel]
	if !ok {
		room = &Room{
			channel:      channel,
			log:          h.log,
			clients:      make(map[uint]*client),
			participants: make(map[uint]*Participant),
		}
		h.rooms[channel] = room
	}
	return room
}

// CloseRoom purges a channel when its session stops: every client is told
// the session ended and disconnected, the roster is cleared, and the chat
// log is returned for archival.
func (h *Hub) CloseRoom(channel string) []ChatMessage {
	h.mu.Lock()
	room, ok := h.rooms[channel]
	delete(h.rooms, channel)
	h.mu.Unlock()

	if !ok {
		return nil
	}

	ended := marshalSessionState(false, false)
	room.mu.Lock()
	clients := make([]*client, 0, len(room.clients))
	for _, cl := range room.clients {
		clients = append(clients, cl)
	}
	room.clients = make(map[uint]*client)
	room.participants = make(map[uint]*Participant)
	chat := room.chat
	room.chat = nil
	room.isLive = false
	room.isPaused = false
	room.mu.Unlock()

	for _, cl := range clients {
		cl.enqueue(ended)
		cl.close()
	}
	return chat
}
