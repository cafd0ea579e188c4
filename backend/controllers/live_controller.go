package controllers

import (
	"encoding/json"
	"errors"

	"comunidade/backend/config"
	"comunidade/backend/live"
	"comunidade/backend/models"
	"comunidade/backend/services"
	"comunidade/backend/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LiveController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Coordinator *live.Coordinator
	Hub         *live.Hub
	Svc         *services.Gamification
}

func NewLiveController(db *gorm.DB, cfg *config.Config, coordinator *live.Coordinator, hub *live.Hub, svc *services.Gamification) *LiveController {
	return &LiveController{DB: db, Cfg: cfg, Coordinator: coordinator, Hub: hub, Svc: svc}
}

// GetSession returns the state of the singleton live session.
func (lc *LiveController) GetSession(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, lc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	session, err := lc.Coordinator.Current()
	if err != nil {
		return utils.InternalServerError(c, "Could not load session")
	}
	return utils.Success(c, fiber.StatusOK, session)
}

// StartSession starts the broadcast. Admin only.
func (lc *LiveController) StartSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, lc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var host models.User
	if err := lc.DB.First(&host, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	session, err := lc.Coordinator.Start(host)
	if err != nil {
		if errors.Is(err, live.ErrAlreadyLive) {
			return utils.Conflict(c, "A live session is already running")
		}
		return utils.InternalServerError(c, "Could not start session")
	}
	return utils.Created(c, session)
}

// PauseSession pauses the running broadcast. Admin only.
func (lc *LiveController) PauseSession(c *fiber.Ctx) error {
	return lc.setPaused(c, true)
}

// ResumeSession resumes a paused broadcast. Admin only.
func (lc *LiveController) ResumeSession(c *fiber.Ctx) error {
	return lc.setPaused(c, false)
}

func (lc *LiveController) setPaused(c *fiber.Ctx, paused bool) error {
	var err error
	if paused {
		err = lc.Coordinator.Pause()
	} else {
		err = lc.Coordinator.Resume()
	}
	if err != nil {
		if errors.Is(err, live.ErrNotLive) {
			return utils.Conflict(c, "No live session is running")
		}
		return utils.InternalServerError(c, "Could not update session")
	}

	session, err := lc.Coordinator.Current()
	if err != nil {
		return utils.InternalServerError(c, "Could not load session")
	}
	return utils.Success(c, fiber.StatusOK, session)
}

// StopSession ends the broadcast, disconnecting every viewer and archiving
// the chat. Admin only.
func (lc *LiveController) StopSession(c *fiber.Ctx) error {
	if err := lc.Coordinator.Stop(); err != nil {
		if errors.Is(err, live.ErrNotLive) {
			return utils.Conflict(c, "No live session is running")
		}
		return utils.InternalServerError(c, "Could not stop session")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Session stopped"})
}

// GetRTCToken mints a media transport credential for the running channel.
// Refused while no session is live.
func (lc *LiveController) GetRTCToken(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, lc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	session, err := lc.Coordinator.Current()
	if err != nil {
		return utils.InternalServerError(c, "Could not load session")
	}
	if !session.IsLive {
		return utils.Conflict(c, "No live session is running")
	}

	token, err := utils.GenerateRTCToken(userID, session.ChannelName, lc.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token":       token,
		"channelName": session.ChannelName,
		"uid":         userID,
	})
}

// inboundMessage is everything the client may send over the presence socket.
type inboundMessage struct {
	Type   string `json:"type"`
	Target uint   `json:"target"`
	Text   string `json:"text"`
}

// UpgradeGuard rejects plain HTTP requests on the websocket route and
// authenticates the upgrade before it happens.
func (lc *LiveController) UpgradeGuard(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID, err := utils.ExtractUserIDFromToken(c, lc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := lc.DB.First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	c.Locals("user", user)
	return c.Next()
}

// Presence is the websocket handler of the live room: it joins the roster,
// then serves hand-raise, mic moderation and chat until the socket closes.
func (lc *LiveController) Presence(conn *websocket.Conn) {
	user, ok := conn.Locals("user").(models.User)
	if !ok {
		conn.Close()
		return
	}
	channel := conn.Params("channel")

	session, err := lc.Coordinator.Current()
	if err != nil || !session.IsLive || session.ChannelName != channel {
		conn.Close()
		return
	}

	room := lc.Hub.Room(channel)
	room.Join(live.Participant{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
	}, conn)
	defer room.Leave(user.ID)

	lc.Svc.GrantAchievement(user.ID, "first_live_lesson_watched")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "raise_hand":
			room.RaiseHand(user.ID, true)
		case "lower_hand":
			room.RaiseHand(user.ID, false)
		case "grant_mic":
			if user.IsAdmin {
				room.SetMicEnabled(msg.Target, true)
			}
		case "revoke_mic":
			if user.IsAdmin {
				room.SetMicEnabled(msg.Target, false)
			}
		case "reset_hand":
			if user.IsAdmin {
				room.ResetHand(msg.Target)
			}
		case "chat":
			if msg.Text == "" {
				continue
			}
			room.AppendChat(live.ChatMessage{
				SenderID:   user.ID,
				SenderName: user.DisplayName,
				Text:       msg.Text,
			})
			lc.Svc.GrantAchievement(user.ID, "first_live_chat_message")
		case "leave":
			return
		}
	}
}
