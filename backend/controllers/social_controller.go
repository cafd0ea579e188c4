package controllers

import (
	"strings"
	"time"

	"comunidade/backend/config"
	"comunidade/backend/models"
	"comunidade/backend/services"
	"comunidade/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SocialController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Events *services.Bus
}

func NewSocialController(db *gorm.DB, cfg *config.Config, events *services.Bus) *SocialController {
	return &SocialController{DB: db, Cfg: cfg, Events: events}
}

// FindUser looks a user up by exact display name (case insensitive).
func (sc *SocialController) FindUser(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	name := strings.TrimSpace(c.Query("displayName"))
	if name == "" {
		return utils.BadRequest(c, "displayName query parameter is required")
	}

	var user models.User
	err = sc.DB.Where("LOWER(display_name) = LOWER(?)", name).First(&user).Error
	if err != nil {
		return utils.NotFound(c, "User not found")
	}
	if user.ID == userID {
		return utils.BadRequest(c, "You cannot add yourself")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":          user.ID,
		"displayName": user.DisplayName,
		"photoUrl":    user.PhotoURL,
		"level":       user.Level,
		"title":       user.Title,
	})
}

// SendFriendRequest creates a pending request to another user.
func (sc *SocialController) SendFriendRequest(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	receiverID, err := c.ParamsInt("userId")
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}
	if uint(receiverID) == userID {
		return utils.BadRequest(c, "You cannot add yourself")
	}

	var receiver models.User
	if err := sc.DB.First(&receiver, receiverID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	var friends int64
	sc.DB.Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, receiver.ID).
		Count(&friends)
	if friends > 0 {
		return utils.Conflict(c, "You are already friends")
	}

	var sender models.User
	if err := sc.DB.First(&sender, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	request := models.FriendRequest{
		SenderID:       sender.ID,
		ReceiverID:     receiver.ID,
		SenderName:     sender.DisplayName,
		SenderPhotoURL: sender.PhotoURL,
	}
	result := sc.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&request)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not send friend request")
	}
	if result.RowsAffected == 0 {
		return utils.Conflict(c, "Friend request already sent")
	}

	return utils.Created(c, request)
}

// GetFriendRequests lists pending requests addressed to the caller.
func (sc *SocialController) GetFriendRequests(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var requests []models.FriendRequest
	err = sc.DB.Where("receiver_id = ?", userID).Order("created_at DESC").Find(&requests).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not load friend requests")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"requests": requests})
}

// AcceptFriendRequest turns a pending request into a friendship. Both
// friendship rows and the request removal commit in one transaction.
func (sc *SocialController) AcceptFriendRequest(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	requestID, err := c.ParamsInt("requestId")
	if err != nil {
		return utils.BadRequest(c, "Invalid request ID")
	}

	var request models.FriendRequest
	err = sc.DB.Where("id = ? AND receiver_id = ?", requestID, userID).First(&request).Error
	if err != nil {
		return utils.NotFound(c, "Friend request not found")
	}

	var sender, receiver models.User
	if err := sc.DB.First(&sender, request.SenderID).Error; err != nil {
		return utils.NotFound(c, "Sender no longer exists")
	}
	if err := sc.DB.First(&receiver, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	err = sc.DB.Transaction(func(tx *gorm.DB) error {
		rows := []models.Friendship{
			{
				UserID:         receiver.ID,
				FriendID:       sender.ID,
				FriendName:     sender.DisplayName,
				FriendPhotoURL: sender.PhotoURL,
			},
			{
				UserID:         sender.ID,
				FriendID:       receiver.ID,
				FriendName:     receiver.DisplayName,
				FriendPhotoURL: receiver.PhotoURL,
			},
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&request).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not accept friend request")
	}

	sc.Events.Publish(services.FriendAccepted{UserID: sender.ID, FriendID: receiver.ID})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Friend request accepted"})
}

// DeclineFriendRequest discards a pending request.
func (sc *SocialController) DeclineFriendRequest(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	requestID, err := c.ParamsInt("requestId")
	if err != nil {
		return utils.BadRequest(c, "Invalid request ID")
	}

	result := sc.DB.Unscoped().
		Where("id = ? AND receiver_id = ?", requestID, userID).
		Delete(&models.FriendRequest{})
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not decline friend request")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Friend request not found")
	}
	return utils.NoContent(c)
}

// GetFriends lists the caller's friends.
func (sc *SocialController) GetFriends(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var friendships []models.Friendship
	err = sc.DB.Where("user_id = ?", userID).Order("friend_name ASC").Find(&friendships).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not load friends")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"friends": friendships})
}

// RemoveFriend deletes the friendship in both directions.
func (sc *SocialController) RemoveFriend(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	friendID, err := c.ParamsInt("friendId")
	if err != nil {
		return utils.BadRequest(c, "Invalid friend ID")
	}

	err = sc.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Unscoped().
			Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
				userID, friendID, friendID, userID).
			Delete(&models.Friendship{}).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not remove friend")
	}
	return utils.NoContent(c)
}

type MessageInput struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// SendMessage stores a direct message to a friend.
func (sc *SocialController) SendMessage(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	friendID, err := c.ParamsInt("friendId")
	if err != nil {
		return utils.BadRequest(c, "Invalid friend ID")
	}

	var friends int64
	sc.DB.Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&friends)
	if friends == 0 {
		return utils.Forbidden(c, "You can only message friends")
	}

	var input MessageInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	message := models.DirectMessage{
		ChatID:   models.ChatID(userID, uint(friendID)),
		SenderID: userID,
		Text:     input.Text,
		SentAt:   time.Now().UTC(),
	}
	if err := sc.DB.Create(&message).Error; err != nil {
		return utils.InternalServerError(c, "Could not send message")
	}
	return utils.Created(c, message)
}

// GetMessages returns the conversation with a friend, oldest first.
func (sc *SocialController) GetMessages(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	friendID, err := c.ParamsInt("friendId")
	if err != nil {
		return utils.BadRequest(c, "Invalid friend ID")
	}

	var friends int64
	sc.DB.Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&friends)
	if friends == 0 {
		return utils.Forbidden(c, "You can only message friends")
	}

	var messages []models.DirectMessage
	err = sc.DB.Where("chat_id = ?", models.ChatID(userID, uint(friendID))).
		Order("sent_at ASC").
		Find(&messages).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not load messages")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"messages": messages})
}
