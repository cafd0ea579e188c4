package controllers

import (
	"comunidade/backend/config"
	"comunidade/backend/models"
	"comunidade/backend/services"
	"comunidade/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Gamification
}

func NewUserController(db *gorm.DB, cfg *config.Config, svc *services.Gamification) *UserController {
	return &UserController{DB: db, Cfg: cfg, Svc: svc}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile with derived fields
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	return utils.Success(c, fiber.StatusOK, uc.profileView(user))
}

// GetUserByID returns the public profile of another user.
func (uc *UserController) GetUserByID(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, uc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":          user.ID,
		"displayName": user.DisplayName,
		"photoURL":    user.PhotoURL,
		"level":       user.Level,
		"title":       user.Title,
		"badges":      uc.Svc.EffectiveBadges(user),
	})
}

type UpdateProfileInput struct {
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates display name, photo or password of the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateProfileInput true "Profile update data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.DisplayName != "" {
		user.DisplayName = input.DisplayName
	}
	if input.PhotoURL != "" {
		user.PhotoURL = input.PhotoURL
	}

	if input.NewPassword != "" {
		if input.OldPassword == "" {
			return utils.BadRequest(c, "Old password is required to set new password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.Unauthorized(c, "Invalid old password")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Profile updated successfully",
	})
}

// profileView applies the profile defaults and derived fields in one place:
// level and title are recomputed from XP, badges go through the read-time
// projection, and the completion sets are loaded as plain ID lists.
func (uc *UserController) profileView(user models.User) fiber.Map {
	level := services.LevelForXP(user.XP)
	title := services.TitleForLevel(level)

	var lessonIDs []uint
	uc.DB.Model(&models.LessonCompletion{}).
		Where("user_id = ?", user.ID).
		Pluck("lesson_id", &lessonIDs)

	var courseIDs []uint
	uc.DB.Model(&models.CourseCompletion{}).
		Where("user_id = ?", user.ID).
		Pluck("course_id", &courseIDs)

	return fiber.Map{
		"id":               user.ID,
		"username":         user.Username,
		"email":            user.Email,
		"displayName":      user.DisplayName,
		"photoURL":         user.PhotoURL,
		"xp":               user.XP,
		"level":            level,
		"title":            title,
		"isAdmin":          user.IsAdmin,
		"badges":           uc.Svc.EffectiveBadges(user),
		"completedLessons": lessonIDs,
		"completedCourses": courseIDs,
		"created_at":       user.CreatedAt,
	}
}
