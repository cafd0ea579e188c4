package controllers

import (
	"comunidade/backend/config"
	"comunidade/backend/services"
	"comunidade/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TutorController forwards questions to the external AI tutor service. The
// backend never holds the model credentials client-side; it relays and
// attributes the interaction to the authenticated user.
type TutorController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Gamification
}

func NewTutorController(db *gorm.DB, cfg *config.Config, svc *services.Gamification) *TutorController {
	return &TutorController{DB: db, Cfg: cfg, Svc: svc}
}

type TutorInput struct {
	LessonID uint   `json:"lessonId"`
	Question string `json:"question" validate:"required,max=4000"`
	Context  string `json:"context"`
}

// Ask godoc
// @Summary Ask the AI tutor a question about a lesson
// @Tags tutor
// @Accept json
// @Produce json
// @Param input body TutorInput true "Question"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tutor/ask [post]
func (tc *TutorController) Ask(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input TutorInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	if tc.Cfg.TutorServiceURL == "" {
		return utils.ServiceUnavailable(c, "Tutor service is not configured")
	}

	agent := fiber.Post(tc.Cfg.TutorServiceURL)
	agent.JSON(fiber.Map{
		"userId":   userID,
		"lessonId": input.LessonID,
		"question": input.Question,
		"context":  input.Context,
	})

	status, body, errs := agent.Bytes()
	if len(errs) > 0 || status >= fiber.StatusInternalServerError {
		return utils.ServiceUnavailable(c, "Tutor service is unavailable")
	}

	tc.Svc.GrantAchievement(userID, "first_ai_tutor_interaction")

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(status).Send(body)
}
