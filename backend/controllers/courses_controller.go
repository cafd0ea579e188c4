package controllers

import (
	"strings"

	"comunidade/backend/config"
	"comunidade/backend/models"
	"comunidade/backend/services"
	"comunidade/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Gamification
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, svc *services.Gamification) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Svc: svc}
}

// GetContentHierarchy godoc
// @Summary Get full content hierarchy
// @Description Returns all themes with their courses and lessons
// @Tags courses
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/hierarchy [get]
func (cc *CoursesController) GetContentHierarchy(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, cc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var themes []models.Theme
	err := cc.DB.
		Preload("Courses.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC")
		}).
		Preload("Courses").
		Find(&themes).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not load content hierarchy")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"themes": themes})
}

// GetCourse returns a single course with its lessons and attachments.
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, cc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	err = cc.DB.
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC")
		}).
		Preload("Lessons.Attachments").
		First(&course, id).Error
	if err != nil {
		return utils.NotFound(c, "Course not found")
	}

	return utils.Success(c, fiber.StatusOK, course)
}

// SearchCourses godoc
// @Summary Search courses by title
// @Tags courses
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/search [get]
func (cc *CoursesController) SearchCourses(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return utils.BadRequest(c, "Missing search term")
	}

	var courses []models.Course
	err = cc.DB.
		Where("LOWER(title) LIKE ?", "%"+strings.ToLower(term)+"%").
		Find(&courses).Error
	if err != nil {
		return utils.InternalServerError(c, "Search failed")
	}

	cc.Svc.GrantAchievement(userID, "first_course_search")

	return utils.Success(c, fiber.StatusOK, fiber.Map{"courses": courses})
}

// CompleteLesson godoc
// @Summary Mark a lesson as completed
// @Description Awards lesson XP exactly once and the course badge when the course is finished
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/complete [post]
func (cc *CoursesController) CompleteLesson(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	lessonID, err := c.ParamsInt("lessonId")
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := cc.DB.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
		return utils.NotFound(c, "Lesson not found")
	}

	xpGranted := cc.Svc.CompleteLesson(userID, uint(lessonID))
	if xpGranted {
		// Course completion is re-derived on every grant rather than cached.
		cc.Svc.AwardCourseBadge(userID, uint(courseID))
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"xpGranted": xpGranted,
		"xp":        user.XP,
		"level":     user.Level,
		"title":     user.Title,
	})
}

// GetTranscript serves a lesson transcript for download.
func (cc *CoursesController) GetTranscript(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	lessonID, err := c.ParamsInt("lessonId")
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := cc.DB.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
		return utils.NotFound(c, "Lesson not found")
	}

	cc.Svc.GrantAchievement(userID, "first_transcript_download")

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"lessonId":   lesson.ID,
		"title":      lesson.Title,
		"transcript": lesson.Transcript,
	})
}

// --- Admin content management ---

type ThemeInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (cc *CoursesController) CreateTheme(c *fiber.Ctx) error {
	var input ThemeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	theme := models.Theme{Title: input.Title, Description: input.Description}
	if err := cc.DB.Create(&theme).Error; err != nil {
		return utils.InternalServerError(c, "Could not create theme")
	}
	return utils.Created(c, theme)
}

type CourseInput struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	CoverImageURL string `json:"coverImageUrl"`

	BadgeID          string `json:"badgeId"`
	BadgeName        string `json:"badgeName"`
	BadgeDescription string `json:"badgeDescription"`
	BadgeImageURL    string `json:"badgeImageUrl"`
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	themeID, err := c.ParamsInt("themeId")
	if err != nil {
		return utils.BadRequest(c, "Invalid theme ID")
	}

	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	var theme models.Theme
	if err := cc.DB.First(&theme, themeID).Error; err != nil {
		return utils.NotFound(c, "Theme not found")
	}

	course := models.Course{
		ThemeID:          uint(themeID),
		Title:            input.Title,
		Description:      input.Description,
		CoverImageURL:    input.CoverImageURL,
		BadgeID:          input.BadgeID,
		BadgeName:        input.BadgeName,
		BadgeDescription: input.BadgeDescription,
		BadgeImageURL:    input.BadgeImageURL,
	}
	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}
	return utils.Created(c, course)
}

type LessonInput struct {
	Title         string `json:"title" validate:"required"`
	VideoURL      string `json:"videoUrl"`
	Transcript    string `json:"transcript"`
	SequenceOrder int    `json:"sequenceOrder"`
}

func (cc *CoursesController) CreateLesson(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input LessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	lesson := models.Lesson{
		CourseID:      uint(courseID),
		Title:         input.Title,
		VideoURL:      input.VideoURL,
		Transcript:    input.Transcript,
		SequenceOrder: input.SequenceOrder,
	}
	if err := cc.DB.Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}
	return utils.Created(c, lesson)
}

type AttachmentInput struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required"`
}

// UpdateLessonAttachments replaces the attachment list of a lesson.
func (cc *CoursesController) UpdateLessonAttachments(c *fiber.Ctx) error {
	lessonID, err := c.ParamsInt("lessonId")
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var input struct {
		Attachments []AttachmentInput `json:"attachments" validate:"dive"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var lesson models.Lesson
	if err := cc.DB.First(&lesson, lessonID).Error; err != nil {
		return utils.NotFound(c, "Lesson not found")
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", lesson.ID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		for _, a := range input.Attachments {
			att := models.Attachment{LessonID: lesson.ID, Name: a.Name, URL: a.URL}
			if err := tx.Create(&att).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not update attachments")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Attachments updated"})
}

// UpdateCourseFeatured toggles the featured flag of a course.
func (cc *CoursesController) UpdateCourseFeatured(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		IsFeatured bool `json:"isFeatured"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	if err := cc.DB.Model(&course).Update("is_featured", input.IsFeatured).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Course updated"})
}
