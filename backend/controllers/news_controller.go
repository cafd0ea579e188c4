package controllers

import (
	"comunidade/backend/config"
	"comunidade/backend/models"
	"comunidade/backend/services"
	"comunidade/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NewsController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Gamification
}

func NewNewsController(db *gorm.DB, cfg *config.Config, svc *services.Gamification) *NewsController {
	return &NewsController{DB: db, Cfg: cfg, Svc: svc}
}

type articleView struct {
	models.NewsArticle
	Likes   int64  `json:"likes"`
	LikedBy []uint `json:"likedBy"`
}

func (nc *NewsController) articleView(article models.NewsArticle) articleView {
	var likedBy []uint
	nc.DB.Model(&models.NewsLike{}).
		Where("article_id = ?", article.ID).
		Pluck("user_id", &likedBy)
	return articleView{
		NewsArticle: article,
		Likes:       int64(len(likedBy)),
		LikedBy:     likedBy,
	}
}

// GetArticles godoc
// @Summary List news articles
// @Tags news
// @Produce json
// @Param sort query string false "Sort order: createdAt (default) or likes"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /news [get]
func (nc *NewsController) GetArticles(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, nc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var articles []models.NewsArticle
	if err := nc.DB.Order("created_at DESC").Find(&articles).Error; err != nil {
		return utils.InternalServerError(c, "Could not load articles")
	}

	views := make([]articleView, 0, len(articles))
	for _, article := range articles {
		views = append(views, nc.articleView(article))
	}

	if c.Query("sort") == "likes" {
		// Stable on creation time because the base query already orders by it.
		for i := 1; i < len(views); i++ {
			for j := i; j > 0 && views[j].Likes > views[j-1].Likes; j-- {
				views[j], views[j-1] = views[j-1], views[j]
			}
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"articles": views})
}

// GetArticle returns one article with its derived like data. Reading an
// article counts as the first-read achievement.
func (nc *NewsController) GetArticle(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid article ID")
	}

	var article models.NewsArticle
	if err := nc.DB.First(&article, id).Error; err != nil {
		return utils.NotFound(c, "Article not found")
	}

	nc.Svc.GrantAchievement(userID, "first_news_read")

	return utils.Success(c, fiber.StatusOK, nc.articleView(article))
}

// ToggleLike adds or removes the caller's like on an article.
func (nc *NewsController) ToggleLike(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid article ID")
	}

	var article models.NewsArticle
	if err := nc.DB.First(&article, id).Error; err != nil {
		return utils.NotFound(c, "Article not found")
	}

	var existing models.NewsLike
	err = nc.DB.Where("article_id = ? AND user_id = ?", article.ID, userID).First(&existing).Error
	liked := false
	if err == nil {
		if err := nc.DB.Unscoped().Delete(&existing).Error; err != nil {
			return utils.InternalServerError(c, "Could not remove like")
		}
	} else {
		like := models.NewsLike{ArticleID: article.ID, UserID: userID}
		if err := nc.DB.Create(&like).Error; err != nil {
			return utils.InternalServerError(c, "Could not register like")
		}
		liked = true
	}

	var likes int64
	nc.DB.Model(&models.NewsLike{}).Where("article_id = ?", article.ID).Count(&likes)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"liked": liked,
		"likes": likes,
	})
}

type ArticleInput struct {
	Title         string `json:"title" validate:"required,max=200"`
	Content       string `json:"content" validate:"required"`
	CoverImageURL string `json:"coverImageUrl"`
}

// CreateArticle creates an article. Admin only.
func (nc *NewsController) CreateArticle(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input ArticleInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	var user models.User
	if err := nc.DB.First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	article := models.NewsArticle{
		AuthorID:      user.ID,
		AuthorName:    user.DisplayName,
		Title:         input.Title,
		Content:       input.Content,
		CoverImageURL: input.CoverImageURL,
	}
	if err := nc.DB.Create(&article).Error; err != nil {
		return utils.InternalServerError(c, "Could not create article")
	}
	return utils.Created(c, article)
}

// UpdateArticle updates title, content or cover image. Admin only.
func (nc *NewsController) UpdateArticle(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid article ID")
	}

	var article models.NewsArticle
	if err := nc.DB.First(&article, id).Error; err != nil {
		return utils.NotFound(c, "Article not found")
	}

	var input ArticleInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	article.Title = input.Title
	article.Content = input.Content
	article.CoverImageURL = input.CoverImageURL
	if err := nc.DB.Save(&article).Error; err != nil {
		return utils.InternalServerError(c, "Could not update article")
	}
	return utils.Success(c, fiber.StatusOK, article)
}

// DeleteArticle removes an article and its likes. Admin only.
func (nc *NewsController) DeleteArticle(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid article ID")
	}

	var article models.NewsArticle
	if err := nc.DB.First(&article, id).Error; err != nil {
		return utils.NotFound(c, "Article not found")
	}

	err = nc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("article_id = ?", article.ID).
			Delete(&models.NewsLike{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&article).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete article")
	}
	return utils.NoContent(c)
}
