package controllers

import (
	"comunidade/backend/config"
	"comunidade/backend/models"
	"comunidade/backend/services"
	"comunidade/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ForumController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Gamification
}

func NewForumController(db *gorm.DB, cfg *config.Config, svc *services.Gamification) *ForumController {
	return &ForumController{DB: db, Cfg: cfg, Svc: svc}
}

type PostInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// CreatePost godoc
// @Summary Create a forum post
// @Tags forum
// @Accept json
// @Produce json
// @Param input body PostInput true "Post data"
// @Success 201 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /forum/posts [post]
func (fc *ForumController) CreatePost(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, fc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input PostInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	var user models.User
	if err := fc.DB.First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	post := models.ForumPost{
		AuthorID:   user.ID,
		AuthorName: user.DisplayName,
		Title:      input.Title,
		Content:    input.Content,
	}
	if err := fc.DB.Create(&post).Error; err != nil {
		return utils.InternalServerError(c, "Could not create post")
	}

	fc.Svc.GrantAchievement(userID, "first_forum_post")

	return utils.Created(c, post)
}

// GetPosts returns all posts, newest first.
func (fc *ForumController) GetPosts(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, fc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var posts []models.ForumPost
	if err := fc.DB.Order("created_at DESC").Find(&posts).Error; err != nil {
		return utils.InternalServerError(c, "Could not load posts")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"posts": posts})
}

// GetPost returns one post by ID.
func (fc *ForumController) GetPost(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, fc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	var post models.ForumPost
	if err := fc.DB.First(&post, id).Error; err != nil {
		return utils.NotFound(c, "Post not found")
	}
	return utils.Success(c, fiber.StatusOK, post)
}

// GetPostsByAuthor returns all posts of one author, newest first.
func (fc *ForumController) GetPostsByAuthor(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, fc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	authorID, err := c.ParamsInt("authorId")
	if err != nil {
		return utils.BadRequest(c, "Invalid author ID")
	}

	var posts []models.ForumPost
	err = fc.DB.Where("author_id = ?", authorID).Order("created_at DESC").Find(&posts).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not load posts")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"posts": posts})
}

type CommentInput struct {
	Content  string `json:"content" validate:"required"`
	ParentID *uint  `json:"parentId"`
}

// AddComment adds a comment (or a reply when parentId is set) to a post.
func (fc *ForumController) AddComment(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, fc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	postID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	var input CommentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	var post models.ForumPost
	if err := fc.DB.First(&post, postID).Error; err != nil {
		return utils.NotFound(c, "Post not found")
	}

	if input.ParentID != nil {
		var parent models.ForumComment
		err := fc.DB.Where("id = ? AND post_id = ?", *input.ParentID, post.ID).First(&parent).Error
		if err != nil {
			return utils.NotFound(c, "Parent comment not found")
		}
	}

	var user models.User
	if err := fc.DB.First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	comment := models.ForumComment{
		PostID:         post.ID,
		ParentID:       input.ParentID,
		AuthorID:       user.ID,
		AuthorName:     user.DisplayName,
		AuthorPhotoURL: user.PhotoURL,
		Content:        input.Content,
	}

	err = fc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&post).
			Update("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not add comment")
	}

	fc.Svc.GrantAchievement(userID, "first_forum_comment")

	return utils.Created(c, comment)
}

type commentView struct {
	models.ForumComment
	Upvotes int64  `json:"upvotes"`
	LikedBy []uint `json:"likedBy"`
}

// GetComments returns the comments of a post, oldest first. Upvotes are
// derived from the like rows at read time; the counter is never stored.
func (fc *ForumController) GetComments(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, fc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	postID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	var comments []models.ForumComment
	err = fc.DB.Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not load comments")
	}

	views := make([]commentView, 0, len(comments))
	for _, comment := range comments {
		var likedBy []uint
		fc.DB.Model(&models.CommentLike{}).
			Where("comment_id = ?", comment.ID).
			Pluck("user_id", &likedBy)
		views = append(views, commentView{
			ForumComment: comment,
			Upvotes:      int64(len(likedBy)),
			LikedBy:      likedBy,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"comments": views})
}

// ToggleCommentLike adds or removes the caller's like on a comment.
func (fc *ForumController) ToggleCommentLike(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, fc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	commentID, err := c.ParamsInt("commentId")
	if err != nil {
		return utils.BadRequest(c, "Invalid comment ID")
	}

	var comment models.ForumComment
	if err := fc.DB.First(&comment, commentID).Error; err != nil {
		return utils.NotFound(c, "Comment not found")
	}

	var existing models.CommentLike
	err = fc.DB.Where("comment_id = ? AND user_id = ?", comment.ID, userID).First(&existing).Error
	liked := false
	if err == nil {
		if err := fc.DB.Unscoped().Delete(&existing).Error; err != nil {
			return utils.InternalServerError(c, "Could not remove like")
		}
	} else {
		like := models.CommentLike{CommentID: comment.ID, UserID: userID}
		if err := fc.DB.Create(&like).Error; err != nil {
			return utils.InternalServerError(c, "Could not register like")
		}
		liked = true
		fc.Svc.GrantAchievement(userID, "first_comment_like")
	}

	var upvotes int64
	fc.DB.Model(&models.CommentLike{}).Where("comment_id = ?", comment.ID).Count(&upvotes)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"liked":   liked,
		"upvotes": upvotes,
	})
}
