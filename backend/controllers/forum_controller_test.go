package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"comunidade/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForumPostLifecycle(t *testing.T) {
	app, db := newTestApp(t)
	token, user := registerUser(t, app, db, "ana")

	status, body := request(t, app, http.MethodPost, "/api/forum/posts", token, fiber.Map{
		"title":   "Dúvida sobre silogismos",
		"content": "Alguém pode explicar a segunda figura?",
	})
	require.Equal(t, http.StatusCreated, status)
	postID := uint(data(t, body)["ID"].(float64))

	// The first post granted its achievement.
	var badges int64
	db.Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", user.ID, "first_forum_post").
		Count(&badges)
	assert.EqualValues(t, 1, badges)

	status, body = request(t, app, http.MethodGet, "/api/forum/posts", token, nil)
	require.Equal(t, http.StatusOK, status)
	posts := data(t, body)["posts"].([]interface{})
	require.Len(t, posts, 1)

	status, _ = request(t, app, http.MethodGet, fmt.Sprintf("/api/forum/posts/%d", postID), token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = request(t, app, http.MethodGet, "/api/forum/posts/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestForumPostsNewestFirst(t *testing.T) {
	app, db := newTestApp(t)
	token, user := registerUser(t, app, db, "bia")

	// Created directly so the timestamps are distinct and controlled.
	older := models.ForumPost{AuthorID: user.ID, AuthorName: "bia", Title: "Primeiro", Content: "x"}
	require.NoError(t, db.Create(&older).Error)
	newer := models.ForumPost{AuthorID: user.ID, AuthorName: "bia", Title: "Segundo", Content: "x"}
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Model(&newer).Update("created_at", older.CreatedAt.Add(time.Second)).Error)

	status, body := request(t, app, http.MethodGet, "/api/forum/posts", token, nil)
	require.Equal(t, http.StatusOK, status)

	posts := data(t, body)["posts"].([]interface{})
	require.Len(t, posts, 2)
	first := posts[0].(map[string]interface{})
	assert.Equal(t, "Segundo", first["Title"])
}

func TestForumCommentsAndCount(t *testing.T) {
	app, db := newTestApp(t)
	token, _ := registerUser(t, app, db, "carla")

	status, body := request(t, app, http.MethodPost, "/api/forum/posts", token, fiber.Map{
		"title":   "Tópico",
		"content": "Conteúdo",
	})
	require.Equal(t, http.StatusCreated, status)
	postID := uint(data(t, body)["ID"].(float64))

	status, body = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/forum/posts/%d/comments", postID), token, fiber.Map{
			"content": "Primeiro comentário",
		})
	require.Equal(t, http.StatusCreated, status)
	commentID := uint(data(t, body)["ID"].(float64))

	// A reply referencing the first comment.
	status, _ = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/forum/posts/%d/comments", postID), token, fiber.Map{
			"content":  "Concordo",
			"parentId": commentID,
		})
	require.Equal(t, http.StatusCreated, status)

	// A reply to a comment of another post is rejected.
	status, _ = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/forum/posts/%d/comments", postID), token, fiber.Map{
			"content":  "Órfão",
			"parentId": 9999,
		})
	assert.Equal(t, http.StatusNotFound, status)

	var post models.ForumPost
	require.NoError(t, db.First(&post, postID).Error)
	assert.Equal(t, 2, post.CommentCount)

	status, body = request(t, app, http.MethodGet,
		fmt.Sprintf("/api/forum/posts/%d/comments", postID), token, nil)
	require.Equal(t, http.StatusOK, status)
	comments := data(t, body)["comments"].([]interface{})
	require.Len(t, comments, 2)
	oldest := comments[0].(map[string]interface{})
	assert.Equal(t, "Primeiro comentário", oldest["Content"])
}

func TestCommentLikeToggleDerivesUpvotes(t *testing.T) {
	app, db := newTestApp(t)
	tokenA, _ := registerUser(t, app, db, "davi")
	tokenB, _ := registerUser(t, app, db, "elisa")

	status, body := request(t, app, http.MethodPost, "/api/forum/posts", tokenA, fiber.Map{
		"title":   "Tópico",
		"content": "Conteúdo",
	})
	require.Equal(t, http.StatusCreated, status)
	postID := uint(data(t, body)["ID"].(float64))

	status, body = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/forum/posts/%d/comments", postID), tokenA, fiber.Map{
			"content": "Comentário",
		})
	require.Equal(t, http.StatusCreated, status)
	commentID := uint(data(t, body)["ID"].(float64))

	likePath := fmt.Sprintf("/api/forum/comments/%d/like", commentID)

	status, body = request(t, app, http.MethodPost, likePath, tokenA, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, data(t, body)["liked"])
	assert.EqualValues(t, 1, data(t, body)["upvotes"])

	status, body = request(t, app, http.MethodPost, likePath, tokenB, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, data(t, body)["upvotes"])

	// Toggling off removes only the caller's like.
	status, body = request(t, app, http.MethodPost, likePath, tokenA, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, data(t, body)["liked"])
	assert.EqualValues(t, 1, data(t, body)["upvotes"])

	// The read side reports the same derived count.
	status, body = request(t, app, http.MethodGet,
		fmt.Sprintf("/api/forum/posts/%d/comments", postID), tokenA, nil)
	require.Equal(t, http.StatusOK, status)
	comments := data(t, body)["comments"].([]interface{})
	require.Len(t, comments, 1)
	assert.EqualValues(t, 1, comments[0].(map[string]interface{})["upvotes"])
}
