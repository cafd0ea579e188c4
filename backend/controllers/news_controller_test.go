package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"comunidade/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsAdminCrud(t *testing.T) {
	app, db := newTestApp(t)
	adminToken, admin := registerUser(t, app, db, "editora")
	makeAdmin(t, db, admin.ID)
	readerToken, _ := registerUser(t, app, db, "leitor")

	// Non-admins cannot publish.
	status, _ := request(t, app, http.MethodPost, "/api/admin/news/", readerToken, fiber.Map{
		"title":   "Tentativa",
		"content": "x",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := request(t, app, http.MethodPost, "/api/admin/news/", adminToken, fiber.Map{
		"title":   "Nova trilha de lógica",
		"content": "A trilha de lógica chega na próxima semana.",
	})
	require.Equal(t, http.StatusCreated, status)
	articleID := uint(data(t, body)["ID"].(float64))

	status, _ = request(t, app, http.MethodPut,
		fmt.Sprintf("/api/admin/news/%d", articleID), adminToken, fiber.Map{
			"title":   "Trilha de lógica publicada",
			"content": "Já está no ar.",
		})
	require.Equal(t, http.StatusOK, status)

	status, body = request(t, app, http.MethodGet,
		fmt.Sprintf("/api/news/%d", articleID), readerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Trilha de lógica publicada", data(t, body)["Title"])

	status, _ = request(t, app, http.MethodDelete,
		fmt.Sprintf("/api/admin/news/%d", articleID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = request(t, app, http.MethodGet,
		fmt.Sprintf("/api/news/%d", articleID), readerToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNewsReadGrantsAchievement(t *testing.T) {
	app, db := newTestApp(t)
	token, user := registerUser(t, app, db, "marcos")

	article := models.NewsArticle{AuthorName: "Equipe", Title: "Boas-vindas", Content: "Olá!"}
	require.NoError(t, db.Create(&article).Error)

	status, _ := request(t, app, http.MethodGet,
		fmt.Sprintf("/api/news/%d", article.ID), token, nil)
	require.Equal(t, http.StatusOK, status)

	var badges int64
	db.Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", user.ID, "first_news_read").
		Count(&badges)
	assert.EqualValues(t, 1, badges)
}

func TestNewsLikeToggle(t *testing.T) {
	app, db := newTestApp(t)
	tokenA, userA := registerUser(t, app, db, "nina")
	tokenB, _ := registerUser(t, app, db, "otto")

	article := models.NewsArticle{AuthorName: "Equipe", Title: "Notícia", Content: "x"}
	require.NoError(t, db.Create(&article).Error)
	likePath := fmt.Sprintf("/api/news/%d/like", article.ID)

	status, body := request(t, app, http.MethodPost, likePath, tokenA, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, data(t, body)["liked"])
	assert.EqualValues(t, 1, data(t, body)["likes"])

	status, body = request(t, app, http.MethodPost, likePath, tokenB, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, data(t, body)["likes"])

	status, body = request(t, app, http.MethodPost, likePath, tokenA, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, data(t, body)["liked"])
	assert.EqualValues(t, 1, data(t, body)["likes"])

	// The article view carries the derived count and the likers.
	status, body = request(t, app, http.MethodGet,
		fmt.Sprintf("/api/news/%d", article.ID), tokenA, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, data(t, body)["likes"])
	likedBy := data(t, body)["likedBy"].([]interface{})
	require.Len(t, likedBy, 1)
	assert.NotEqualValues(t, userA.ID, likedBy[0])
}

func TestNewsSortByLikes(t *testing.T) {
	app, db := newTestApp(t)
	token, _ := registerUser(t, app, db, "paula")

	quiet := models.NewsArticle{AuthorName: "Equipe", Title: "Sem curtidas", Content: "x"}
	popular := models.NewsArticle{AuthorName: "Equipe", Title: "Popular", Content: "x"}
	require.NoError(t, db.Create(&quiet).Error)
	require.NoError(t, db.Create(&popular).Error)

	status, _ := request(t, app, http.MethodPost,
		fmt.Sprintf("/api/news/%d/like", popular.ID), token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := request(t, app, http.MethodGet, "/api/news/?sort=likes", token, nil)
	require.Equal(t, http.StatusOK, status)
	articles := data(t, body)["articles"].([]interface{})
	require.Len(t, articles, 2)
	assert.Equal(t, "Popular", articles[0].(map[string]interface{})["Title"])
}
