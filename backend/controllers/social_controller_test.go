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

func TestFindUserByDisplayName(t *testing.T) {
	app, db := newTestApp(t)
	token, _ := registerUser(t, app, db, "ana")
	registerUser(t, app, db, "bruno")

	status, body := request(t, app, http.MethodGet, "/api/social/users?displayName=Bruno", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bruno", data(t, body)["displayName"])

	status, _ = request(t, app, http.MethodGet, "/api/social/users?displayName=ninguem", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Searching yourself is rejected rather than offering a self-friendship.
	status, _ = request(t, app, http.MethodGet, "/api/social/users?displayName=ana", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFriendRequestFlow(t *testing.T) {
	app, db := newTestApp(t)
	tokenA, userA := registerUser(t, app, db, "carla")
	tokenB, userB := registerUser(t, app, db, "davi")

	status, _ := request(t, app, http.MethodPost,
		fmt.Sprintf("/api/social/requests/%d", userB.ID), tokenA, nil)
	require.Equal(t, http.StatusCreated, status)

	// Duplicate requests collapse into one.
	status, _ = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/social/requests/%d", userB.ID), tokenA, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body := request(t, app, http.MethodGet, "/api/social/requests", tokenB, nil)
	require.Equal(t, http.StatusOK, status)
	requests := data(t, body)["requests"].([]interface{})
	require.Len(t, requests, 1)
	requestID := uint(requests[0].(map[string]interface{})["ID"].(float64))

	// Only the receiver can accept.
	status, _ = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/social/requests/%d/accept", requestID), tokenA, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/social/requests/%d/accept", requestID), tokenB, nil)
	require.Equal(t, http.StatusOK, status)

	// Friendship exists in both directions, the request is gone.
	var rows int64
	db.Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userA.ID, userB.ID).Count(&rows)
	assert.EqualValues(t, 1, rows)
	db.Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userB.ID, userA.ID).Count(&rows)
	assert.EqualValues(t, 1, rows)
	db.Model(&models.FriendRequest{}).Count(&rows)
	assert.EqualValues(t, 0, rows)

	// Requesting an existing friend is refused.
	status, _ = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/social/requests/%d", userB.ID), tokenA, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestDeclineFriendRequest(t *testing.T) {
	app, db := newTestApp(t)
	tokenA, _ := registerUser(t, app, db, "elisa")
	tokenB, userB := registerUser(t, app, db, "fabio")

	status, _ := request(t, app, http.MethodPost,
		fmt.Sprintf("/api/social/requests/%d", userB.ID), tokenA, nil)
	require.Equal(t, http.StatusCreated, status)

	status, body := request(t, app, http.MethodGet, "/api/social/requests", tokenB, nil)
	require.Equal(t, http.StatusOK, status)
	requests := data(t, body)["requests"].([]interface{})
	require.Len(t, requests, 1)
	requestID := uint(requests[0].(map[string]interface{})["ID"].(float64))

	status, _ = request(t, app, http.MethodDelete,
		fmt.Sprintf("/api/social/requests/%d", requestID), tokenB, nil)
	require.Equal(t, http.StatusNoContent, status)

	var rows int64
	db.Model(&models.Friendship{}).Count(&rows)
	assert.EqualValues(t, 0, rows, "declining must not create a friendship")
}

func TestRemoveFriendBothDirections(t *testing.T) {
	app, db := newTestApp(t)
	tokenA, userA := registerUser(t, app, db, "gabi")
	_, userB := registerUser(t, app, db, "hugo")

	require.NoError(t, db.Create(&[]models.Friendship{
		{UserID: userA.ID, FriendID: userB.ID, FriendName: "hugo"},
		{UserID: userB.ID, FriendID: userA.ID, FriendName: "gabi"},
	}).Error)

	status, _ := request(t, app, http.MethodDelete,
		fmt.Sprintf("/api/social/friends/%d", userB.ID), tokenA, nil)
	require.Equal(t, http.StatusNoContent, status)

	var rows int64
	db.Model(&models.Friendship{}).Count(&rows)
	assert.EqualValues(t, 0, rows)
}

func TestDirectMessagesBetweenFriends(t *testing.T) {
	app, db := newTestApp(t)
	tokenA, userA := registerUser(t, app, db, "iris")
	tokenB, userB := registerUser(t, app, db, "joel")
	tokenC, _ := registerUser(t, app, db, "kaue")

	require.NoError(t, db.Create(&[]models.Friendship{
		{UserID: userA.ID, FriendID: userB.ID, FriendName: "joel"},
		{UserID: userB.ID, FriendID: userA.ID, FriendName: "iris"},
	}).Error)

	messagesPath := fmt.Sprintf("/api/social/friends/%d/messages", userB.ID)

	status, _ := request(t, app, http.MethodPost, messagesPath, tokenA, fiber.Map{"text": "oi!"})
	require.Equal(t, http.StatusCreated, status)

	status, _ = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/social/friends/%d/messages", userA.ID), tokenB,
		fiber.Map{"text": "oi, tudo bem?"})
	require.Equal(t, http.StatusCreated, status)

	// Both sides read the same conversation, oldest first.
	status, body := request(t, app, http.MethodGet, messagesPath, tokenA, nil)
	require.Equal(t, http.StatusOK, status)
	messages := data(t, body)["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "oi!", messages[0].(map[string]interface{})["Text"])

	status, body = request(t, app, http.MethodGet,
		fmt.Sprintf("/api/social/friends/%d/messages", userA.ID), tokenB, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, data(t, body)["messages"].([]interface{}), 2)

	// Non-friends can neither send nor read.
	status, _ = request(t, app, http.MethodPost, messagesPath, tokenC, fiber.Map{"text": "intruso"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = request(t, app, http.MethodGet, messagesPath, tokenC, nil)
	assert.Equal(t, http.StatusForbidden, status)
}
