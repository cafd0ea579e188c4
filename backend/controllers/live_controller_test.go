package controllers_test

import (
	"net/http"
	"testing"

	"comunidade/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveSessionLifecycleEndpoints(t *testing.T) {
	app, db := newTestApp(t)
	adminToken, admin := registerUser(t, app, db, "prof")
	makeAdmin(t, db, admin.ID)
	viewerToken, _ := registerUser(t, app, db, "aluno")

	// Idle by default.
	status, body := request(t, app, http.MethodGet, "/api/live/session", viewerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, data(t, body)["IsLive"])

	// Viewers cannot start a session.
	status, _ = request(t, app, http.MethodPost, "/api/admin/live/start", viewerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = request(t, app, http.MethodPost, "/api/admin/live/start", adminToken, nil)
	require.Equal(t, http.StatusCreated, status)
	channel := data(t, body)["ChannelName"].(string)
	assert.NotEmpty(t, channel)

	// Starting again is rejected while live.
	status, _ = request(t, app, http.MethodPost, "/api/admin/live/start", adminToken, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = request(t, app, http.MethodPost, "/api/admin/live/pause", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, data(t, body)["IsPaused"])

	status, body = request(t, app, http.MethodPost, "/api/admin/live/resume", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, data(t, body)["IsPaused"])

	status, _ = request(t, app, http.MethodPost, "/api/admin/live/stop", adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = request(t, app, http.MethodGet, "/api/live/session", viewerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, data(t, body)["IsLive"])

	// The finished broadcast was archived.
	var history models.SessionHistory
	require.NoError(t, db.Where("channel_name = ?", channel).First(&history).Error)
	assert.Equal(t, admin.ID, history.HostID)

	// Stopping when idle is rejected.
	status, _ = request(t, app, http.MethodPost, "/api/admin/live/stop", adminToken, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestRTCTokenRequiresLiveSession(t *testing.T) {
	app, db := newTestApp(t)
	adminToken, admin := registerUser(t, app, db, "prof")
	makeAdmin(t, db, admin.ID)
	viewerToken, viewer := registerUser(t, app, db, "aluno")

	status, _ := request(t, app, http.MethodPost, "/api/live/token", viewerToken, nil)
	assert.Equal(t, http.StatusConflict, status, "no credential while idle")

	status, body := request(t, app, http.MethodPost, "/api/admin/live/start", adminToken, nil)
	require.Equal(t, http.StatusCreated, status)
	channel := data(t, body)["ChannelName"].(string)

	status, body = request(t, app, http.MethodPost, "/api/live/token", viewerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, data(t, body)["token"])
	assert.Equal(t, channel, data(t, body)["channelName"])
	assert.EqualValues(t, viewer.ID, data(t, body)["uid"])
}
