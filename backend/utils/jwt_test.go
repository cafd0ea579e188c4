package utils

import (
	"testing"

	"comunidade/backend/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "testsecret",
		RTCAppID:          "test-app",
		RTCAppCertificate: "test-certificate",
	}
}

func TestUserTokenRoundTrip(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateJWTToken(42, cfg)
	require.NoError(t, err)

	userID, err := ParseUserToken(token, cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestParseUserTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWTToken(42, &config.Config{JWTSecret: "other"})
	require.NoError(t, err)

	_, err = ParseUserToken(token, testConfig())
	assert.Error(t, err)

	_, err = ParseUserToken("garbage", testConfig())
	assert.Error(t, err)
}

func TestRTCTokenCarriesChannelClaims(t *testing.T) {
	cfg := testConfig()

	signed, err := GenerateRTCToken(7, "channel-1", cfg)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.RTCAppCertificate), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.EqualValues(t, 7, claims["user_id"])
	assert.Equal(t, "channel-1", claims["channel"])
	assert.Equal(t, "test-app", claims["app_id"])
	assert.NotNil(t, claims["exp"])
}
