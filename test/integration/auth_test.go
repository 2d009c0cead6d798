//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bananagame/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_RegisterAndLogin(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, userID := env.RegisterUser("player_one", "securepass123")
	assert.NotEmpty(t, token)
	assert.NotZero(t, userID)

	loginToken := env.LoginUser("player_one", "securepass123")
	assert.NotEmpty(t, loginToken)
}

func TestAuth_RegisterDuplicateUsername(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterUser("dupe_user", "securepass123")

	resp := env.POST("/auth/register", map[string]string{
		"username": "dupe_user",
		"password": "securepass123",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAuth_RegisterShortPassword(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.POST("/auth/register", map[string]string{
		"username": "short_pass",
		"password": "short",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuth_LoginWrongPassword(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterUser("wrong_pass", "securepass123")

	resp := env.POST("/auth/login", map[string]string{
		"username": "wrong_pass",
		"password": "not-the-password",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_LoginLockoutAfterFailures(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterUser("locked_out", "securepass123")

	for i := 0; i < 5; i++ {
		resp := env.POST("/auth/login", map[string]string{
			"username": "locked_out",
			"password": "wrong",
		}, "")
		resp.Body.Close()
	}

	resp := env.POST("/auth/login", map[string]string{
		"username": "locked_out",
		"password": "securepass123",
	}, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var body struct {
		Code string `json:"code"`
	}
	env.DecodeBody(resp, &body)
	assert.Equal(t, "ACCOUNT_LOCKED", body.Code)
}

func TestAuth_TokenCookieSet(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.POST("/auth/register", map[string]string{
		"username": "cookie_user",
		"password": "securepass123",
	}, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tokenCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	assert.NotEmpty(t, tokenCookie.Value)
	assert.True(t, tokenCookie.HttpOnly)
}

func TestAuth_ProtectedRoutesRequireToken(t *testing.T) {
	env := testutil.NewTestEnv(t)

	paths := []string{"/game/score", "/leaderboard", "/users/me/highscore", "/events/history"}
	for _, path := range paths {
		resp := env.GET(path)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "path %s", path)
	}
}

func TestAuth_GarbageTokenRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.AuthGET("/game/score", "not-a-jwt")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]json.RawMessage
	env.DecodeBody(resp, &body)
	assert.Contains(t, body, "code")
}
