package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockpilot/backend/internal/interfaces/http/dto"
)

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	t.Run("issues a token for valid credentials", func(t *testing.T) {
		w := srv.do(t, "POST", "/api/v1/auth/login", "", LoginRequest{
			Username: "edith",
			Password: testPassword,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp LoginResponse
		decodeData(t, w, &resp)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "edith", resp.Username)
		assert.Equal(t, "editor", resp.Role)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		w := srv.do(t, "POST", "/api/v1/auth/login", "", LoginRequest{
			Username: "edith",
			Password: "wrong",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, w))
	})

	t.Run("rejects an unknown user", func(t *testing.T) {
		w := srv.do(t, "POST", "/api/v1/auth/login", "", LoginRequest{
			Username: "nobody",
			Password: testPassword,
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a missing password", func(t *testing.T) {
		w := srv.do(t, "POST", "/api/v1/auth/login", "", map[string]string{
			"username": "edith",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, "GET", "/api/v1/transfers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, "GET", "/api/v1/transfers", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidToken, errorCode(t, w))

	w = srv.do(t, "GET", "/api/v1/transfers", srv.viewerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIssuedTokenGrantsAccess(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, "POST", "/api/v1/auth/login", "", LoginRequest{
		Username: "vic",
		Password: testPassword,
	})
	var resp LoginResponse
	decodeData(t, w, &resp)

	w = srv.do(t, "GET", "/api/v1/system/info", resp.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
