package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockpilot/backend/internal/infrastructure/auth"
)

// AuthHandler issues session tokens for configured users
type AuthHandler struct {
	BaseHandler
	authenticator *auth.Authenticator
	jwtService    *auth.JWTService
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(authenticator *auth.Authenticator, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{authenticator: authenticator, jwtService: jwtService}
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and user info
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
}

// Login authenticates the user and issues a JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid login request")
		return
	}

	user, err := h.authenticator.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.Unauthorized(c, "Invalid username or password")
			return
		}
		h.HandleError(c, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.Username, user.Email, user.Role)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
	})
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
}
