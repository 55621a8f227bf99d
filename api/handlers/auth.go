package handlers

import (
	"net/http"

	"github.com/fleetsight/compressor-telemetry/internal/auth"
	"github.com/fleetsight/compressor-telemetry/pkg/config"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users       []config.UserConfig
	authService *auth.Service
}

func NewAuthHandler(users []config.UserConfig, authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		users:       users,
		authService: authService,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	Username  string `json:"username"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := -1
	var user config.UserConfig
	for i, u := range h.users {
		if u.Username == req.Username {
			userID = i + 1
			user = u
			break
		}
	}

	if userID < 0 || !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.authService.GenerateToken(userID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	expiresIn := int(h.authService.TokenDuration().Seconds())

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		"auth_token",
		token,
		expiresIn,
		"/",
		"",
		true,
		true,
	)

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: expiresIn,
		Username:  user.Username,
	})
}
