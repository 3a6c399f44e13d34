package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_pos/internal/auth"
)

// authHandler implements login and identity echo.
type authHandler struct {
	authenticator *auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authenticator *auth.Authenticator, jwtManager *auth.JWTManager, logger *zap.Logger) *authHandler {
	return &authHandler{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// handleLogin handles POST /auth/login.
func (h *authHandler) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request payload"})
		return
	}

	user, err := h.authenticator.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
			return
		}
		h.logger.Error("login failed", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "login failed"})
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"username": user.Username, "role": user.Role},
	})
}

// handleMe handles GET /me, echoing the caller's identity.
func (h *authHandler) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"username": c.GetString(ctxUsername),
		"role":     c.GetString(ctxRole),
	})
}
