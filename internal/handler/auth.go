package handler

import (
	"net/http"
	"time"

	"success-mcp/internal/logger"
	"success-mcp/internal/middleware"
	"success-mcp/internal/model"
	"success-mcp/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth   *service.AuthService
	secret []byte
	ttl    time.Duration
}

func NewAuthHandler(auth *service.AuthService, secret []byte, ttl time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, secret: secret, ttl: ttl}
}

func (h *AuthHandler) Login(c *gin.Context) {
	if len(h.secret) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "login disabled: no jwt_secret configured"})
		return
	}
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	op, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logger.Warn("login.failed", "username", req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	token, exp, err := middleware.Sign(h.secret, op.Username, op.Name, h.ttl)
	if err != nil {
		logger.Error("login.sign", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	logger.Info("login.ok", "username", op.Username)
	c.JSON(http.StatusOK, model.LoginResponse{Token: token, Name: op.Name, ExpiresAt: exp.Unix()})
}
