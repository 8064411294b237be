package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/prognoz-ai/prognoz-go/internal/auth"
	"github.com/prognoz-ai/prognoz-go/internal/middleware"
	"github.com/prognoz-ai/prognoz-go/internal/models"
)

// UserHandler serves registration, login and session management.
type UserHandler struct {
	store    *auth.FileStore
	sessions *auth.SessionStore
	authmw   *middleware.AuthMiddleware
	logger   *logrus.Logger
	jwtTTL   time.Duration
}

func NewUserHandler(store *auth.FileStore, sessions *auth.SessionStore, authmw *middleware.AuthMiddleware, jwtTTL time.Duration, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		store:    store,
		sessions: sessions,
		authmw:   authmw,
		logger:   logger,
		jwtTTL:   jwtTTL,
	}
}

type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	User  models.UserResponse `json:"user"`
	Token string              `json:"token"`
}

type UpdateTokensRequest struct {
	AvitoToken string `json:"avito_token"`
	HHToken    string `json:"hh_token"`
}

// Register creates a new dashboard user.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	user, err := h.store.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrEmptyUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.WithError(err).Error("User registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		}
		return
	}

	h.logger.WithField("username", user.Username).Info("User registered")
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login authenticates a user, starts a session and issues a JWT.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.store.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if _, err := h.sessions.Create(c.Request.Context(), user.Username); err != nil {
		h.logger.WithError(err).Error("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	token, err := h.authmw.GenerateToken(user.ID, user.Username, h.jwtTTL)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		User:  toUserResponse(user),
		Token: token,
	})
}

// Logout destroys the session and every provider token stored on it.
func (h *UserHandler) Logout(c *gin.Context) {
	username := c.GetString(middleware.ContextUsername)
	if err := h.sessions.Destroy(c.Request.Context(), username); err != nil {
		h.logger.WithError(err).Error("Failed to destroy session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile returns the authenticated user and which provider tokens the
// session holds. Token values themselves are never echoed back.
func (h *UserHandler) GetProfile(c *gin.Context) {
	username := c.GetString(middleware.ContextUsername)

	user, err := h.store.Get(username)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	providers := make([]string, 0, 2)
	if session, err := h.sessions.Get(c.Request.Context(), username); err == nil {
		for provider := range session.Tokens {
			providers = append(providers, provider)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":                toUserResponse(user),
		"configured_providers": providers,
	})
}

// UpdateTokens stores provider API tokens on the active session.
func (h *UserHandler) UpdateTokens(c *gin.Context) {
	var req UpdateTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	username := c.GetString(middleware.ContextUsername)
	session, err := h.sessions.SetTokens(c.Request.Context(), username, map[string]string{
		"avito": req.AvitoToken,
		"hh":    req.HHToken,
	})
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session, log in again"})
			return
		}
		h.logger.WithError(err).Error("Failed to update provider tokens")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tokens"})
		return
	}

	providers := make([]string, 0, len(session.Tokens))
	for provider := range session.Tokens {
		providers = append(providers, provider)
	}
	c.JSON(http.StatusOK, gin.H{"configured_providers": providers})
}

func toUserResponse(user *models.User) models.UserResponse {
	return models.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}
