package handler

import (
	"log/slog"
	"net/http"
	"time"

	"cinerate/internal/microservices/http-api/dto"
	"cinerate/internal/microservices/http-api/middleware"
	"cinerate/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
	tokenTTL    time.Duration
	logger      *slog.Logger
}

func NewAuthHandler(authService service.AuthService, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, tokenTTL: tokenTTL, logger: logger}
}

// Signup registers a new user
// POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SignupResponse{
		Message: "User created successfully",
		UserID:  user.UserID,
	})
}

// Signin verifies credentials and returns a session token
// POST /signin
func (h *AuthHandler) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	id, err := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	token, err := h.authService.IssueToken(*id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SigninResponse{
		Message:   "Login successful",
		Username:  id.Username,
		UserID:    id.UserID,
		Token:     token,
		ExpiresIn: int64(h.tokenTTL.Seconds()),
	})
}

// Authenticated reports whether the caller presented a valid token.
// Invalid tokens never get here; OptionalAuth rejects them.
// GET /api/authenticated
func (h *AuthHandler) Authenticated(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, dto.AuthenticatedResponse{Authenticated: false})
		return
	}
	c.JSON(http.StatusOK, dto.AuthenticatedResponse{
		Authenticated: true,
		UserID:        id.UserID,
		Username:      id.Username,
	})
}
