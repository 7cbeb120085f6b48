package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"cinerate/internal/microservices/http-api/dto"
	"cinerate/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService service.AdminService
	logger       *slog.Logger
}

func NewAdminHandler(adminService service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, logger: logger}
}

// RegisterRoutes registers admin routes on an already guarded group
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/users", h.ListUsers)
	router.GET("/users/:userId", h.GetUser)
	router.DELETE("/users/:userId", h.DeleteUser)
	router.DELETE("/ratings/:ratingId", h.DeleteRating)
}

// ListUsers returns every user without password hashes
// GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns a user with its ratings
// GET /admin/users/:userId
func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, ok := pathID(c, "userId", "Invalid userId format")
	if !ok {
		return
	}

	detail, err := h.adminService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserDetailResponse{
		User:    detail.User,
		Ratings: dto.RatingList(detail.Ratings),
	})
}

// DeleteUser removes a user and all of its ratings
// DELETE /admin/users/:userId
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, ok := pathID(c, "userId", "Invalid userId format")
	if !ok {
		return
	}

	result, err := h.adminService.DeleteUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeleteUserResponse{
		Message:             "User deleted successfully",
		DeletedUser:         result.DeletedUser,
		DeletedRatingsCount: result.DeletedRatingCount,
	})
}

// DeleteRating removes a single rating
// DELETE /admin/ratings/:ratingId
func (h *AdminHandler) DeleteRating(c *gin.Context) {
	ratingID, ok := pathID(c, "ratingId", "Invalid ratingId format")
	if !ok {
		return
	}

	rating, err := h.adminService.DeleteRating(c.Request.Context(), ratingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeleteRatingResponse{
		Message:       "Rating entry deleted successfully",
		DeletedRating: *rating,
	})
}

func pathID(c *gin.Context, param, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: message, Field: param})
		return 0, false
	}
	return id, true
}
