package handler

import (
	"log/slog"
	"net/http"

	"cinerate/internal/microservices/http-api/dto"
	"cinerate/internal/microservices/http-api/middleware"
	"cinerate/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratingService service.RatingService
	logger        *slog.Logger
}

func NewRatingHandler(ratingService service.RatingService, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		logger:        logger,
	}
}

// Submit stores a new rating
// POST /ratings
func (h *RatingHandler) Submit(c *gin.Context) {
	var req dto.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// A signed-in caller may only rate as themselves
	if id, ok := middleware.IdentityFromContext(c); ok && id.UserID != req.UserID {
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "Cannot submit a rating for another user", Field: "userId"})
		return
	}

	rating, err := h.ratingService.Submit(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SubmitRatingResponse{
		Message:  "Rating saved successfully",
		RatingID: rating.RatingID,
	})
}

// List returns every rating of one media item ordered by ratingId
// GET /ratings?mediaId=X
func (h *RatingHandler) List(c *gin.Context) {
	var q dto.ListRatingsQuery
	if err := c.ShouldBindQuery(&q); err != nil || q.MediaID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Media ID is required", Field: "mediaId"})
		return
	}

	ratings, err := h.ratingService.ListByMedia(c.Request.Context(), q.MediaID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.RatingList(ratings))
}
