package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/service"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	auth          service.AuthService
}

func NewReviewHandler(reviewService service.ReviewService, auth service.AuthService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, auth: auth}
}

// RegisterRoutes registers review routes under /titles/:title_id.
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reviews := rg.Group("/:title_id/reviews")
	{
		reviews.GET("", h.List)
		reviews.GET("/:review_id", h.Get)

		authed := reviews.Group("", middleware.AuthRequired(h.auth))
		{
			authed.POST("", h.Create)
			authed.PATCH("/:review_id", h.Patch)
			authed.DELETE("/:review_id", h.Delete)
		}
	}
}

// List returns all reviews on a title, newest first
// GET /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}

	page, pageSize := parsePagination(c)
	resp, err := h.reviewService.ListByTitle(c.Request.Context(), tid, page, pageSize)
	if err != nil {
		h.writeReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns a single review under its title
// GET /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Get(c *gin.Context) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return
	}

	review, err := h.reviewService.Get(c.Request.Context(), tid, rid)
	if err != nil {
		h.writeReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Create adds the caller's review; one per (author, title)
// POST /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), actor, tid, req)
	if err != nil {
		h.writeReviewError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// Patch updates a review (author, moderator or admin)
// PATCH /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Patch(c *gin.Context) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return
	}
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UpdateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), actor, tid, rid, req)
	if err != nil {
		h.writeReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Delete removes a review (author, moderator or admin)
// DELETE /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Delete(c *gin.Context) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return
	}
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), actor, tid, rid); err != nil {
		h.writeReviewError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *ReviewHandler) writeReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTitleNotFound), errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrReviewExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "title"})
	case errors.Is(err, service.ErrInvalidScore):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "score"})
	case errors.Is(err, service.ErrNotResourceOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func reviewPath(c *gin.Context) (titleID, reviewID int64, ok bool) {
	tid, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return 0, 0, false
	}
	rid, err := strconv.ParseInt(c.Param("review_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return 0, 0, false
	}
	return tid, rid, true
}
