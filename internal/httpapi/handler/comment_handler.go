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

type CommentHandler struct {
	commentService service.CommentService
	auth           service.AuthService
}

func NewCommentHandler(commentService service.CommentService, auth service.AuthService) *CommentHandler {
	return &CommentHandler{commentService: commentService, auth: auth}
}

// RegisterRoutes registers comment routes under
// /titles/:title_id/reviews/:review_id.
func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	comments := rg.Group("/:title_id/reviews/:review_id/comments")
	{
		comments.GET("", h.List)
		comments.GET("/:comment_id", h.Get)

		authed := comments.Group("", middleware.AuthRequired(h.auth))
		{
			authed.POST("", h.Create)
			authed.PATCH("/:comment_id", h.Patch)
			authed.DELETE("/:comment_id", h.Delete)
		}
	}
}

// List returns comments on a review, oldest first
// GET /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return
	}

	page, pageSize := parsePagination(c)
	resp, err := h.commentService.ListByReview(c.Request.Context(), tid, rid, page, pageSize)
	if err != nil {
		h.writeCommentError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns one comment after verifying the title/review/comment chain
// GET /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Get(c *gin.Context) {
	tid, rid, cid, ok := commentPath(c)
	if !ok {
		return
	}

	comment, err := h.commentService.Get(c.Request.Context(), tid, rid, cid)
	if err != nil {
		h.writeCommentError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Create adds the caller's comment to a review
// POST /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return
	}
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), actor, tid, rid, req.Text)
	if err != nil {
		h.writeCommentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Patch updates a comment (author, moderator or admin)
// PATCH /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Patch(c *gin.Context) {
	tid, rid, cid, ok := commentPath(c)
	if !ok {
		return
	}
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), actor, tid, rid, cid, req.Text)
	if err != nil {
		h.writeCommentError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete removes a comment (author, moderator or admin)
// DELETE /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	tid, rid, cid, ok := commentPath(c)
	if !ok {
		return
	}
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), actor, tid, rid, cid); err != nil {
		h.writeCommentError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *CommentHandler) writeCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTitleNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotResourceOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func commentPath(c *gin.Context) (titleID, reviewID, commentID int64, ok bool) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return 0, 0, 0, false
	}
	cid, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment ID"})
		return 0, 0, 0, false
	}
	return tid, rid, cid, true
}
