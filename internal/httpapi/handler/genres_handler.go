package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/service"
)

type GenreHandler struct {
	svc  service.GenreService
	auth service.AuthService
}

func NewGenreHandler(svc service.GenreService, auth service.AuthService) *GenreHandler {
	return &GenreHandler{svc: svc, auth: auth}
}

// RegisterRoutes: reads are open, writes are admin-only. Genres are
// identified by slug; there is no per-slug retrieve or patch.
func (h *GenreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", middleware.AuthRequired(h.auth), middleware.RequireAdmin(), h.Create)
	rg.DELETE("/:slug", middleware.AuthRequired(h.auth), middleware.RequireAdmin(), h.Delete)
}

// List returns genres with optional ?search= name filtering
// GET /api/v1/genres
func (h *GenreHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)
	resp, err := h.svc.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create adds a genre
// POST /api/v1/genres
func (h *GenreHandler) Create(c *gin.Context) {
	var req dto.CreateGenreDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSlug), errors.Is(err, service.ErrSlugTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "slug"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.GenreFromModel(*g))
}

// Delete removes a genre by slug
// DELETE /api/v1/genres/:slug
func (h *GenreHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		if errors.Is(err, service.ErrGenreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
