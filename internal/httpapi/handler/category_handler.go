package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/service"
)

type CategoryHandler struct {
	svc  service.CategoryService
	auth service.AuthService
}

func NewCategoryHandler(svc service.CategoryService, auth service.AuthService) *CategoryHandler {
	return &CategoryHandler{svc: svc, auth: auth}
}

// RegisterRoutes: same shape as genres, open reads and admin-only writes,
// keyed by slug.
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", middleware.AuthRequired(h.auth), middleware.RequireAdmin(), h.Create)
	rg.DELETE("/:slug", middleware.AuthRequired(h.auth), middleware.RequireAdmin(), h.Delete)
}

// List returns categories with optional ?search= name filtering
// GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)
	resp, err := h.svc.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create adds a category
// POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSlug), errors.Is(err, service.ErrSlugTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "slug"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.CategoryFromModel(*cat))
}

// Delete removes a category by slug; its titles stay, category unset
// DELETE /api/v1/categories/:slug
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
