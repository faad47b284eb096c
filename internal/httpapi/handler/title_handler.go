package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/httpapi/service"
)

type TitleHandler struct {
	svc  service.TitleService
	auth service.AuthService
}

func NewTitleHandler(svc service.TitleService, auth service.AuthService) *TitleHandler {
	return &TitleHandler{svc: svc, auth: auth}
}

// RegisterRoutes: open reads with filtering, admin-only writes. The param
// is named title_id so the nested review/comment groups can share the tree.
func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:title_id", h.Get)
	rg.POST("", middleware.AuthRequired(h.auth), middleware.RequireAdmin(), h.Create)
	rg.PATCH("/:title_id", middleware.AuthRequired(h.auth), middleware.RequireAdmin(), h.Patch)
	rg.DELETE("/:title_id", middleware.AuthRequired(h.auth), middleware.RequireAdmin(), h.Delete)
}

// List returns titles filtered by ?genre= ?category= ?year= ?name=
// GET /api/v1/titles
func (h *TitleHandler) List(c *gin.Context) {
	filter := repository.TitleFilter{
		Genre:    c.Query("genre"),
		Category: c.Query("category"),
		Name:     c.Query("name"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year filter"})
			return
		}
		filter.Year = &year
	}

	page, pageSize := parsePagination(c)
	resp, err := h.svc.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns one title
// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := titleID(c)
	if !ok {
		return
	}

	title, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTitleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, title)
}

// Create adds a title; genres/category are resolved by slug
// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.writeTitleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, title)
}

// Patch partially updates a title
// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Patch(c *gin.Context) {
	id, ok := titleID(c)
	if !ok {
		return
	}

	var req dto.UpdateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeTitleError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

// Delete removes a title and, by cascade, its reviews and their comments
// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := titleID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrTitleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *TitleHandler) writeTitleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrYearInFuture):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "year"})
	case errors.Is(err, service.ErrEmptyGenre), errors.Is(err, service.ErrUnknownGenre):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "genre"})
	case errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "category"})
	case errors.Is(err, service.ErrTitleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func titleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return 0, false
	}
	return id, true
}
