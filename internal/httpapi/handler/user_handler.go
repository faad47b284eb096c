package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers user management routes. The whole group requires
// authentication; the literal username "me" addresses the caller's own
// profile, everything else is admin-only (checked per request, not per
// route, since the role lives in the token).
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", middleware.RequireAdmin(), h.List)
	rg.POST("", middleware.RequireAdmin(), h.Create)
	rg.GET("/:username", h.Get)
	rg.PATCH("/:username", h.Patch)
	rg.DELETE("/:username", h.Delete)
}

// List returns users with optional ?search= username filtering
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)
	resp, err := h.userService.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create makes a user record directly, role included
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken),
			errors.Is(err, service.ErrUsernameReserved),
			errors.Is(err, service.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "username"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "email"})
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "role"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.UserFromModel(user))
}

// Get returns a profile: the caller's own for "me", otherwise admin-only
// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	username := c.Param("username")

	user, ok := h.resolveTarget(c, username)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(user))
}

// Patch updates a profile. Self-updates may not change the role.
// PATCH /api/v1/users/:username
func (h *UserHandler) Patch(c *gin.Context) {
	username := c.Param("username")

	var req dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := h.resolveTarget(c, username)
	if !ok {
		return
	}

	allowRole := username != "me"
	updated, err := h.userService.Update(c.Request.Context(), user, req, allowRole)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "email"})
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "role"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(updated))
}

// Delete removes a user record (admin only; own profile cannot be deleted
// through the "me" alias)
// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	username := c.Param("username")
	if username == "me" {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "cannot delete own profile"})
		return
	}
	if !h.requireAdmin(c) {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), username); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// resolveTarget loads the user addressed by the path: the caller itself for
// "me", otherwise the named user after an admin check. Writes the error
// response itself and reports success through the bool.
func (h *UserHandler) resolveTarget(c *gin.Context, username string) (*models.User, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}

	if username == "me" {
		user, err := h.userService.GetByID(c.Request.Context(), actor.ID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return nil, false
		}
		return user, true
	}

	if !actor.Role.CanManageContent() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return nil, false
	}

	user, err := h.userService.GetByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return user, true
}

func (h *UserHandler) requireAdmin(c *gin.Context) bool {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return false
	}
	if !actor.Role.CanManageContent() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return false
	}
	return true
}
