package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/service"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the signup/token handshake routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.Signup)
	rg.POST("/token", h.Token)
}

// Signup registers a (username, email) pair and emails a confirmation code.
// Calling it again for the same pair rotates and resends the code.
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameReserved),
			errors.Is(err, service.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "username"})
		case errors.Is(err, service.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "username"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "email"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, dto.SignupResponse{
		Username: user.Username,
		Email:    user.Email,
	})
}

// Token exchanges a confirmation code for a signed bearer token.
// POST /api/v1/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Token(c.Request.Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "confirmation_code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
