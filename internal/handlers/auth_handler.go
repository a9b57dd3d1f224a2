// internal/handlers/auth_handler.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/fieldserve-backend/internal/services"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	user, validationErrs, err := h.authService.Register(input)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to register user")
		return
	}
	if len(validationErrs) > 0 {
		utils.ValidationErrorResponse(c, validationErrs)
		return
	}

	utils.CreatedResponse(c, user)
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	tokens, err := h.authService.Login(input)
	if err != nil {
		if strings.Contains(err.Error(), "disabled") {
			utils.ForbiddenResponse(c, "Account is disabled")
			return
		}
		utils.UnauthorizedResponse(c, "Invalid credentials")
		return
	}

	utils.SuccessResponse(c, tokens)
}

// RefreshToken handles POST /v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "refresh_token is required", nil)
		return
	}

	tokens, err := h.authService.RefreshToken(input.RefreshToken)
	if err != nil {
		utils.UnauthorizedResponse(c, "Invalid refresh token")
		return
	}

	utils.SuccessResponse(c, tokens)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.GetProfile(actor.UserID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.InternalErrorResponse(c, "Failed to fetch profile")
		return
	}

	utils.SuccessResponse(c, user)
}
