// internal/handlers/request_handler.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/fieldserve-backend/internal/forms"
	"github.com/fieldserve/fieldserve-backend/internal/services"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

type RequestHandler struct {
	requestService *services.RequestService
}

func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// ListRequests handles GET /v1/requests. Engineers see only the
// requests they created; staff see everything.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	requests, total, err := h.requestService.ListRequests(actor, params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch requests")
		return
	}

	result := utils.CreatePaginationResult(requests, total, params)
	utils.PaginatedResponse(c, result)
}

// GetRequest handles GET /v1/requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.GetRequest(actor, id)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "not found"):
			utils.NotFoundResponse(c, "Request")
		case strings.Contains(err.Error(), "unauthorized"):
			utils.ForbiddenResponse(c, "You do not have access to this request")
		default:
			utils.InternalErrorResponse(c, "Failed to fetch request")
		}
		return
	}

	utils.SuccessResponse(c, request)
}

// CreateRequest handles POST /v1/requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var form forms.RequestForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	request, validationErrs, err := h.requestService.CreateRequest(actor, &form)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to create request")
		return
	}
	if len(validationErrs) > 0 {
		utils.ValidationErrorResponse(c, validationErrs)
		return
	}

	utils.CreatedResponse(c, request)
}

// UpdateRequest handles PUT /v1/requests/:id
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var form forms.RequestForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	request, validationErrs, err := h.requestService.UpdateRequest(actor, id, &form)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "not found"):
			utils.NotFoundResponse(c, "Request")
		case strings.Contains(err.Error(), "unauthorized"):
			utils.ForbiddenResponse(c, "You do not have access to this request")
		default:
			utils.InternalErrorResponse(c, "Failed to update request")
		}
		return
	}
	if len(validationErrs) > 0 {
		utils.ValidationErrorResponse(c, validationErrs)
		return
	}

	utils.SuccessResponse(c, request)
}
