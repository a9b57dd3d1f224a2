// internal/handlers/report_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldserve/fieldserve-backend/internal/forms"
	"github.com/fieldserve/fieldserve-backend/internal/services"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ListReports handles GET /v1/reports
func (h *ReportHandler) ListReports(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	reports, total, err := h.reportService.ListReports(params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch reports")
		return
	}

	result := utils.CreatePaginationResult(reports, total, params)
	utils.PaginatedResponse(c, result)
}

// NewReportForm handles GET /v1/reports/new. An optional request_id
// query parameter pre-fills the form from that maintenance request.
func (h *ReportHandler) NewReportForm(c *gin.Context) {
	var requestID *uuid.UUID
	if raw := c.Query("request_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			requestID = &id
		}
	}

	state, err := h.reportService.NewFormState(requestID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to prepare report form")
		return
	}

	utils.SuccessResponse(c, state)
}

// GetReport handles GET /v1/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	report, err := h.reportService.GetReport(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Report")
			return
		}
		utils.InternalErrorResponse(c, "Failed to fetch report")
		return
	}

	utils.SuccessResponse(c, report)
}

// CreateReport handles POST /v1/reports. The body is either JSON or a
// multipart form with the line items JSON-encoded in an "items" field
// and photos under "images".
func (h *ReportHandler) CreateReport(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	form, images, err := bindReportForm(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	report, validationErrs, err := h.reportService.CreateReport(actor.UserID, form, images)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to create report")
		return
	}
	if len(validationErrs) > 0 {
		utils.ValidationErrorResponse(c, validationErrs)
		return
	}

	utils.CreatedResponse(c, report)
}

// UpdateReport handles PUT /v1/reports/:id
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	form, images, err := bindReportForm(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	report, validationErrs, err := h.reportService.UpdateReport(id, form, images)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Report")
			return
		}
		utils.InternalErrorResponse(c, "Failed to update report")
		return
	}
	if len(validationErrs) > 0 {
		utils.ValidationErrorResponse(c, validationErrs)
		return
	}

	utils.SuccessResponse(c, report)
}

func bindReportForm(c *gin.Context) (*forms.ReportForm, []*multipart.FileHeader, error) {
	var form forms.ReportForm

	if c.ContentType() != "multipart/form-data" {
		if err := c.ShouldBindJSON(&form); err != nil {
			return nil, nil, err
		}
		return &form, nil, nil
	}

	if err := c.ShouldBind(&form); err != nil {
		return nil, nil, err
	}

	if raw := c.PostForm("maintenance_request_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("maintenance_request_id is not a valid id")
		}
		form.MaintenanceRequestID = &id
	}

	if raw := c.PostForm("items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form.Items); err != nil {
			return nil, nil, fmt.Errorf("items must be a JSON array")
		}
	}

	multipartForm, err := c.MultipartForm()
	if err != nil {
		return nil, nil, err
	}

	return &form, multipartForm.File["images"], nil
}
