// internal/services/report_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fieldserve/fieldserve-backend/internal/forms"
	"github.com/fieldserve/fieldserve-backend/internal/models"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

type ReportService struct {
	db      *gorm.DB
	storage *StorageService
}

func NewReportService(db *gorm.DB, storage *StorageService) *ReportService {
	return &ReportService{
		db:      db,
		storage: storage,
	}
}

// RequestOption is one entry in the maintenance-request selector.
type RequestOption struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

// ReportFormState is the initial state for the report form page:
// pre-filled values, the linkable open requests, and the three
// categorical option sets.
type ReportFormState struct {
	Initial                forms.ReportForm `json:"initial"`
	OpenRequests           []RequestOption  `json:"open_requests"`
	ServiceTypeChoices     []string         `json:"service_type_choices"`
	BillingCategoryChoices []string         `json:"billing_category_choices"`
	FinalStatusChoices     []string         `json:"final_status_choices"`
}

func (s *ReportService) ListReports(params utils.PaginationParams) ([]models.ServiceReport, int64, error) {
	query := s.db.Model(&models.ServiceReport{})

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.
			Joins("LEFT JOIN report_items ON report_items.report_id = service_reports.id").
			Joins("LEFT JOIN products ON products.id = report_items.product_id").
			Where("LOWER(service_reports.client_name) LIKE ? OR LOWER(service_reports.location) LIKE ? OR LOWER(products.name) LIKE ?",
				searchTerm, searchTerm, searchTerm)
	}

	if params.Status != "" {
		query = query.Where("service_reports.status = ?", params.Status)
	}

	// The item/product join can fan out, so both the count and the
	// page are taken over distinct report rows.
	var total int64
	if err := query.Session(&gorm.Session{}).Distinct("service_reports.id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	// Sort columns are qualified because the join shares names like
	// created_at with the item table.
	allowedSortFields := map[string]bool{
		"created_at": true, "updated_at": true, "service_date": true,
		"client_name": true, "status": true,
	}
	sortField := params.Sort
	if !allowedSortFields[sortField] {
		sortField = "created_at"
	}
	query = query.Distinct("service_reports.*").
		Order("service_reports." + sortField + " " + params.Order)
	query = utils.ApplyPagination(query, params)

	var reports []models.ServiceReport
	if err := query.
		Preload("Engineer").
		Preload("Items.Product").
		Preload("Images").
		Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reports: %w", err)
	}

	return reports, total, nil
}

// NewFormState assembles the initial report form. A request id
// pre-fills client, location, donor and issue description from the
// referenced maintenance request; an unknown id is ignored and the
// plain form is returned.
func (s *ReportService) NewFormState(requestID *uuid.UUID) (*ReportFormState, error) {
	state := &ReportFormState{
		ServiceTypeChoices:     models.ServiceTypeChoices,
		BillingCategoryChoices: models.BillingCategoryChoices,
		FinalStatusChoices:     models.FinalStatusChoices,
	}
	state.Initial.Status = models.ReportStatusDraft

	if requestID != nil {
		var req models.MaintenanceRequest
		if err := s.db.First(&req, "id = ?", *requestID).Error; err == nil {
			state.Initial.MaintenanceRequestID = &req.ID
			state.Initial.ClientName = req.FacilityName
			state.Initial.Location = models.LocationDisplay(req.Location)
			state.Initial.Donor = req.Donor
			state.Initial.IssueDescription = req.RequestDetails
		}
	}

	// Only open or in-flight requests can be linked from the form.
	var openRequests []models.MaintenanceRequest
	if err := s.db.
		Where("status NOT IN ?", []models.RequestStatus{models.RequestStatusCompleted, models.RequestStatusCancelled}).
		Order("created_at DESC").
		Find(&openRequests).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch open requests: %w", err)
	}

	for _, r := range openRequests {
		label := r.FacilityName
		if label == "" {
			label = "No Facility"
		}
		state.OpenRequests = append(state.OpenRequests, RequestOption{
			ID:    r.ID,
			Label: fmt.Sprintf("MR-%s | %s", r.ID.String()[:8], label),
		})
	}

	return state, nil
}

func (s *ReportService) GetReport(id uuid.UUID) (*models.ServiceReport, error) {
	var report models.ServiceReport
	if err := s.db.
		Preload("Engineer").
		Preload("MaintenanceRequest").
		Preload("Items.Product").
		Preload("Images").
		First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("report not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Photos are stored private, so direct object URLs are useless to
	// the client; serve time-limited links instead.
	if s.storage.UsesS3() {
		for i := range report.Images {
			if url, err := s.storage.GeneratePresignedURL(report.Images[i].Key, 15*time.Minute); err == nil {
				report.Images[i].URL = url
			}
		}
	}

	return &report, nil
}

// CreateReport runs the composite save: the parent row, the decoded
// signature, the line items and the uploaded images all commit
// together or not at all. Validation failures come back as field
// errors with nothing written.
func (s *ReportService) CreateReport(engineerID uuid.UUID, form *forms.ReportForm, images []*multipart.FileHeader) (*models.ServiceReport, []utils.ValidationError, error) {
	if errs := s.validateSubmission(form, images); len(errs) > 0 {
		return nil, errs, nil
	}

	sig, err := DecodeSignatureDataURL(form.ClientSignature)
	if err != nil {
		return nil, signatureError(err), nil
	}

	report := form.ToModel()
	report.EngineerID = engineerID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if sig != nil {
			result, err := s.storage.UploadSignature(sig)
			if err != nil {
				return fmt.Errorf("failed to store signature: %w", err)
			}
			report.ClientSignature = result.Key
		}

		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}

		if err := s.syncItems(tx, report.ID, form.Items); err != nil {
			return err
		}

		return s.attachImages(tx, report.ID, images)
	})
	if err != nil {
		return nil, nil, err
	}

	saved, err := s.GetReport(report.ID)
	return saved, nil, err
}

// UpdateReport applies an edit through the same validation and
// transaction path as creation. The engineer assignment is not
// touched; a new signature replaces the stored one only when the
// submission carries a fresh data URL.
func (s *ReportService) UpdateReport(id uuid.UUID, form *forms.ReportForm, images []*multipart.FileHeader) (*models.ServiceReport, []utils.ValidationError, error) {
	var report models.ServiceReport
	if err := s.db.First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("report not found")
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if errs := s.validateSubmission(form, images); len(errs) > 0 {
		return nil, errs, nil
	}

	sig, err := DecodeSignatureDataURL(form.ClientSignature)
	if err != nil {
		return nil, signatureError(err), nil
	}

	previousSignature := report.ClientSignature
	signatureReplaced := false

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"maintenance_request_id":     form.MaintenanceRequestID,
			"client_name":                form.ClientName,
			"project_reference":          form.ProjectReference,
			"location":                   form.Location,
			"donor":                      form.Donor,
			"service_date":               form.ServiceDate,
			"issue_description":          form.IssueDescription,
			"work_performed":             form.WorkPerformed,
			"parts_used":                 form.PartsUsed,
			"service_type":               models.LabelSet(form.ServiceType),
			"billing_category":           models.LabelSet(form.BillingCategory),
			"final_status":               models.LabelSet(form.FinalStatus),
			"status":                     form.Status,
			"follow_up_required":         form.FollowUpRequired,
			"client_representative_name": form.ClientRepresentativeName,
			"client_phone_number":        form.ClientPhoneNumber,
		}

		if sig != nil {
			result, err := s.storage.UploadSignature(sig)
			if err != nil {
				return fmt.Errorf("failed to store signature: %w", err)
			}
			updates["client_signature"] = result.Key
			signatureReplaced = previousSignature != "" && previousSignature != result.Key
		}

		if err := tx.Model(&report).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}

		if err := s.syncItems(tx, report.ID, form.Items); err != nil {
			return err
		}

		return s.attachImages(tx, report.ID, images)
	})
	if err != nil {
		return nil, nil, err
	}

	// The superseded signature object is orphaned once the new key is
	// committed; removal is best effort.
	if signatureReplaced {
		if err := s.storage.DeleteFile(previousSignature); err != nil {
			logrus.WithError(err).WithField("key", previousSignature).
				Warn("Failed to delete replaced signature")
		}
	}

	saved, err := s.GetReport(report.ID)
	return saved, nil, err
}

// validateSubmission runs the pure form validation plus the checks
// that need the database: the request link must exist and still be
// open, referenced products must exist, and uploads must be images.
// Everything is checked before a single row is written.
func (s *ReportService) validateSubmission(form *forms.ReportForm, images []*multipart.FileHeader) []utils.ValidationError {
	errs := form.Validate()

	if form.MaintenanceRequestID != nil {
		var req models.MaintenanceRequest
		if err := s.db.First(&req, "id = ?", *form.MaintenanceRequestID).Error; err != nil {
			errs = append(errs, utils.ValidationError{
				Field: "maintenance_request_id", Tag: "exists",
				Message: "maintenance request not found",
			})
		} else if req.Status == models.RequestStatusCompleted || req.Status == models.RequestStatusCancelled {
			errs = append(errs, utils.ValidationError{
				Field: "maintenance_request_id", Tag: "choice",
				Message: "maintenance request is closed and cannot be linked",
			})
		}
	}

	productIDs := make([]uuid.UUID, 0, len(form.Items))
	for _, item := range form.Items {
		if !item.Destroy && item.ProductID != uuid.Nil {
			productIDs = append(productIDs, item.ProductID)
		}
	}
	if len(productIDs) > 0 {
		var found []uuid.UUID
		if err := s.db.Model(&models.Product{}).Where("id IN ?", productIDs).Pluck("id", &found).Error; err == nil {
			known := make(map[uuid.UUID]bool, len(found))
			for _, id := range found {
				known[id] = true
			}
			for i, item := range form.Items {
				if !item.Destroy && item.ProductID != uuid.Nil && !known[item.ProductID] {
					errs = append(errs, utils.ValidationError{
						Field: fmt.Sprintf("items[%d].product_id", i), Tag: "exists",
						Message: "product not found",
					})
				}
			}
		}
	}

	for _, header := range images {
		file, err := header.Open()
		if err != nil {
			errs = append(errs, utils.ValidationError{
				Field: "images", Tag: "invalid",
				Message: fmt.Sprintf("could not read uploaded file %q", header.Filename),
			})
			continue
		}
		if err := s.storage.ValidateImage(file); err != nil {
			errs = append(errs, utils.ValidationError{
				Field: "images", Tag: "invalid",
				Message: fmt.Sprintf("%q is not a valid image", header.Filename),
			})
		}
		file.Close()
	}

	return errs
}

// syncItems applies the submitted line items against the parent.
// Deletions run first so a replacement line may reuse a freed
// (product, serial) pair within the same submission.
func (s *ReportService) syncItems(tx *gorm.DB, reportID uuid.UUID, items []forms.ReportItemForm) error {
	for _, item := range items {
		if item.Destroy && item.ID != nil {
			if err := tx.Where("id = ? AND report_id = ?", *item.ID, reportID).
				Delete(&models.ReportItem{}).Error; err != nil {
				return fmt.Errorf("failed to delete report item: %w", err)
			}
		}
	}

	for _, item := range items {
		if item.Destroy {
			continue
		}
		if item.ID != nil {
			updates := map[string]interface{}{
				"product_id":     item.ProductID,
				"serial_number":  item.SerialNumber,
				"equipment_note": item.EquipmentNote,
			}
			if err := tx.Model(&models.ReportItem{}).
				Where("id = ? AND report_id = ?", *item.ID, reportID).
				Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update report item: %w", err)
			}
			continue
		}
		row := &models.ReportItem{
			ReportID:      reportID,
			ProductID:     item.ProductID,
			SerialNumber:  item.SerialNumber,
			EquipmentNote: item.EquipmentNote,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create report item: %w", err)
		}
	}

	return nil
}

func (s *ReportService) attachImages(tx *gorm.DB, reportID uuid.UUID, images []*multipart.FileHeader) error {
	if len(images) == 0 {
		return nil
	}

	options := s.storage.GetDefaultUploadOptions("report_photos")
	for _, header := range images {
		file, err := header.Open()
		if err != nil {
			return fmt.Errorf("failed to open uploaded image: %w", err)
		}

		result, err := s.storage.UploadFile(file, header, options)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to store report image: %w", err)
		}

		row := &models.ReportImage{
			ReportID: reportID,
			Key:      result.Key,
			URL:      result.URL,
			Size:     result.Size,
			MimeType: result.MimeType,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create report image: %w", err)
		}
	}

	return nil
}

func signatureError(err error) []utils.ValidationError {
	return []utils.ValidationError{{
		Field: "client_signature", Tag: "invalid", Message: err.Error(),
	}}
}
