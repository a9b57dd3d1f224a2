// internal/services/request_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldserve/fieldserve-backend/internal/forms"
	"github.com/fieldserve/fieldserve-backend/internal/models"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

// Actor identifies the authenticated user a service call runs as.
type Actor struct {
	UserID  uuid.UUID
	IsStaff bool
}

type RequestService struct {
	db *gorm.DB
}

func NewRequestService(db *gorm.DB) *RequestService {
	return &RequestService{db: db}
}

// ListRequests returns the requests visible to the actor: staff see
// everything, engineers only the requests they created.
func (s *RequestService) ListRequests(actor Actor, params utils.PaginationParams) ([]models.MaintenanceRequest, int64, error) {
	query := s.db.Model(&models.MaintenanceRequest{})

	if !actor.IsStaff {
		query = query.Where("maintenance_requests.created_by_id = ?", actor.UserID)
	}

	if params.Status != "" {
		query = query.Where("maintenance_requests.status = ?", params.Status)
	}

	if params.Search != "" {
		// Free text covers the facility, the location, the legacy
		// equipment text, and the structured equipment lines.
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.
			Joins("LEFT JOIN maintenance_request_equipments ON maintenance_request_equipments.request_id = maintenance_requests.id").
			Where("LOWER(maintenance_requests.facility_name) LIKE ? OR LOWER(maintenance_requests.location) LIKE ?"+
				" OR LOWER(maintenance_requests.equipment_list) LIKE ?"+
				" OR LOWER(maintenance_request_equipments.equipment_type) LIKE ?"+
				" OR LOWER(maintenance_request_equipments.model_name) LIKE ?",
				searchTerm, searchTerm, searchTerm, searchTerm, searchTerm)
	}

	// The equipment join can fan out, so count and page over distinct
	// request rows.
	var total int64
	if err := query.Session(&gorm.Session{}).Distinct("maintenance_requests.id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	allowedSortFields := map[string]bool{
		"created_at": true, "updated_at": true, "urgency": true,
		"status": true, "facility_name": true,
	}
	sortField := params.Sort
	if !allowedSortFields[sortField] {
		sortField = "created_at"
	}
	query = query.Distinct("maintenance_requests.*").
		Order("maintenance_requests." + sortField + " " + params.Order)
	query = utils.ApplyPagination(query, params)

	var requests []models.MaintenanceRequest
	if err := query.
		Preload("CreatedBy").
		Preload("EquipmentItems").
		Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch requests: %w", err)
	}

	return requests, total, nil
}

// GetRequest loads one request. Engineers may only read their own;
// staff may read any.
func (s *RequestService) GetRequest(actor Actor, id uuid.UUID) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	if err := s.db.
		Preload("CreatedBy").
		Preload("EquipmentItems").
		Preload("ServiceReports").
		First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("request not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.IsStaff && !request.OwnedBy(actor.UserID) {
		return nil, errors.New("unauthorized to view this request")
	}

	return &request, nil
}

func (s *RequestService) CreateRequest(actor Actor, form *forms.RequestForm) (*models.MaintenanceRequest, []utils.ValidationError, error) {
	if !actor.IsStaff {
		form.StripRestricted(models.RequestStatusOpen, models.BillingStatusBillable, nil)
	}

	if errs := form.Validate(); len(errs) > 0 {
		return nil, errs, nil
	}

	request := form.ToModel()
	request.CreatedByID = &actor.UserID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		return s.syncEquipment(tx, request.ID, form.Equipment)
	})
	if err != nil {
		return nil, nil, err
	}

	created, err := s.reload(request.ID)
	return created, nil, err
}

// UpdateRequest edits a request in place. Engineers may only edit
// their own, and their submissions cannot move the restricted fields:
// the stored status, billing status and estimated cost are re-applied
// over whatever the payload carried.
func (s *RequestService) UpdateRequest(actor Actor, id uuid.UUID, form *forms.RequestForm) (*models.MaintenanceRequest, []utils.ValidationError, error) {
	var request models.MaintenanceRequest
	if err := s.db.First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("request not found")
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.IsStaff && !request.OwnedBy(actor.UserID) {
		return nil, nil, errors.New("unauthorized to edit this request")
	}

	if !actor.IsStaff {
		form.StripRestricted(request.Status, request.BillingStatus, request.EstimatedCost)
	}

	if errs := form.Validate(); len(errs) > 0 {
		return nil, errs, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"customer_contact_date": form.CustomerContactDate,
			"availability_start":    form.AvailabilityStart,
			"availability_end":      form.AvailabilityEnd,
			"urgency":               form.Urgency,
			"contact_name":          form.ContactName,
			"contact_number":        form.ContactNumber,
			"contact_email":         form.ContactEmail,
			"facility_name":         form.FacilityName,
			"location":              form.Location,
			"donor":                 form.Donor,
			"equipment_list":        form.EquipmentList,
			"request_details":       form.RequestDetails,
			"status":                form.Status,
			"billing_status":        form.BillingStatus,
			"estimated_cost":        form.EstimatedCost,
		}
		if err := tx.Model(&request).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		return s.syncEquipment(tx, request.ID, form.Equipment)
	})
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.reload(request.ID)
	return updated, nil, err
}

func (s *RequestService) syncEquipment(tx *gorm.DB, requestID uuid.UUID, lines []forms.RequestEquipmentForm) error {
	for _, line := range lines {
		if line.Destroy {
			if line.ID != nil {
				if err := tx.Where("id = ? AND request_id = ?", *line.ID, requestID).
					Delete(&models.MaintenanceRequestEquipment{}).Error; err != nil {
					return fmt.Errorf("failed to delete equipment line: %w", err)
				}
			}
			continue
		}
		if line.ID != nil {
			updates := map[string]interface{}{
				"equipment_type": line.EquipmentType,
				"model_name":     line.ModelName,
			}
			if err := tx.Model(&models.MaintenanceRequestEquipment{}).
				Where("id = ? AND request_id = ?", *line.ID, requestID).
				Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update equipment line: %w", err)
			}
			continue
		}
		row := &models.MaintenanceRequestEquipment{
			RequestID:     requestID,
			EquipmentType: line.EquipmentType,
			ModelName:     line.ModelName,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create equipment line: %w", err)
		}
	}
	return nil
}

func (s *RequestService) reload(id uuid.UUID) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	if err := s.db.
		Preload("CreatedBy").
		Preload("EquipmentItems").
		First(&request, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload request: %w", err)
	}
	return &request, nil
}
