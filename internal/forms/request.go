// internal/forms/request.go
package forms

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldserve-backend/internal/models"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

// RequestForm carries one maintenance-request submission with its
// nested equipment lines. Status, BillingStatus and EstimatedCost are
// restricted fields: StripRestricted removes whatever a non-staff
// user submitted for them before the form reaches validation or save.
type RequestForm struct {
	CustomerContactDate *time.Time `json:"customer_contact_date" form:"customer_contact_date" time_format:"2006-01-02"`
	AvailabilityStart   *time.Time `json:"availability_start" form:"availability_start" time_format:"2006-01-02"`
	AvailabilityEnd     *time.Time `json:"availability_end" form:"availability_end" time_format:"2006-01-02"`
	Urgency             models.Urgency `json:"urgency" form:"urgency"`

	ContactName   string `json:"contact_name" form:"contact_name" validate:"max=255"`
	ContactNumber string `json:"contact_number" form:"contact_number" validate:"max=50"`
	ContactEmail  string `json:"contact_email" form:"contact_email" validate:"omitempty,email,max=255"`
	FacilityName  string `json:"facility_name" form:"facility_name" validate:"max=255"`
	Location      string `json:"location" form:"location"`
	Donor         string `json:"donor" form:"donor" validate:"max=255"`

	EquipmentList  string `json:"equipment_list" form:"equipment_list"`
	RequestDetails string `json:"request_details" form:"request_details"`

	Status        models.RequestStatus `json:"status" form:"status"`
	BillingStatus models.BillingStatus `json:"billing_status" form:"billing_status"`
	EstimatedCost *float64             `json:"estimated_cost" form:"estimated_cost"`

	Equipment []RequestEquipmentForm `json:"equipment" form:"-" validate:"dive"`
}

type RequestEquipmentForm struct {
	ID            *uuid.UUID `json:"id"`
	EquipmentType string     `json:"equipment_type" validate:"max=255"`
	ModelName     string     `json:"model_name" validate:"max=255"`
	Destroy       bool       `json:"destroy"`
}

// StripRestricted drops the privileged fields from the submission so
// that no value for them can be applied, regardless of payload
// tampering. Callers pass the stored values so an edit leaves them
// untouched; on create the zero values fall back to the defaults.
func (f *RequestForm) StripRestricted(status models.RequestStatus, billing models.BillingStatus, cost *float64) {
	f.Status = status
	f.BillingStatus = billing
	f.EstimatedCost = cost
}

func (f *RequestForm) Validate() []utils.ValidationError {
	var errs []utils.ValidationError

	if err := utils.ValidateStruct(f); err != nil {
		errs = append(errs, utils.GetValidationErrors(err)...)
	}

	if f.Urgency == "" {
		f.Urgency = models.UrgencyMedium
	}
	if !models.ValidUrgency(f.Urgency) {
		errs = append(errs, utils.ValidationError{
			Field: "urgency", Tag: "choice",
			Message: fmt.Sprintf("%q is not a valid urgency", f.Urgency),
		})
	}

	if f.Status == "" {
		f.Status = models.RequestStatusOpen
	}
	if !models.ValidRequestStatus(f.Status) {
		errs = append(errs, utils.ValidationError{
			Field: "status", Tag: "choice",
			Message: fmt.Sprintf("%q is not a valid request status", f.Status),
		})
	}

	if f.BillingStatus == "" {
		f.BillingStatus = models.BillingStatusBillable
	}
	if !models.ValidBillingStatus(f.BillingStatus) {
		errs = append(errs, utils.ValidationError{
			Field: "billing_status", Tag: "choice",
			Message: fmt.Sprintf("%q is not a valid billing status", f.BillingStatus),
		})
	}

	if f.Location != "" && !models.ValidLocation(f.Location) {
		errs = append(errs, utils.ValidationError{
			Field: "location", Tag: "choice",
			Message: fmt.Sprintf("%q is not a known district", f.Location),
		})
	}

	for i, eq := range f.Equipment {
		if eq.Destroy {
			continue
		}
		if eq.EquipmentType == "" {
			errs = append(errs, utils.ValidationError{
				Field: fmt.Sprintf("equipment[%d].equipment_type", i), Tag: "required",
				Message: "equipment type is required",
			})
		}
		if eq.ModelName == "" {
			errs = append(errs, utils.ValidationError{
				Field: fmt.Sprintf("equipment[%d].model_name", i), Tag: "required",
				Message: "model name is required",
			})
		}
	}

	return errs
}

func (f *RequestForm) ToModel() *models.MaintenanceRequest {
	return &models.MaintenanceRequest{
		CustomerContactDate: f.CustomerContactDate,
		AvailabilityStart:   f.AvailabilityStart,
		AvailabilityEnd:     f.AvailabilityEnd,
		Urgency:             f.Urgency,
		ContactName:         f.ContactName,
		ContactNumber:       f.ContactNumber,
		ContactEmail:        f.ContactEmail,
		FacilityName:        f.FacilityName,
		Location:            f.Location,
		Donor:               f.Donor,
		EquipmentList:       f.EquipmentList,
		RequestDetails:      f.RequestDetails,
		Status:              f.Status,
		BillingStatus:       f.BillingStatus,
		EstimatedCost:       f.EstimatedCost,
	}
}
