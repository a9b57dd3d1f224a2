// internal/forms/report.go
package forms

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldserve-backend/internal/models"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

// ReportForm carries one service-report submission: the parent fields,
// the nested line items, and the hidden signature data URL. It binds
// from a JSON body or from a multipart form (the scalar fields via
// form tags, the checkbox sets as repeated values).
type ReportForm struct {
	// Bound by hand on multipart submissions; gin's form mapper does
	// not handle UUID fields.
	MaintenanceRequestID *uuid.UUID `json:"maintenance_request_id" form:"-"`
	ClientName           string     `json:"client_name" form:"client_name" validate:"max=200"`
	ProjectReference     string     `json:"project_reference" form:"project_reference" validate:"max=100"`
	Location             string     `json:"location" form:"location" validate:"max=200"`
	Donor                string     `json:"donor" form:"donor" validate:"max=200"`
	ServiceDate          *time.Time `json:"service_date" form:"service_date" time_format:"2006-01-02T15:04"`

	IssueDescription string `json:"issue_description" form:"issue_description"`
	WorkPerformed    string `json:"work_performed" form:"work_performed"`
	PartsUsed        string `json:"parts_used" form:"parts_used"`

	ServiceType     []string `json:"service_type" form:"service_type"`
	BillingCategory []string `json:"billing_category" form:"billing_category"`
	FinalStatus     []string `json:"final_status" form:"final_status"`

	Status           models.ReportStatus `json:"status" form:"status"`
	FollowUpRequired bool                `json:"follow_up_required" form:"follow_up_required"`

	ClientRepresentativeName string `json:"client_representative_name" form:"client_representative_name" validate:"max=200"`
	ClientPhoneNumber        string `json:"client_phone_number" form:"client_phone_number" validate:"max=20"`

	// Data-URL string from the signature pad, decoded on save.
	ClientSignature string `json:"client_signature" form:"client_signature"`

	Items []ReportItemForm `json:"items" form:"-" validate:"dive"`
}

// ReportItemForm is one equipment line. An ID addresses an existing
// row; Destroy marks it for deletion.
type ReportItemForm struct {
	ID            *uuid.UUID `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	SerialNumber  string     `json:"serial_number" validate:"max=255"`
	EquipmentNote string     `json:"equipment_note"`
	Destroy       bool       `json:"destroy"`
}

// Fields that become mandatory once a report is marked Completed.
var completedRequiredMessage = "This field is required when marking as Completed."

func (f *ReportForm) Validate() []utils.ValidationError {
	var errs []utils.ValidationError

	if err := utils.ValidateStruct(f); err != nil {
		errs = append(errs, utils.GetValidationErrors(err)...)
	}

	if f.Status == "" {
		f.Status = models.ReportStatusDraft
	}
	if !models.ValidReportStatus(f.Status) {
		errs = append(errs, utils.ValidationError{
			Field: "status", Tag: "choice",
			Message: fmt.Sprintf("%q is not a valid report status", f.Status),
		})
	}

	errs = append(errs, validateLabels("service_type", f.ServiceType, models.ServiceTypeChoices)...)
	errs = append(errs, validateLabels("billing_category", f.BillingCategory, models.BillingCategoryChoices)...)
	errs = append(errs, validateLabels("final_status", f.FinalStatus, models.FinalStatusChoices)...)

	if f.Status == models.ReportStatusCompleted {
		required := []struct {
			field string
			empty bool
		}{
			{"client_name", f.ClientName == ""},
			{"location", f.Location == ""},
			{"service_date", f.ServiceDate == nil},
			{"issue_description", f.IssueDescription == ""},
			{"work_performed", f.WorkPerformed == ""},
			{"client_representative_name", f.ClientRepresentativeName == ""},
		}
		for _, r := range required {
			if r.empty {
				errs = append(errs, utils.ValidationError{
					Field: r.field, Tag: "required", Message: completedRequiredMessage,
				})
			}
		}
	}

	errs = append(errs, f.validateItems()...)
	return errs
}

// validateItems checks each line and rejects duplicate
// (product, serial) pairs among the lines not marked for deletion.
// A duplicate is reported once, against the collection as a whole.
func (f *ReportForm) validateItems() []utils.ValidationError {
	var errs []utils.ValidationError

	type itemKey struct {
		product uuid.UUID
		serial  string
	}
	seen := make(map[itemKey]bool)

	for i, item := range f.Items {
		if item.Destroy {
			continue
		}
		if item.ProductID == uuid.Nil {
			errs = append(errs, utils.ValidationError{
				Field: fmt.Sprintf("items[%d].product_id", i), Tag: "required",
				Message: "product is required",
			})
			continue
		}
		key := itemKey{product: item.ProductID, serial: item.SerialNumber}
		if seen[key] {
			serial := item.SerialNumber
			if serial == "" {
				serial = "N/A"
			}
			errs = append(errs, utils.ValidationError{
				Field: "items", Tag: "duplicate",
				Message: fmt.Sprintf("Duplicate entry: product with serial number '%s' is already added.", serial),
			})
			return errs
		}
		seen[key] = true
	}
	return errs
}

// ToModel materializes the parent record. Items, signature, and
// engineer assignment are the save transaction's job.
func (f *ReportForm) ToModel() *models.ServiceReport {
	return &models.ServiceReport{
		MaintenanceRequestID:     f.MaintenanceRequestID,
		ClientName:               f.ClientName,
		ProjectReference:         f.ProjectReference,
		Location:                 f.Location,
		Donor:                    f.Donor,
		ServiceDate:              f.ServiceDate,
		IssueDescription:         f.IssueDescription,
		WorkPerformed:            f.WorkPerformed,
		PartsUsed:                f.PartsUsed,
		ServiceType:              models.LabelSet(f.ServiceType),
		BillingCategory:          models.LabelSet(f.BillingCategory),
		FinalStatus:              models.LabelSet(f.FinalStatus),
		Status:                   f.Status,
		FollowUpRequired:         f.FollowUpRequired,
		ClientRepresentativeName: f.ClientRepresentativeName,
		ClientPhoneNumber:        f.ClientPhoneNumber,
	}
}

func validateLabels(field string, selected []string, choices []string) []utils.ValidationError {
	if models.ValidLabels(selected, choices) {
		return nil
	}
	return []utils.ValidationError{{
		Field: field, Tag: "choice",
		Message: fmt.Sprintf("%s contains a label outside its option set", field),
	}}
}
