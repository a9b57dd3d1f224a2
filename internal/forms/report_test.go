// internal/forms/report_test.go
package forms

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldserve-backend/internal/models"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

func fieldsWithErrors(errs []utils.ValidationError) map[string]bool {
	fields := make(map[string]bool, len(errs))
	for _, e := range errs {
		fields[e.Field] = true
	}
	return fields
}

func TestReportFormDefaultsToDraft(t *testing.T) {
	form := &ReportForm{}
	errs := form.Validate()

	assert.Empty(t, errs)
	assert.Equal(t, models.ReportStatusDraft, form.Status)
}

func TestReportFormEnforcesLengthLimits(t *testing.T) {
	form := &ReportForm{
		ClientName:        strings.Repeat("x", 500),
		ClientPhoneNumber: strings.Repeat("1", 30),
	}
	errs := form.Validate()

	fields := fieldsWithErrors(errs)
	assert.True(t, fields["client_name"])
	assert.True(t, fields["client_phone_number"])

	form = &ReportForm{ClientName: strings.Repeat("x", 200)}
	assert.Empty(t, form.Validate())
}

func TestReportItemSerialLengthLimit(t *testing.T) {
	form := &ReportForm{
		Items: []ReportItemForm{
			{ProductID: uuid.New(), SerialNumber: strings.Repeat("s", 300)},
		},
	}
	errs := form.Validate()

	fields := fieldsWithErrors(errs)
	assert.True(t, fields["serial_number"])
}

func TestReportFormRejectsUnknownStatus(t *testing.T) {
	form := &ReportForm{Status: "Archived"}
	errs := form.Validate()

	require.Len(t, errs, 1)
	assert.Equal(t, "status", errs[0].Field)
}

func TestReportFormRejectsLabelOutsideOptionSet(t *testing.T) {
	form := &ReportForm{
		ServiceType:     []string{"Repair", "Demolition"},
		BillingCategory: []string{"Contract"},
	}
	errs := form.Validate()

	fields := fieldsWithErrors(errs)
	assert.True(t, fields["service_type"])
	assert.False(t, fields["billing_category"])
}

func TestReportFormCompletedRequiresFields(t *testing.T) {
	form := &ReportForm{Status: models.ReportStatusCompleted}
	errs := form.Validate()

	fields := fieldsWithErrors(errs)
	for _, field := range []string{
		"client_name", "location", "service_date",
		"issue_description", "work_performed", "client_representative_name",
	} {
		assert.True(t, fields[field], "expected error on %s", field)
	}
	for _, e := range errs {
		assert.Equal(t, "This field is required when marking as Completed.", e.Message)
	}
}

func TestReportFormCompletedWithAllFieldsPasses(t *testing.T) {
	now := time.Now()
	form := &ReportForm{
		Status:                   models.ReportStatusCompleted,
		ClientName:               "Tripoli General Hospital",
		Location:                 "Tripoli",
		ServiceDate:              &now,
		IssueDescription:         "Ventilator alarm fault",
		WorkPerformed:            "Replaced flow sensor",
		ClientRepresentativeName: "R. Khoury",
	}

	assert.Empty(t, form.Validate())
}

func TestReportFormDraftDoesNotRequireCompletionFields(t *testing.T) {
	form := &ReportForm{Status: models.ReportStatusDraft}
	assert.Empty(t, form.Validate())
}

func TestReportItemsRequireProduct(t *testing.T) {
	form := &ReportForm{
		Items: []ReportItemForm{{SerialNumber: "SN-1"}},
	}
	errs := form.Validate()

	require.Len(t, errs, 1)
	assert.Equal(t, "items[0].product_id", errs[0].Field)
}

func TestReportItemsDuplicatePairRejectedOnce(t *testing.T) {
	productID := uuid.New()
	form := &ReportForm{
		Items: []ReportItemForm{
			{ProductID: productID, SerialNumber: "SN-1"},
			{ProductID: productID, SerialNumber: "SN-1"},
			{ProductID: productID, SerialNumber: "SN-1"},
		},
	}
	errs := form.Validate()

	require.Len(t, errs, 1)
	assert.Equal(t, "items", errs[0].Field)
	assert.Contains(t, errs[0].Message, "SN-1")
}

func TestReportItemsDuplicateWithoutSerialUsesPlaceholder(t *testing.T) {
	productID := uuid.New()
	form := &ReportForm{
		Items: []ReportItemForm{
			{ProductID: productID},
			{ProductID: productID},
		},
	}
	errs := form.Validate()

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "N/A")
}

func TestReportItemsSameProductDifferentSerialAllowed(t *testing.T) {
	productID := uuid.New()
	form := &ReportForm{
		Items: []ReportItemForm{
			{ProductID: productID, SerialNumber: "SN-1"},
			{ProductID: productID, SerialNumber: "SN-2"},
		},
	}

	assert.Empty(t, form.Validate())
}

func TestReportItemsDestroyedLineExcludedFromDuplicateCheck(t *testing.T) {
	productID := uuid.New()
	existingID := uuid.New()
	form := &ReportForm{
		Items: []ReportItemForm{
			{ID: &existingID, ProductID: productID, SerialNumber: "SN-1", Destroy: true},
			{ProductID: productID, SerialNumber: "SN-1"},
		},
	}

	assert.Empty(t, form.Validate())
}

func TestReportFormToModel(t *testing.T) {
	requestID := uuid.New()
	form := &ReportForm{
		MaintenanceRequestID: &requestID,
		ClientName:           "Clinic",
		ServiceType:          []string{"Repair"},
		Status:               models.ReportStatusPending,
		FollowUpRequired:     true,
	}

	report := form.ToModel()
	assert.Equal(t, &requestID, report.MaintenanceRequestID)
	assert.Equal(t, models.LabelSet{"Repair"}, report.ServiceType)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.True(t, report.FollowUpRequired)
	assert.Empty(t, report.ClientSignature)
}
