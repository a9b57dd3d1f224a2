// internal/services/report_service_test.go
package services

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldserve-backend/internal/forms"
	"github.com/fieldserve/fieldserve-backend/internal/models"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

func signatureDataURL() string {
	payload := base64.StdEncoding.EncodeToString([]byte("signature-strokes"))
	return "data:image/png;base64," + payload
}

func errorFields(errs []utils.ValidationError) map[string]bool {
	fields := make(map[string]bool, len(errs))
	for _, e := range errs {
		fields[e.Field] = true
	}
	return fields
}

func TestCreateReportPersistsParentItemsAndSignature(t *testing.T) {
	db := setupTestDB(t)
	storage, err := NewStorageService(testConfig())
	require.NoError(t, err)
	svc := NewReportService(db, storage)

	engineer := createUser(t, db, "jdoe", models.UserTypeEngineer)
	product := createProduct(t, db, "Ventilator")

	now := time.Now()
	form := &forms.ReportForm{
		ClientName:      "Tripoli General Hospital",
		Location:        "Tripoli",
		ServiceDate:     &now,
		ServiceType:     []string{"Repair"},
		Status:          models.ReportStatusDraft,
		ClientSignature: signatureDataURL(),
		Items: []forms.ReportItemForm{
			{ProductID: product.ID, SerialNumber: "SN-100", EquipmentNote: "Flow sensor replaced"},
		},
	}

	report, validationErrs, err := svc.CreateReport(engineer.ID, form, nil)
	require.NoError(t, err)
	require.Empty(t, validationErrs)
	require.NotNil(t, report)

	assert.Equal(t, engineer.ID, report.EngineerID)
	assert.Equal(t, models.LabelSet{"Repair"}, report.ServiceType)
	assert.True(t, strings.HasPrefix(report.ClientSignature, "signatures/"))
	require.Len(t, report.Items, 1)
	assert.Equal(t, "SN-100", report.Items[0].SerialNumber)
	assert.Equal(t, product.ID, report.Items[0].ProductID)
}

func TestCreateReportDuplicateItemsWriteNothing(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	engineer := createUser(t, db, "jdoe", models.UserTypeEngineer)
	product := createProduct(t, db, "Ventilator")

	form := &forms.ReportForm{
		ClientName: "Clinic",
		Items: []forms.ReportItemForm{
			{ProductID: product.ID, SerialNumber: "SN-1"},
			{ProductID: product.ID, SerialNumber: "SN-1"},
		},
	}

	report, validationErrs, err := svc.CreateReport(engineer.ID, form, nil)
	require.NoError(t, err)
	assert.Nil(t, report)
	require.Len(t, validationErrs, 1)
	assert.Equal(t, "items", validationErrs[0].Field)

	var reportCount, itemCount int64
	db.Model(&models.ServiceReport{}).Count(&reportCount)
	db.Model(&models.ReportItem{}).Count(&itemCount)
	assert.Zero(t, reportCount)
	assert.Zero(t, itemCount)
}

func TestCreateReportMalformedSignatureRejected(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	engineer := createUser(t, db, "jdoe", models.UserTypeEngineer)

	form := &forms.ReportForm{
		ClientName:      "Clinic",
		ClientSignature: "data:image/png;base64,not!!valid!!base64",
	}

	report, validationErrs, err := svc.CreateReport(engineer.ID, form, nil)
	require.NoError(t, err)
	assert.Nil(t, report)
	require.Len(t, validationErrs, 1)
	assert.Equal(t, "client_signature", validationErrs[0].Field)

	var count int64
	db.Model(&models.ServiceReport{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateReportNonSignatureValueIgnored(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	engineer := createUser(t, db, "jdoe", models.UserTypeEngineer)

	form := &forms.ReportForm{
		ClientName:      "Clinic",
		ClientSignature: "signatures/20250101_abcd1234.png",
	}

	report, validationErrs, err := svc.CreateReport(engineer.ID, form, nil)
	require.NoError(t, err)
	require.Empty(t, validationErrs)
	assert.Empty(t, report.ClientSignature)
}

func TestCreateReportUnknownProductRejected(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	engineer := createUser(t, db, "jdoe", models.UserTypeEngineer)

	form := &forms.ReportForm{
		ClientName: "Clinic",
		Items: []forms.ReportItemForm{
			{ProductID: uuid.New(), SerialNumber: "SN-1"},
		},
	}

	_, validationErrs, err := svc.CreateReport(engineer.ID, form, nil)
	require.NoError(t, err)
	require.Len(t, validationErrs, 1)
	assert.Equal(t, "items[0].product_id", validationErrs[0].Field)
}

func TestCreateReportClosedRequestCannotBeLinked(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	engineer := createUser(t, db, "jdoe", models.UserTypeEngineer)
	closed := createRequest(t, db, &engineer.ID, models.RequestStatusCompleted)

	form := &forms.ReportForm{
		ClientName:           "Clinic",
		MaintenanceRequestID: &closed.ID,
	}

	_, validationErrs, err := svc.CreateReport(engineer.ID, form, nil)
	require.NoError(t, err)
	fields := errorFields(validationErrs)
	assert.True(t, fields["maintenance_request_id"])
}

func TestUpdateReportSyncsItems(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	engineer := createUser(t, db, "jdoe", models.UserTypeEngineer)
	product := createProduct(t, db, "Ventilator")
	other := createProduct(t, db, "Monitor")

	created, validationErrs, err := svc.CreateReport(engineer.ID, &forms.ReportForm{
		ClientName: "Clinic",
		Items: []forms.ReportItemForm{
			{ProductID: product.ID, SerialNumber: "SN-1"},
			{ProductID: product.ID, SerialNumber: "SN-2"},
		},
	}, nil)
	require.NoError(t, err)
	require.Empty(t, validationErrs)
	require.Len(t, created.Items, 2)

	var keepID, dropID uuid.UUID
	for _, item := range created.Items {
		if item.SerialNumber == "SN-1" {
			keepID = item.ID
		} else {
			dropID = item.ID
		}
	}

	updated, validationErrs, err := svc.UpdateReport(created.ID, &forms.ReportForm{
		ClientName: "Clinic",
		Items: []forms.ReportItemForm{
			{ID: &keepID, ProductID: product.ID, SerialNumber: "SN-1-REV"},
			{ID: &dropID, ProductID: product.ID, SerialNumber: "SN-2", Destroy: true},
			{ProductID: other.ID, SerialNumber: "SN-9"},
		},
	}, nil)
	require.NoError(t, err)
	require.Empty(t, validationErrs)

	require.Len(t, updated.Items, 2)
	serials := map[string]uuid.UUID{}
	for _, item := range updated.Items {
		serials[item.SerialNumber] = item.ProductID
	}
	assert.Equal(t, product.ID, serials["SN-1-REV"])
	assert.Equal(t, other.ID, serials["SN-9"])
	assert.NotContains(t, serials, "SN-2")
}

func TestUpdateReportReplacesStoredSignature(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	engineer := createUser(t, db, "jdoe", models.UserTypeEngineer)

	created, validationErrs, err := svc.CreateReport(engineer.ID, &forms.ReportForm{
		ClientName:      "Clinic",
		ClientSignature: signatureDataURL(),
	}, nil)
	require.NoError(t, err)
	require.Empty(t, validationErrs)
	oldKey := created.ClientSignature
	require.NotEmpty(t, oldKey)

	updated, validationErrs, err := svc.UpdateReport(created.ID, &forms.ReportForm{
		ClientName:      "Clinic",
		ClientSignature: signatureDataURL(),
	}, nil)
	require.NoError(t, err)
	require.Empty(t, validationErrs)

	assert.NotEqual(t, oldKey, updated.ClientSignature)
	assert.True(t, strings.HasPrefix(updated.ClientSignature, "signatures/"))

	// The superseded local file is gone, the current one remains.
	_, err = os.Stat(filepath.Join("uploads", filepath.FromSlash(oldKey)))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join("uploads", filepath.FromSlash(updated.ClientSignature)))
	assert.NoError(t, err)
}

func TestUpdateReportMissingReport(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	_, _, err := svc.UpdateReport(uuid.New(), &forms.ReportForm{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestNewFormStatePrefillsFromRequest(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	engineer := createUser(t, db, "jdoe", models.UserTypeEngineer)
	open := createRequest(t, db, &engineer.ID, models.RequestStatusOpen)
	createRequest(t, db, &engineer.ID, models.RequestStatusCompleted)
	createRequest(t, db, &engineer.ID, models.RequestStatusCancelled)

	state, err := svc.NewFormState(&open.ID)
	require.NoError(t, err)

	assert.Equal(t, &open.ID, state.Initial.MaintenanceRequestID)
	assert.Equal(t, "Tripoli General Hospital", state.Initial.ClientName)
	assert.Equal(t, "Tripoli", state.Initial.Location)
	assert.Equal(t, "WHO", state.Initial.Donor)
	assert.Equal(t, "Ventilator will not power on", state.Initial.IssueDescription)
	assert.Equal(t, models.ReportStatusDraft, state.Initial.Status)

	// Closed requests do not appear in the selector.
	require.Len(t, state.OpenRequests, 1)
	assert.Equal(t, open.ID, state.OpenRequests[0].ID)
	assert.Contains(t, state.OpenRequests[0].Label, "Tripoli General Hospital")

	assert.Equal(t, models.ServiceTypeChoices, state.ServiceTypeChoices)
	assert.Equal(t, models.BillingCategoryChoices, state.BillingCategoryChoices)
	assert.Equal(t, models.FinalStatusChoices, state.FinalStatusChoices)
}

func TestNewFormStateIgnoresUnknownRequest(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	unknown := uuid.New()
	state, err := svc.NewFormState(&unknown)
	require.NoError(t, err)

	assert.Nil(t, state.Initial.MaintenanceRequestID)
	assert.Empty(t, state.Initial.ClientName)
}

func TestListReportsSearchesLinkedProducts(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	engineer := createUser(t, db, "jdoe", models.UserTypeEngineer)
	ventilator := createProduct(t, db, "Ventilator")
	createProduct(t, db, "Monitor")

	_, _, err := svc.CreateReport(engineer.ID, &forms.ReportForm{
		ClientName: "Saida Clinic",
		Items:      []forms.ReportItemForm{{ProductID: ventilator.ID, SerialNumber: "SN-1"}},
	}, nil)
	require.NoError(t, err)

	_, _, err = svc.CreateReport(engineer.ID, &forms.ReportForm{
		ClientName: "Zahle Hospital",
	}, nil)
	require.NoError(t, err)

	params := utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc", Search: "ventilator"}
	reports, total, err := svc.ListReports(params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, reports, 1)
	assert.Equal(t, "Saida Clinic", reports[0].ClientName)

	params.Search = "zahle"
	reports, total, err = svc.ListReports(params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, reports, 1)
	assert.Equal(t, "Zahle Hospital", reports[0].ClientName)
}

func TestListReportsFiltersByStatus(t *testing.T) {
	db := setupTestDB(t)
	storage, _ := NewStorageService(testConfig())
	svc := NewReportService(db, storage)

	engineer := createUser(t, db, "jdoe", models.UserTypeEngineer)

	_, _, err := svc.CreateReport(engineer.ID, &forms.ReportForm{
		ClientName: "Draft Clinic",
	}, nil)
	require.NoError(t, err)

	_, _, err = svc.CreateReport(engineer.ID, &forms.ReportForm{
		ClientName: "Pending Clinic",
		Status:     models.ReportStatusPending,
	}, nil)
	require.NoError(t, err)

	params := utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc", Status: "Pending"}
	reports, total, err := svc.ListReports(params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, reports, 1)
	assert.Equal(t, "Pending Clinic", reports[0].ClientName)
}
