// internal/forms/product.go
package forms

import (
	"github.com/fieldserve/fieldserve-backend/internal/models"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

// ProductForm covers catalog creation and edits, including the
// form-encoded quick-create endpoint.
type ProductForm struct {
	Name         string `json:"name" form:"name" validate:"max=255"`
	Category     string `json:"category" form:"category" validate:"max=255"`
	Manufacturer string `json:"manufacturer" form:"manufacturer" validate:"max=255"`
	Model        string `json:"model" form:"model" validate:"max=255"`
	SerialNumber string `json:"serial_number" form:"serial_number" validate:"max=255"`
	Notes        string `json:"notes" form:"notes"`
	IsActive     *bool  `json:"is_active" form:"is_active"`
}

func (f *ProductForm) Validate() []utils.ValidationError {
	var errs []utils.ValidationError

	if err := utils.ValidateStruct(f); err != nil {
		errs = append(errs, utils.GetValidationErrors(err)...)
	}

	required := []struct {
		field, value string
	}{
		{"name", f.Name},
		{"category", f.Category},
		{"manufacturer", f.Manufacturer},
		{"model", f.Model},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, utils.ValidationError{
				Field: r.field, Tag: "required", Message: "This field is required.",
			})
		}
	}
	return errs
}

func (f *ProductForm) ToModel() *models.Product {
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	return &models.Product{
		Name:         f.Name,
		Category:     f.Category,
		Manufacturer: f.Manufacturer,
		Model:        f.Model,
		SerialNumber: f.SerialNumber,
		Notes:        f.Notes,
		IsActive:     active,
	}
}

// ErrorMap regroups field errors into the {field: [messages]} shape
// the quick-create endpoint responds with.
func ErrorMap(errs []utils.ValidationError) map[string][]string {
	m := make(map[string][]string, len(errs))
	for _, e := range errs {
		m[e.Field] = append(m[e.Field], e.Message)
	}
	return m
}
