// internal/services/product_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldserve-backend/internal/forms"
	"github.com/fieldserve/fieldserve-backend/internal/models"
)

func TestCreateProductValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db)

	product, validationErrs, err := svc.CreateProduct(&forms.ProductForm{Name: "Pump"})
	require.NoError(t, err)
	assert.Nil(t, product)
	assert.Len(t, validationErrs, 3)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateAndGetProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db)

	created, validationErrs, err := svc.CreateProduct(&forms.ProductForm{
		Name: "Infusion Pump", Category: "Infusion",
		Manufacturer: "Fresenius", Model: "Agilia",
	})
	require.NoError(t, err)
	require.Empty(t, validationErrs)
	assert.True(t, created.IsActive)
	assert.Equal(t, "Infusion Pump (Agilia)", created.DisplayName())

	loaded, err := svc.GetProduct(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)

	_, err = svc.GetProduct(uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListProductsSearchAndActiveFilter(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db)

	createProduct(t, db, "Ventilator")
	inactive := createProduct(t, db, "Old Ventilator")
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)
	createProduct(t, db, "Monitor")

	params := defaultParams()
	params.Search = "ventilator"
	_, total, err := svc.ListProducts(params, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	active := true
	products, total, err := svc.ListProducts(params, &active)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Ventilator", products[0].Name)
}

func TestUpdateProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db)

	product := createProduct(t, db, "Ventilator")

	inactive := false
	updated, validationErrs, err := svc.UpdateProduct(product.ID, &forms.ProductForm{
		Name: "Ventilator", Category: "Respiratory",
		Manufacturer: "Acme Medical", Model: "MK-III",
		IsActive: &inactive,
	})
	require.NoError(t, err)
	require.Empty(t, validationErrs)

	var loaded models.Product
	require.NoError(t, db.First(&loaded, "id = ?", updated.ID).Error)
	assert.Equal(t, "MK-III", loaded.Model)
	assert.False(t, loaded.IsActive)
}

func TestDeleteProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db)

	product := createProduct(t, db, "Ventilator")

	require.NoError(t, svc.DeleteProduct(product.ID))

	err := svc.DeleteProduct(product.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
