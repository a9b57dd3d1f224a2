// internal/services/product_service.go
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

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) ListProducts(params utils.PaginationParams, activeOnly *bool) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if activeOnly != nil {
		query = query.Where("is_active = ?", *activeOnly)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(manufacturer) LIKE ? OR LOWER(model) LIKE ? OR LOWER(category) LIKE ?",
			searchTerm, searchTerm, searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "category", "manufacturer"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// CreateProduct persists a catalog entry. The same path backs the
// regular create and the quick-create used from inside the report
// form.
func (s *ProductService) CreateProduct(form *forms.ProductForm) (*models.Product, []utils.ValidationError, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, errs, nil
	}

	product := form.ToModel()
	if err := s.db.Create(product).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil, nil
}

func (s *ProductService) UpdateProduct(id uuid.UUID, form *forms.ProductForm) (*models.Product, []utils.ValidationError, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("product not found")
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if errs := form.Validate(); len(errs) > 0 {
		return nil, errs, nil
	}

	active := product.IsActive
	if form.IsActive != nil {
		active = *form.IsActive
	}

	updates := map[string]interface{}{
		"name":          form.Name,
		"category":      form.Category,
		"manufacturer":  form.Manufacturer,
		"model":         form.Model,
		"serial_number": form.SerialNumber,
		"notes":         form.Notes,
		"is_active":     active,
	}
	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &product, nil, nil
}

// DeleteProduct removes a catalog entry. Line items referencing it go
// with it through the cascade, matching how the catalog treats a
// deleted product as never having been serviced.
func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	result := s.db.Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("product not found")
	}
	return nil
}
