// internal/handlers/product_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/fieldserve-backend/internal/forms"
	"github.com/fieldserve/fieldserve-backend/internal/services"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts handles GET /v1/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var activeOnly *bool
	if raw := c.Query("active"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			activeOnly = &value
		}
	}

	products, total, err := h.productService.ListProducts(params, activeOnly)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch products")
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// GetProduct handles GET /v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.InternalErrorResponse(c, "Failed to fetch product")
		return
	}

	utils.SuccessResponse(c, product)
}

// CreateProduct handles POST /v1/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var form forms.ProductForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, validationErrs, err := h.productService.CreateProduct(&form)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to create product")
		return
	}
	if len(validationErrs) > 0 {
		utils.ValidationErrorResponse(c, validationErrs)
		return
	}

	utils.CreatedResponse(c, product)
}

// CreateProductAjax handles POST /v1/products/create-ajax, the
// quick-create called from inside the report form. It accepts a
// form-encoded body and answers with the flat shape that form's
// inline product widget consumes.
func (h *ProductHandler) CreateProductAjax(c *gin.Context) {
	var form forms.ProductForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"errors":  gin.H{"__all__": []string{"Invalid form submission."}},
		})
		return
	}

	product, validationErrs, err := h.productService.CreateProduct(&form)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"errors":  gin.H{"__all__": []string{"Failed to create product."}},
		})
		return
	}
	if len(validationErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"errors":  forms.ErrorMap(validationErrs),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      product.ID,
		"name":    product.DisplayName(),
	})
}

// UpdateProduct handles PUT /v1/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var form forms.ProductForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, validationErrs, err := h.productService.UpdateProduct(id, &form)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.InternalErrorResponse(c, "Failed to update product")
		return
	}
	if len(validationErrs) > 0 {
		utils.ValidationErrorResponse(c, validationErrs)
		return
	}

	utils.SuccessResponse(c, product)
}

// DeleteProduct handles DELETE /v1/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.InternalErrorResponse(c, "Failed to delete product")
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
