package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

type ProductHandler struct {
	Products store.ProductStore
}

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type" binding:"required"` // "RawMaterial" or "FinishedGood"
	Description string `json:"description"`
}

// CreateProduct creates a new catalog product. Names are unique,
// case-insensitively.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productType := models.ProductType(req.Type)
	if !productType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product type must be RawMaterial or FinishedGood"})
		return
	}

	now := time.Now().UTC()
	product := models.Product{
		Name:        req.Name,
		Type:        productType,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := h.Products.Insert(c.Request.Context(), &product); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Product with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetAllProducts returns the full product catalog.
func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	products, err := h.Products.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query products"})
		return
	}

	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, products)
}

// GetProductByID returns one product.
func (h *ProductHandler) GetProductByID(c *gin.Context) {
	product, err := h.Products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed product id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product from the catalog.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed product id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
