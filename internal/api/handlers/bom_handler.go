package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

type BOMHandler struct {
	BOMs     store.BOMStore
	Products store.ProductStore
}

type BOMComponentRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type BOMOperationRequest struct {
	Name     string `json:"name" binding:"required"`
	Duration int    `json:"duration" binding:"required,gt=0"` // minutes
}

type CreateBOMRequest struct {
	FinishedProductID string                `json:"finishedProductId" binding:"required"`
	Components        []BOMComponentRequest `json:"components" binding:"required,min=1,dive"`
	Operations        []BOMOperationRequest `json:"operations" binding:"required,min=1,dive"`
	Recipe            string                `json:"recipe"`
}

// CreateBOM creates a bill of materials for a finished good. The finished
// product must exist and be a FinishedGood; every component must be a
// RawMaterial; one BOM per finished product.
func (h *BOMHandler) CreateBOM(c *gin.Context) {
	var req CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	finished, err := h.Products.GetByID(ctx, req.FinishedProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Finished product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate finished product"})
		return
	}
	if finished.Type != models.ProductTypeFinishedGood {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Finished product must be of type FinishedGood"})
		return
	}

	components := make([]models.BOMComponent, 0, len(req.Components))
	seen := make(map[string]bool, len(req.Components))
	for _, comp := range req.Components {
		if seen[comp.ProductID] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Component product " + comp.ProductID + " is listed more than once"})
			return
		}
		seen[comp.ProductID] = true
		p, err := h.Products.GetByID(ctx, comp.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Component product " + comp.ProductID + " not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate component product"})
			return
		}
		if p.Type != models.ProductTypeRawMaterial {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Component " + p.Name + " must be a RawMaterial"})
			return
		}
		components = append(components, models.BOMComponent{ProductID: comp.ProductID, Quantity: comp.Quantity})
	}

	// One BOM per finished product, enforced at creation.
	if _, err := h.BOMs.GetByFinishedProduct(ctx, req.FinishedProductID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A bill of materials already exists for this product"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check for existing bill of materials"})
		return
	}

	operations := make([]models.BOMOperation, 0, len(req.Operations))
	for _, op := range req.Operations {
		operations = append(operations, models.BOMOperation{Name: op.Name, Duration: op.Duration})
	}

	now := time.Now().UTC()
	bom := models.BillOfMaterials{
		FinishedProductID: req.FinishedProductID,
		Components:        components,
		Operations:        operations,
		Recipe:            req.Recipe,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := h.BOMs.Insert(ctx, &bom); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bill of materials"})
		return
	}

	c.JSON(http.StatusCreated, bom)
}

// GetAllBOMs lists every bill of materials.
func (h *BOMHandler) GetAllBOMs(c *gin.Context) {
	boms, err := h.BOMs.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query bills of materials"})
		return
	}

	if boms == nil {
		boms = []models.BillOfMaterials{}
	}

	c.JSON(http.StatusOK, boms)
}

// GetBOMByID returns one bill of materials.
func (h *BOMHandler) GetBOMByID(c *gin.Context) {
	bom, err := h.BOMs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Bill of materials not found"})
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed bill of materials id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bill of materials"})
		}
		return
	}

	c.JSON(http.StatusOK, bom)
}

// DeleteBOM removes a bill of materials.
func (h *BOMHandler) DeleteBOM(c *gin.Context) {
	if err := h.BOMs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Bill of materials not found"})
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed bill of materials id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bill of materials"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bill of materials deleted successfully"})
}
