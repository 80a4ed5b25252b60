package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

type WorkCentreHandler struct {
	WorkCentres store.WorkCentreStore
}

type CreateWorkCentreRequest struct {
	Name        string  `json:"name" binding:"required"`
	Operation   string  `json:"operation" binding:"required"`
	Description string  `json:"description"`
	CostPerHour float64 `json:"costPerHour" binding:"gte=0"`
}

// CreateWorkCentre registers a new work centre for one named operation.
func (h *WorkCentreHandler) CreateWorkCentre(c *gin.Context) {
	var req CreateWorkCentreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	wc := models.WorkCentre{
		Name:        req.Name,
		Operation:   req.Operation,
		Description: req.Description,
		CostPerHour: req.CostPerHour,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := h.WorkCentres.Insert(c.Request.Context(), &wc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create work centre"})
		return
	}

	c.JSON(http.StatusCreated, wc)
}

// GetAllWorkCentres lists every work centre.
func (h *WorkCentreHandler) GetAllWorkCentres(c *gin.Context) {
	centres, err := h.WorkCentres.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query work centres"})
		return
	}

	if centres == nil {
		centres = []models.WorkCentre{}
	}

	c.JSON(http.StatusOK, centres)
}

// GetWorkCentreByID returns one work centre.
func (h *WorkCentreHandler) GetWorkCentreByID(c *gin.Context) {
	wc, err := h.WorkCentres.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Work centre not found"})
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed work centre id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve work centre"})
		}
		return
	}

	c.JSON(http.StatusOK, wc)
}

// UpdateWorkCentre replaces a work centre's mutable fields.
func (h *WorkCentreHandler) UpdateWorkCentre(c *gin.Context) {
	var req CreateWorkCentreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wc := models.WorkCentre{
		Name:        req.Name,
		Operation:   req.Operation,
		Description: req.Description,
		CostPerHour: req.CostPerHour,
	}

	if err := h.WorkCentres.Update(c.Request.Context(), c.Param("id"), &wc); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Work centre not found"})
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed work centre id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update work centre"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Work centre updated successfully"})
}

// DeleteWorkCentre removes a work centre.
func (h *WorkCentreHandler) DeleteWorkCentre(c *gin.Context) {
	if err := h.WorkCentres.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Work centre not found"})
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed work centre id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete work centre"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Work centre deleted successfully"})
}
