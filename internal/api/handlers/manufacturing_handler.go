package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/service"
)

type ManufacturingHandler struct {
	Service   *service.ManufacturingService
	Inventory *service.InventoryService
}

type CreateManufacturingOrderRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// CreateOrder plans and auto-starts a new manufacturing order.
func (h *ManufacturingHandler) CreateOrder(c *gin.Context) {
	var req CreateManufacturingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mo, err := h.Service.Create(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mo)
}

// GetAllOrders lists manufacturing orders, optionally filtered by status.
func (h *ManufacturingHandler) GetAllOrders(c *gin.Context) {
	var status *models.MOStatus
	if q := c.Query("status"); q != "" {
		s := models.MOStatus(q)
		status = &s
	}

	orders, err := h.Service.GetAll(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	if orders == nil {
		orders = []models.ManufacturingOrder{}
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrderByID returns one manufacturing order.
func (h *ManufacturingHandler) GetOrderByID(c *gin.Context) {
	mo, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mo)
}

// DeleteOrder removes a planned or cancelled order and its work orders.
func (h *ManufacturingHandler) DeleteOrder(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Manufacturing order deleted successfully"})
}

// CompleteOrder posts the order's ledger movements and marks it done.
func (h *ManufacturingHandler) CompleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.Complete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Manufacturing order completed successfully", "mo_id": id})
}

// CancelOrder cancels a still-planned order.
func (h *ManufacturingHandler) CancelOrder(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Manufacturing order cancelled", "mo_id": id})
}

// StartProcess moves a planned order into execution.
func (h *ManufacturingHandler) StartProcess(c *gin.Context) {
	id := c.Param("id")
	firstWOID, err := h.Service.StartProcess(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Manufacturing process started successfully",
		"mo_id":       id,
		"first_wo_id": firstWOID,
	})
}

// GetOrderLedger returns the stock movements posted by one order.
func (h *ManufacturingHandler) GetOrderLedger(c *gin.Context) {
	entries, err := h.Inventory.HistoryForOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
