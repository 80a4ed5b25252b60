package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/service"
)

type WorkOrderHandler struct {
	Service *service.WorkOrderService
}

type UpdateWorkOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetWorkOrders lists work orders, filtered by mo_id and/or status.
func (h *WorkOrderHandler) GetWorkOrders(c *gin.Context) {
	var status *models.WOStatus
	if q := c.Query("status"); q != "" {
		s := models.WOStatus(q)
		status = &s
	}

	orders, err := h.Service.List(c.Request.Context(), c.Query("mo_id"), status)
	if err != nil {
		respondError(c, err)
		return
	}

	if orders == nil {
		orders = []models.WorkOrder{}
	}

	c.JSON(http.StatusOK, orders)
}

// GetWorkOrderByID returns one work order.
func (h *WorkOrderHandler) GetWorkOrderByID(c *gin.Context) {
	wo, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, wo)
}

// UpdateStatus patches a work order's status. Advancing the last work order
// to done completes the parent manufacturing order.
func (h *WorkOrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateWorkOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wo, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("id"), models.WOStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, wo)
}
