package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mrp-api-server/internal/service"
)

type InventoryHandler struct {
	Inventory *service.InventoryService
}

// GetStockLevels returns current availability per product, derived from the
// ledger.
func (h *InventoryHandler) GetStockLevels(c *gin.Context) {
	levels, err := h.Inventory.StockLevels(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, levels)
}

// GetLedgerHistory returns every stock movement, newest first.
func (h *InventoryHandler) GetLedgerHistory(c *gin.Context) {
	entries, err := h.Inventory.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
