package service

import (
	"context"

	"go.uber.org/zap"

	"mrp-api-server/internal/apperr"
	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

// InventoryService exposes the derived views over the stock ledger. Stock is
// never stored directly; availability is always the sum of ledger movements.
type InventoryService struct {
	ledger store.LedgerStore
	log    *zap.Logger
}

func NewInventoryService(ledger store.LedgerStore, log *zap.Logger) *InventoryService {
	return &InventoryService{ledger: ledger, log: log}
}

// StockLevels returns the current stock per product. Products with no ledger
// entries are simply absent, meaning zero stock.
func (s *InventoryService) StockLevels(ctx context.Context) ([]models.StockLevel, error) {
	levels, err := s.ledger.StockAvailability(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to aggregate stock levels")
	}
	if levels == nil {
		levels = []models.StockLevel{}
	}
	return levels, nil
}

// History returns every stock movement, newest first.
func (s *InventoryService) History(ctx context.Context) ([]models.StockLedgerEntry, error) {
	entries, err := s.ledger.GetAll(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to load stock ledger")
	}
	if entries == nil {
		entries = []models.StockLedgerEntry{}
	}
	return entries, nil
}

// HistoryForOrder returns the movements posted by one manufacturing order.
func (s *InventoryService) HistoryForOrder(ctx context.Context, moID string) ([]models.StockLedgerEntry, error) {
	entries, err := s.ledger.GetByMO(ctx, moID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to load stock ledger for order")
	}
	if entries == nil {
		entries = []models.StockLedgerEntry{}
	}
	return entries, nil
}
