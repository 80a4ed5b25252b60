package service

import (
	"context"
	"testing"
	"time"

	"mrp-api-server/internal/models"
)

func TestStockLevelsSumLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	productID := "64b0c8f2a1d4e5f6a7b8c9d0"
	otherID := "64b0c8f2a1d4e5f6a7b8c9d1"
	entries := []models.StockLedgerEntry{
		{ProductID: productID, QuantityChange: 10, Reason: "Initial stock", Timestamp: now},
		{ProductID: productID, QuantityChange: -3, Reason: "Consumption for MO-a", ManufacturingOrderID: "a", Timestamp: now},
		{ProductID: productID, QuantityChange: -2, Reason: "Consumption for MO-b", ManufacturingOrderID: "b", Timestamp: now},
		{ProductID: otherID, QuantityChange: 7, Reason: "Initial stock", Timestamp: now},
	}
	for i := range entries {
		if _, err := env.stores.Ledger.Insert(ctx, &entries[i]); err != nil {
			t.Fatalf("insert entry %d: %v", i, err)
		}
	}

	levels, err := env.inventory.StockLevels(ctx)
	if err != nil {
		t.Fatalf("StockLevels: %v", err)
	}
	byProduct := make(map[string]int, len(levels))
	for _, l := range levels {
		byProduct[l.ProductID] = l.CurrentStock
	}
	if byProduct[productID] != 5 {
		t.Errorf("stock for %s = %d, want 5", productID, byProduct[productID])
	}
	if byProduct[otherID] != 7 {
		t.Errorf("stock for %s = %d, want 7", otherID, byProduct[otherID])
	}
}

func TestStockLevelsEmpty(t *testing.T) {
	env := newTestEnv(t)

	levels, err := env.inventory.StockLevels(context.Background())
	if err != nil {
		t.Fatalf("StockLevels: %v", err)
	}
	if levels == nil {
		t.Fatal("levels is nil, want empty slice")
	}
	if len(levels) != 0 {
		t.Errorf("got %d levels, want 0", len(levels))
	}
}

func TestHistoryForOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	entries := []models.StockLedgerEntry{
		{ProductID: "p1", QuantityChange: -4, Reason: "Consumption for MO-x", ManufacturingOrderID: "x", Timestamp: now},
		{ProductID: "p2", QuantityChange: 1, Reason: "Production from MO-x", ManufacturingOrderID: "x", Timestamp: now},
		{ProductID: "p1", QuantityChange: -8, Reason: "Consumption for MO-y", ManufacturingOrderID: "y", Timestamp: now},
	}
	for i := range entries {
		if _, err := env.stores.Ledger.Insert(ctx, &entries[i]); err != nil {
			t.Fatalf("insert entry %d: %v", i, err)
		}
	}

	forX, err := env.inventory.HistoryForOrder(ctx, "x")
	if err != nil {
		t.Fatalf("HistoryForOrder: %v", err)
	}
	if len(forX) != 2 {
		t.Errorf("got %d entries for order x, want 2", len(forX))
	}

	forNone, err := env.inventory.HistoryForOrder(ctx, "nope")
	if err != nil {
		t.Fatalf("HistoryForOrder(nope): %v", err)
	}
	if forNone == nil || len(forNone) != 0 {
		t.Errorf("got %v for unknown order, want empty slice", forNone)
	}

	all, err := env.inventory.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("full history has %d entries, want 3", len(all))
	}
}
