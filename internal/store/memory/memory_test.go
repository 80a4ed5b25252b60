package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

func TestProductNameUniqueCaseInsensitive(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	p := &models.Product{Name: "Wooden Leg", Type: models.ProductTypeRawMaterial, CreatedAt: now, UpdatedAt: now}
	if _, err := s.Products.Insert(ctx, p); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	dup := &models.Product{Name: "wooden leg", Type: models.ProductTypeRawMaterial, CreatedAt: now, UpdatedAt: now}
	if _, err := s.Products.Insert(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate name: err = %v, want ErrDuplicate", err)
	}
}

func TestUpdateStatusIfIsConditional(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	mo := &models.ManufacturingOrder{ProductID: "p", QuantityToProduce: 1, Status: models.MOStatusPlanned, CreatedAt: now, UpdatedAt: now}
	id, err := s.MOs.Insert(ctx, mo)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	swapped, err := s.MOs.UpdateStatusIf(ctx, id, models.MOStatusPlanned, models.MOStatusInProgress)
	if err != nil || !swapped {
		t.Fatalf("first swap: swapped=%v err=%v", swapped, err)
	}
	// The expected-from no longer matches.
	swapped, err = s.MOs.UpdateStatusIf(ctx, id, models.MOStatusPlanned, models.MOStatusCancelled)
	if err != nil {
		t.Fatalf("second swap: %v", err)
	}
	if swapped {
		t.Error("swap from a stale status succeeded")
	}
	got, err := s.MOs.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.MOStatusInProgress {
		t.Errorf("status = %s, want %s", got.Status, models.MOStatusInProgress)
	}
}

func TestCompleteOrderRollsBackOnDuplicate(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	mo := &models.ManufacturingOrder{ProductID: "p", QuantityToProduce: 1, Status: models.MOStatusInProgress, CreatedAt: now, UpdatedAt: now}
	moID, err := s.MOs.Insert(ctx, mo)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// Pre-existing entry for (MO, product-a) makes the batch collide.
	prior := &models.StockLedgerEntry{ProductID: "product-a", QuantityChange: -1, Reason: "r", ManufacturingOrderID: moID, Timestamp: now}
	if _, err := s.Ledger.Insert(ctx, prior); err != nil {
		t.Fatalf("insert prior entry: %v", err)
	}

	batch := []models.StockLedgerEntry{
		{ProductID: "product-b", QuantityChange: -2, Reason: "r", ManufacturingOrderID: moID, Timestamp: now},
		{ProductID: "product-a", QuantityChange: -1, Reason: "r", ManufacturingOrderID: moID, Timestamp: now},
	}
	err = s.Ledger.CompleteOrder(ctx, moID, now, batch)
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("CompleteOrder: err = %v, want ErrDuplicate", err)
	}

	// Nothing from the failed batch sticks, and the order stays in progress.
	entries, err := s.Ledger.GetByMO(ctx, moID)
	if err != nil {
		t.Fatalf("GetByMO: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("ledger has %d entries after rollback, want 1", len(entries))
	}
	got, err := s.MOs.GetByID(ctx, moID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.MOStatusInProgress {
		t.Errorf("status = %s after rollback, want %s", got.Status, models.MOStatusInProgress)
	}
}

func TestCompleteOrderRequiresInProgress(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	mo := &models.ManufacturingOrder{ProductID: "p", QuantityToProduce: 1, Status: models.MOStatusDone, CreatedAt: now, UpdatedAt: now}
	moID, err := s.MOs.Insert(ctx, mo)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	err = s.Ledger.CompleteOrder(ctx, moID, now, []models.StockLedgerEntry{
		{ProductID: "product-a", QuantityChange: 1, Reason: "r", ManufacturingOrderID: moID, Timestamp: now},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("completing a done order: err = %v, want ErrNotFound", err)
	}
	entries, err := s.Ledger.GetByMO(ctx, moID)
	if err != nil {
		t.Fatalf("GetByMO: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ledger has %d entries, want 0", len(entries))
	}
}

func TestMarkStalledOnlyWhileInProgress(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	insert := func(status models.MOStatus) string {
		mo := &models.ManufacturingOrder{ProductID: "p", QuantityToProduce: 1, Status: status, CreatedAt: now, UpdatedAt: now}
		id, err := s.MOs.Insert(ctx, mo)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		return id
	}

	runningID := insert(models.MOStatusInProgress)
	if err := s.MOs.MarkStalled(ctx, runningID); err != nil {
		t.Fatalf("MarkStalled on running order: %v", err)
	}
	running, err := s.MOs.GetByID(ctx, runningID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !running.IsStalled {
		t.Error("running order not flagged")
	}

	// An order that completed between a candidate query and the flag write
	// must be left alone.
	doneID := insert(models.MOStatusDone)
	if err := s.MOs.MarkStalled(ctx, doneID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("MarkStalled on done order: err = %v, want ErrNotFound", err)
	}
	done, err := s.MOs.GetByID(ctx, doneID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if done.IsStalled {
		t.Error("done order carries a stall flag")
	}
}

func TestWorkOrdersSortedBySequence(t *testing.T) {
	s := New()
	ctx := context.Background()

	moID := "64b0c8f2a1d4e5f6a7b8c9d0"
	for _, seq := range []int{2, 0, 1} {
		wo := &models.WorkOrder{MOID: moID, OperationName: "op", Sequence: seq, Status: models.WOStatusPending}
		if _, err := s.WOs.Insert(ctx, wo); err != nil {
			t.Fatalf("insert seq %d: %v", seq, err)
		}
	}

	workOrders, err := s.WOs.GetByMO(ctx, moID)
	if err != nil {
		t.Fatalf("GetByMO: %v", err)
	}
	for i, wo := range workOrders {
		if wo.Sequence != i {
			t.Errorf("position %d has sequence %d", i, wo.Sequence)
		}
	}
}
