package automation

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/service"
	"mrp-api-server/internal/store/memory"
)

type sweeperEnv struct {
	stores        *memory.Stores
	manufacturing *service.ManufacturingService
	workOrders    *service.WorkOrderService
	sweeper       *Sweeper
}

func newSweeperEnv(t *testing.T, cfg Config) *sweeperEnv {
	t.Helper()
	st := memory.New()
	log := zap.NewNop()
	manufacturing := service.NewManufacturingService(
		st.Products, st.BOMs, st.WorkCentres, st.MOs, st.WOs, st.Ledger,
		service.NopNotifier{}, log,
	)
	workOrders := service.NewWorkOrderService(st.WOs, manufacturing, service.NopNotifier{}, log)
	sweeper := NewSweeper(cfg, st.WOs, st.MOs, workOrders, service.NopNotifier{}, log)
	return &sweeperEnv{stores: st, manufacturing: manufacturing, workOrders: workOrders, sweeper: sweeper}
}

// seedOrder creates a runnable order: one finished good, one component, a BOM
// with the given operations and a work centre per operation, then an MO for
// the given quantity. Create auto-starts it.
func seedOrder(t *testing.T, env *sweeperEnv, operations []string, quantity int) string {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	bolt := &models.Product{Name: "Bolt", Type: models.ProductTypeRawMaterial, CreatedAt: now, UpdatedAt: now}
	boltID, err := env.stores.Products.Insert(ctx, bolt)
	if err != nil {
		t.Fatalf("insert component: %v", err)
	}
	frame := &models.Product{Name: "Frame", Type: models.ProductTypeFinishedGood, CreatedAt: now, UpdatedAt: now}
	frameID, err := env.stores.Products.Insert(ctx, frame)
	if err != nil {
		t.Fatalf("insert finished good: %v", err)
	}

	ops := make([]models.BOMOperation, 0, len(operations))
	for _, name := range operations {
		ops = append(ops, models.BOMOperation{Name: name, Duration: 10})
		wc := &models.WorkCentre{Name: name + " Station", Operation: name, CostPerHour: 10, CreatedAt: now, UpdatedAt: now}
		if _, err := env.stores.WorkCentres.Insert(ctx, wc); err != nil {
			t.Fatalf("insert work centre %s: %v", name, err)
		}
	}
	bom := &models.BillOfMaterials{
		FinishedProductID: frameID,
		Components:        []models.BOMComponent{{ProductID: boltID, Quantity: 2}},
		Operations:        ops,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := env.stores.BOMs.Insert(ctx, bom); err != nil {
		t.Fatalf("insert bom: %v", err)
	}

	mo, err := env.manufacturing.Create(ctx, frameID, quantity)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return mo.ID.Hex()
}

func TestSweepCompletesActiveWorkOrder(t *testing.T) {
	env := newSweeperEnv(t, Config{
		Interval:       time.Minute,
		StallThreshold: 48 * time.Hour,
		SimulatedWork:  0,
	})
	ctx := context.Background()
	moID := seedOrder(t, env, []string{"Welding", "Polishing"}, 1)

	// First pass finishes the auto-started first work order and advances the
	// second. Each pass only claims what was in_progress when it started.
	env.sweeper.RunOnce(ctx)

	workOrders, err := env.stores.WOs.GetByMO(ctx, moID)
	if err != nil {
		t.Fatalf("GetByMO: %v", err)
	}
	if workOrders[0].Status != models.WOStatusDone {
		t.Errorf("first work order = %s after one pass, want %s", workOrders[0].Status, models.WOStatusDone)
	}
	if workOrders[1].Status != models.WOStatusInProgress {
		t.Errorf("second work order = %s after one pass, want %s", workOrders[1].Status, models.WOStatusInProgress)
	}

	env.sweeper.RunOnce(ctx)

	mo, err := env.stores.MOs.GetByID(ctx, moID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if mo.Status != models.MOStatusDone {
		t.Errorf("order status = %s after two passes, want %s", mo.Status, models.MOStatusDone)
	}
	entries, err := env.stores.Ledger.GetByMO(ctx, moID)
	if err != nil {
		t.Fatalf("ledger GetByMO: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d ledger entries, want 2", len(entries))
	}
}

func TestSweepIgnoresIdleWork(t *testing.T) {
	env := newSweeperEnv(t, Config{
		Interval:       time.Minute,
		StallThreshold: 48 * time.Hour,
		SimulatedWork:  0,
	})
	ctx := context.Background()
	now := time.Now().UTC()

	mo := &models.ManufacturingOrder{
		ProductID:         "64b0c8f2a1d4e5f6a7b8c9d0",
		QuantityToProduce: 1,
		Status:            models.MOStatusPlanned,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	moID, err := env.stores.MOs.Insert(ctx, mo)
	if err != nil {
		t.Fatalf("insert MO: %v", err)
	}
	wo := &models.WorkOrder{MOID: moID, OperationName: "Welding", Sequence: 0, Status: models.WOStatusPending}
	woID, err := env.stores.WOs.Insert(ctx, wo)
	if err != nil {
		t.Fatalf("insert WO: %v", err)
	}

	env.sweeper.RunOnce(ctx)

	got, err := env.stores.WOs.GetByID(ctx, woID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.WOStatusPending {
		t.Errorf("pending work order touched by sweep, status = %s", got.Status)
	}
}

func TestSweepFlagsStalledOrders(t *testing.T) {
	env := newSweeperEnv(t, Config{
		Interval:       time.Minute,
		StallThreshold: 48 * time.Hour,
		SimulatedWork:  0,
	})
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.sweeper.now = func() time.Time { return base }

	insertRunning := func(age time.Duration) string {
		mo := &models.ManufacturingOrder{
			ProductID:         "64b0c8f2a1d4e5f6a7b8c9d0",
			QuantityToProduce: 1,
			Status:            models.MOStatusInProgress,
			CreatedAt:         base.Add(-age),
			UpdatedAt:         base.Add(-age),
		}
		id, err := env.stores.MOs.Insert(ctx, mo)
		if err != nil {
			t.Fatalf("insert MO: %v", err)
		}
		env.stores.MOs.SetUpdatedAt(id, base.Add(-age))
		return id
	}

	staleID := insertRunning(49 * time.Hour)
	freshID := insertRunning(1 * time.Hour)

	env.sweeper.RunOnce(ctx)

	stale, err := env.stores.MOs.GetByID(ctx, staleID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !stale.IsStalled {
		t.Error("order idle for 49h not flagged as stalled")
	}
	if stale.Status != models.MOStatusInProgress {
		t.Errorf("stall flag changed status to %s", stale.Status)
	}

	fresh, err := env.stores.MOs.GetByID(ctx, freshID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fresh.IsStalled {
		t.Error("order idle for 1h wrongly flagged as stalled")
	}
}

func TestSweepDoesNotFlagFinishedOrders(t *testing.T) {
	env := newSweeperEnv(t, Config{
		Interval:       time.Minute,
		StallThreshold: 48 * time.Hour,
		SimulatedWork:  0,
	})
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.sweeper.now = func() time.Time { return base }

	old := base.Add(-72 * time.Hour)
	mo := &models.ManufacturingOrder{
		ProductID:         "64b0c8f2a1d4e5f6a7b8c9d0",
		QuantityToProduce: 1,
		Status:            models.MOStatusDone,
		CreatedAt:         old,
		UpdatedAt:         old,
	}
	moID, err := env.stores.MOs.Insert(ctx, mo)
	if err != nil {
		t.Fatalf("insert MO: %v", err)
	}
	env.stores.MOs.SetUpdatedAt(moID, old)

	env.sweeper.RunOnce(ctx)

	got, err := env.stores.MOs.GetByID(ctx, moID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.IsStalled {
		t.Error("done order flagged as stalled")
	}
}

func TestSweeperStartStop(t *testing.T) {
	env := newSweeperEnv(t, Config{
		Interval:       5 * time.Millisecond,
		StallThreshold: 48 * time.Hour,
		SimulatedWork:  0,
	})
	moID := seedOrder(t, env, []string{"Welding"}, 1)

	env.sweeper.Start()
	defer env.sweeper.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mo, err := env.stores.MOs.GetByID(context.Background(), moID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if mo.Status == models.MOStatusDone {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("sweeper did not complete the order before the deadline")
}
