package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store/memory"
)

// testEnv bundles the services over a fresh in-memory store.
type testEnv struct {
	stores        *memory.Stores
	manufacturing *ManufacturingService
	workOrders    *WorkOrderService
	inventory     *InventoryService
	analytics     *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memory.New()
	log := zap.NewNop()
	manufacturing := NewManufacturingService(
		st.Products, st.BOMs, st.WorkCentres, st.MOs, st.WOs, st.Ledger,
		NopNotifier{}, log,
	)
	workOrders := NewWorkOrderService(st.WOs, manufacturing, NopNotifier{}, log)
	inventory := NewInventoryService(st.Ledger, log)
	analytics := NewAnalyticsService(st.MOs, log)
	return &testEnv{
		stores:        st,
		manufacturing: manufacturing,
		workOrders:    workOrders,
		inventory:     inventory,
		analytics:     analytics,
	}
}

// catalog holds the ids of the seeded wooden-table scenario: three raw
// materials, one finished good, one BOM with two operations, and a work
// centre per operation.
type catalog struct {
	legID      string
	topID      string
	screwsID   string
	tableID    string
	assembly   string
	painting   string
	components []models.BOMComponent
}

func seedCatalog(t *testing.T, env *testEnv) catalog {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	addProduct := func(name string, pt models.ProductType) string {
		p := &models.Product{Name: name, Type: pt, CreatedAt: now, UpdatedAt: now}
		id, err := env.stores.Products.Insert(ctx, p)
		if err != nil {
			t.Fatalf("seed product %s: %v", name, err)
		}
		return id
	}

	c := catalog{
		legID:    addProduct("Wooden Leg", models.ProductTypeRawMaterial),
		topID:    addProduct("Wooden Top", models.ProductTypeRawMaterial),
		screwsID: addProduct("Screws", models.ProductTypeRawMaterial),
		tableID:  addProduct("Wooden Table", models.ProductTypeFinishedGood),
	}

	c.components = []models.BOMComponent{
		{ProductID: c.legID, Quantity: 4},
		{ProductID: c.topID, Quantity: 1},
		{ProductID: c.screwsID, Quantity: 12},
	}
	bom := &models.BillOfMaterials{
		FinishedProductID: c.tableID,
		Components:        c.components,
		Operations: []models.BOMOperation{
			{Name: "Assembly", Duration: 60},
			{Name: "Painting", Duration: 30},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := env.stores.BOMs.Insert(ctx, bom); err != nil {
		t.Fatalf("seed bom: %v", err)
	}

	addCentre := func(name, operation string) string {
		wc := &models.WorkCentre{Name: name, Operation: operation, CostPerHour: 25, CreatedAt: now, UpdatedAt: now}
		id, err := env.stores.WorkCentres.Insert(ctx, wc)
		if err != nil {
			t.Fatalf("seed work centre %s: %v", name, err)
		}
		return id
	}
	c.assembly = addCentre("Assembly Line 1", "Assembly")
	c.painting = addCentre("Paint Shop", "Painting")

	return c
}
