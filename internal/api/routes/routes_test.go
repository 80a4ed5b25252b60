package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mrp-api-server/config"
	"mrp-api-server/internal/auth"
	"mrp-api-server/internal/models"
	"mrp-api-server/internal/service"
	"mrp-api-server/internal/socket"
	"mrp-api-server/internal/store/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiEnv struct {
	router *gin.Engine
	tokens *auth.Manager
	stores *memory.Stores
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	st := memory.New()
	log := zap.NewNop()
	tokens := auth.NewManager("test-secret", time.Hour)
	hub := socket.NewHub(log)
	notifier := &socket.Notifier{Hub: hub}

	manufacturing := service.NewManufacturingService(
		st.Products, st.BOMs, st.WorkCentres, st.MOs, st.WOs, st.Ledger,
		notifier, log,
	)
	workOrders := service.NewWorkOrderService(st.WOs, manufacturing, notifier, log)
	inventory := service.NewInventoryService(st.Ledger, log)
	analytics := service.NewAnalyticsService(st.MOs, log)

	router := SetupRouter(Deps{
		Cfg:           config.Config{},
		Tokens:        tokens,
		Hub:           hub,
		Log:           log,
		Products:      st.Products,
		BOMs:          st.BOMs,
		WorkCentres:   st.WorkCentres,
		Users:         st.Users,
		Manufacturing: manufacturing,
		WorkOrders:    workOrders,
		Inventory:     inventory,
		Analytics:     analytics,
	})
	return &apiEnv{router: router, tokens: tokens, stores: st}
}

func (e *apiEnv) token(t *testing.T, role string) string {
	t.Helper()
	token, err := e.tokens.Generate(role+"@example.com", "Test "+role, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// do sends a JSON request with a bearer token and decodes the response body
// into out when it is non-nil.
func (e *apiEnv) do(t *testing.T, method, path, token string, body, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w
}

func TestRoutesRequireAuthentication(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/products/", "", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	w = env.do(t, http.MethodGet, "/api/v1/products/", "not-a-token", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestOperatorCannotWriteCatalog(t *testing.T) {
	env := newAPIEnv(t)
	operator := env.token(t, "operator")

	w := env.do(t, http.MethodPost, "/api/v1/products/", operator, map[string]string{
		"name": "Widget",
		"type": "RawMaterial",
	}, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("operator creating a product: status = %d, want %d", w.Code, http.StatusForbidden)
	}

	w = env.do(t, http.MethodPost, "/api/v1/manufacturing-orders/", operator, map[string]interface{}{
		"product_id": "64b0c8f2a1d4e5f6a7b8c9d0",
		"quantity":   1,
	}, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("operator creating an order: status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestAdminUserEndpointRestricted(t *testing.T) {
	env := newAPIEnv(t)
	manager := env.token(t, "manager")

	w := env.do(t, http.MethodPost, "/api/v1/admin/users", manager, map[string]string{
		"email":    "new@example.com",
		"name":     "New User",
		"password": "longenough",
		"role":     "operator",
	}, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("manager creating a user: status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestLoginFlow(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()

	hashed, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Email: "planner@example.com", Name: "Planner", Password: hashed, Role: "manager", Status: "active"}
	if _, err := env.stores.Users.Insert(ctx, user); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "planner@example.com",
		"password": "correct-horse",
	}, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body %s", w.Code, w.Body.String())
	}
	if resp.Token == "" || resp.User.Role != "manager" {
		t.Fatalf("login response = %+v", resp)
	}

	// The issued token works on protected routes.
	w = env.do(t, http.MethodGet, "/api/v1/products/", resp.Token, nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("issued token rejected: status = %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "planner@example.com",
		"password": "wrong",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// Drives the whole happy path over HTTP: catalog setup, order creation,
// advancing work orders from the shop floor, and the resulting stock picture.
func TestManufacturingFlowOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	manager := env.token(t, "manager")
	operator := env.token(t, "operator")

	createProduct := func(name, typ string) string {
		var p models.Product
		w := env.do(t, http.MethodPost, "/api/v1/products/", manager, map[string]string{
			"name": name,
			"type": typ,
		}, &p)
		if w.Code != http.StatusCreated {
			t.Fatalf("create product %s: status = %d, body %s", name, w.Code, w.Body.String())
		}
		return p.ID.Hex()
	}
	legID := createProduct("Wooden Leg", "RawMaterial")
	topID := createProduct("Wooden Top", "RawMaterial")
	screwsID := createProduct("Screws", "RawMaterial")
	tableID := createProduct("Wooden Table", "FinishedGood")

	w := env.do(t, http.MethodPost, "/api/v1/boms/", manager, map[string]interface{}{
		"finishedProductId": tableID,
		"components": []map[string]interface{}{
			{"productId": legID, "quantity": 4},
			{"productId": topID, "quantity": 1},
			{"productId": screwsID, "quantity": 12},
		},
		"operations": []map[string]interface{}{
			{"name": "Assembly", "duration": 60},
			{"name": "Painting", "duration": 30},
		},
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create BOM: status = %d, body %s", w.Code, w.Body.String())
	}

	for _, wc := range []struct{ name, operation string }{
		{"Assembly Line 1", "Assembly"},
		{"Paint Shop", "Painting"},
	} {
		w := env.do(t, http.MethodPost, "/api/v1/work-centres/", manager, map[string]interface{}{
			"name":        wc.name,
			"operation":   wc.operation,
			"costPerHour": 25,
		}, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("create work centre %s: status = %d, body %s", wc.name, w.Code, w.Body.String())
		}
	}

	var mo models.ManufacturingOrder
	w = env.do(t, http.MethodPost, "/api/v1/manufacturing-orders/", manager, map[string]interface{}{
		"product_id": tableID,
		"quantity":   10,
	}, &mo)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: status = %d, body %s", w.Code, w.Body.String())
	}
	if mo.Status != models.MOStatusInProgress {
		t.Fatalf("order status = %s, want %s", mo.Status, models.MOStatusInProgress)
	}
	moID := mo.ID.Hex()

	var workOrders []models.WorkOrder
	w = env.do(t, http.MethodGet, "/api/v1/work-orders/?mo_id="+moID, operator, nil, &workOrders)
	if w.Code != http.StatusOK {
		t.Fatalf("list work orders: status = %d", w.Code)
	}
	if len(workOrders) != 2 {
		t.Fatalf("got %d work orders, want 2", len(workOrders))
	}

	// Operators advance each step from the shop floor.
	for _, wo := range workOrders {
		w := env.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/work-orders/%s/status", wo.ID.Hex()), operator,
			map[string]string{"status": "done"}, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("finish %s: status = %d, body %s", wo.OperationName, w.Code, w.Body.String())
		}
	}

	var finished models.ManufacturingOrder
	w = env.do(t, http.MethodGet, "/api/v1/manufacturing-orders/"+moID, manager, nil, &finished)
	if w.Code != http.StatusOK {
		t.Fatalf("get order: status = %d", w.Code)
	}
	if finished.Status != models.MOStatusDone {
		t.Fatalf("order status = %s after all work orders done, want %s", finished.Status, models.MOStatusDone)
	}

	var entries []models.StockLedgerEntry
	w = env.do(t, http.MethodGet, "/api/v1/manufacturing-orders/"+moID+"/ledger", manager, nil, &entries)
	if w.Code != http.StatusOK {
		t.Fatalf("order ledger: status = %d", w.Code)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d ledger entries, want 4", len(entries))
	}

	var levels []models.StockLevel
	w = env.do(t, http.MethodGet, "/api/v1/inventory/stock", manager, nil, &levels)
	if w.Code != http.StatusOK {
		t.Fatalf("stock levels: status = %d", w.Code)
	}
	byProduct := make(map[string]int, len(levels))
	for _, l := range levels {
		byProduct[l.ProductID] = l.CurrentStock
	}
	want := map[string]int{legID: -40, topID: -10, screwsID: -120, tableID: 10}
	for productID, qty := range want {
		if byProduct[productID] != qty {
			t.Errorf("stock for %s = %d, want %d", productID, byProduct[productID], qty)
		}
	}

	// Completing again over HTTP is rejected, and the ledger is unchanged.
	w = env.do(t, http.MethodPost, "/api/v1/manufacturing-orders/"+moID+"/complete", manager, nil, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("double completion: status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestCreateBOMRejectsRepeatedComponent(t *testing.T) {
	env := newAPIEnv(t)
	manager := env.token(t, "manager")

	var leg, table models.Product
	w := env.do(t, http.MethodPost, "/api/v1/products/", manager, map[string]string{
		"name": "Leg", "type": "RawMaterial",
	}, &leg)
	if w.Code != http.StatusCreated {
		t.Fatalf("create component: status = %d", w.Code)
	}
	w = env.do(t, http.MethodPost, "/api/v1/products/", manager, map[string]string{
		"name": "Table", "type": "FinishedGood",
	}, &table)
	if w.Code != http.StatusCreated {
		t.Fatalf("create finished good: status = %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/boms/", manager, map[string]interface{}{
		"finishedProductId": table.ID.Hex(),
		"components": []map[string]interface{}{
			{"productId": leg.ID.Hex(), "quantity": 2},
			{"productId": leg.ID.Hex(), "quantity": 3},
		},
		"operations": []map[string]interface{}{{"name": "Assembly", "duration": 30}},
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("BOM with a repeated component line: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateOrderValidationOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	manager := env.token(t, "manager")

	// Unknown product.
	w := env.do(t, http.MethodPost, "/api/v1/manufacturing-orders/", manager, map[string]interface{}{
		"product_id": "64b0c8f2a1d4e5f6a7b8c9d0",
		"quantity":   1,
	}, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown product: status = %d, want %d", w.Code, http.StatusNotFound)
	}

	// Missing fields fail binding.
	w = env.do(t, http.MethodPost, "/api/v1/manufacturing-orders/", manager, map[string]interface{}{}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty body: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAnalyticsRestrictedToPlanners(t *testing.T) {
	env := newAPIEnv(t)
	manager := env.token(t, "manager")
	operator := env.token(t, "operator")

	for _, status := range []models.MOStatus{models.MOStatusPlanned, models.MOStatusDone, models.MOStatusDone} {
		if _, err := env.stores.MOs.Insert(context.Background(), &models.ManufacturingOrder{
			ProductID:         "64b0c8f2a1d4e5f6a7b8c9d0",
			QuantityToProduce: 1,
			Status:            status,
			CreatedAt:         time.Now().UTC(),
			UpdatedAt:         time.Now().UTC(),
		}); err != nil {
			t.Fatalf("insert MO: %v", err)
		}
	}

	w := env.do(t, http.MethodGet, "/api/v1/analytics/overview", operator, nil, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("operator overview: status = %d, want %d", w.Code, http.StatusForbidden)
	}

	var overview models.StatusOverview
	w = env.do(t, http.MethodGet, "/api/v1/analytics/overview", manager, nil, &overview)
	if w.Code != http.StatusOK {
		t.Fatalf("manager overview: status = %d, body %s", w.Code, w.Body.String())
	}
	if overview.Planned != 1 || overview.Done != 2 {
		t.Errorf("overview = %+v, want 1 planned and 2 done", overview)
	}

	w = env.do(t, http.MethodGet, "/api/v1/analytics/throughput?period_days=nope", manager, nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad period_days: status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var cycle models.CycleTimeSummary
	w = env.do(t, http.MethodGet, "/api/v1/analytics/cycle-time", manager, nil, &cycle)
	if w.Code != http.StatusOK {
		t.Fatalf("cycle time: status = %d, body %s", w.Code, w.Body.String())
	}
}
