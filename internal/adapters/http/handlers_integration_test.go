//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/checkout/internal/adapters/http"
	"github.com/samirrijal/checkout/internal/adapters/postgres"
	"github.com/samirrijal/checkout/internal/core/domain"
	"github.com/samirrijal/checkout/internal/core/slo"
	"github.com/samirrijal/checkout/internal/core/usecases"
	"github.com/samirrijal/checkout/internal/pkg/config"
)

// setupTestDB connects to the test database and returns a clean DB instance.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("checkout-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	schema, err := os.ReadFile("../../../migrations/001_orders.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, `TRUNCATE orders`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

// setupTestDeps creates dependencies backed by the real order table, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	repo := postgres.NewOrderRepo(db, 50)
	rec := slo.NewRecorder()

	return &http.Dependencies{
		App:      http.AppInfo{Env: "test", Version: "integration"},
		Checkout: usecases.NewCheckoutService(repo, rec, nil, nil, nil, usecases.CheckoutConfig{}),
		Orders:   usecases.NewOrderService(repo),
		Budget:   slo.NewReporter(rec),
		DB:       db,
	}
}

func TestCheckout_Integration_PersistsOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	app := setupApp(setupTestDeps(t, db))

	req := httptest.NewRequest("POST", "/api/checkout", strings.NewReader(`{"items":["sku-9"],"total":19.9}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	var count int
	if err := db.Pool.QueryRow(context.Background(), `SELECT count(*) FROM orders WHERE id = $1`, created.ID).Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 1 {
		t.Errorf("expected order %s persisted, found %d rows", created.ID, count)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/api/orders", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	var orders []domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != created.ID {
		t.Errorf("unexpected listing %+v", orders)
	}
}

func TestReady_Integration_WithRealDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	app := setupApp(setupTestDeps(t, setupTestDB(t)))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
