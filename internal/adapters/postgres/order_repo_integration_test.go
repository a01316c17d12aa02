//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/samirrijal/checkout/internal/adapters/postgres"
	"github.com/samirrijal/checkout/internal/core/domain"
	"github.com/samirrijal/checkout/internal/pkg/config"
)

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

func TestOrderRepo_SaveAndRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewOrderRepo(db, 5)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		o := &domain.Order{
			ID:        fmt.Sprintf("ord_it_%d", i),
			Items:     []any{"sku-1", float64(i)},
			Total:     float64(i) + 0.5,
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.Save(ctx, o); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	all, err := repo.Recent(ctx, 100)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 retained orders, got %d", len(all))
	}
	if all[0].ID != "ord_it_3" || all[4].ID != "ord_it_7" {
		t.Errorf("unexpected order window %s..%s", all[0].ID, all[4].ID)
	}
	if len(all[4].Items) != 2 || all[4].Total != 7.5 {
		t.Errorf("unexpected decoded order %+v", all[4])
	}
}
