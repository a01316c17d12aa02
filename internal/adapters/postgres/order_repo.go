package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/checkout/internal/core/domain"
)

// OrderRepo implements ports.OrderRepository, keeping only the newest
// retain rows in the orders table.
type OrderRepo struct {
	db     *DB
	retain int
}

func NewOrderRepo(db *DB, retain int) *OrderRepo {
	return &OrderRepo{db: db, retain: retain}
}

func (r *OrderRepo) Save(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, items, total, created_at)
		VALUES ($1, $2, $3, $4)
	`, order.ID, items, order.Total, order.CreatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if r.retain > 0 {
		if _, err := tx.Exec(ctx, `
			DELETE FROM orders WHERE seq NOT IN (
				SELECT seq FROM orders ORDER BY seq DESC LIMIT $1
			)
		`, r.retain); err != nil {
			return fmt.Errorf("trim orders: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepo) Recent(ctx context.Context, limit int) ([]domain.Order, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, items, total, created_at FROM (
			SELECT seq, id, items, total, created_at
			FROM orders ORDER BY seq DESC LIMIT $1
		) recent ORDER BY seq ASC
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var (
			o     domain.Order
			items []byte
		)
		if err := rows.Scan(&o.ID, &items, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items for %s: %w", o.ID, err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
