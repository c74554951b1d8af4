package stock

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool used by PostgresStore.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore persists allocations in the stock_allocations table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore wraps db.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ByWarehouse(ctx context.Context, warehouseID string) ([]Allocation, error) {
	return s.query(ctx, `SELECT product_id, warehouse_id, quantity, serials
		FROM stock_allocations WHERE warehouse_id = $1 ORDER BY position`, warehouseID)
}

func (s *PostgresStore) ByProduct(ctx context.Context, productID string) ([]Allocation, error) {
	return s.query(ctx, `SELECT product_id, warehouse_id, quantity, serials
		FROM stock_allocations WHERE product_id = $1 ORDER BY position`, productID)
}

// Replace deletes and re-inserts the product's rows inside one transaction.
func (s *PostgresStore) Replace(ctx context.Context, productID string, rows []Allocation) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM stock_allocations WHERE product_id = $1`, productID); err != nil {
			return fmt.Errorf("stock: clear allocations: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for _, r := range rows {
			serials := r.Serials
			if serials == nil {
				serials = []string{}
			}
			batch.Queue(`INSERT INTO stock_allocations (product_id, warehouse_id, quantity, serials)
				VALUES ($1, $2, $3, $4)`, productID, r.WarehouseID, r.Quantity, serials)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("stock: insert allocations: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) query(ctx context.Context, sql string, arg string) ([]Allocation, error) {
	rows, err := s.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("stock: query allocations: %w", err)
	}
	defer rows.Close()
	var out []Allocation
	for rows.Next() {
		var a Allocation
		if err := rows.Scan(&a.ProductID, &a.WarehouseID, &a.Quantity, &a.Serials); err != nil {
			return nil, err
		}
		if len(a.Serials) == 0 {
			a.Serials = nil
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
