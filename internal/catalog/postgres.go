package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the subset of pgxpool.Pool used by PostgresStore.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const productColumns = `id, code, name, unit, price1::text, price2::text, price3::text,
	has_tax, tracks_serials, serials, history`

// PostgresStore persists the catalog in the products and warehouses tables.
type PostgresStore struct {
	db DB
}

// NewPostgresStore wraps db.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, code`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ByID(ctx context.Context, id string) (Product, error) {
	return s.one(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (s *PostgresStore) ByCode(ctx context.Context, code string) (Product, error) {
	return s.one(ctx, `SELECT `+productColumns+` FROM products WHERE lower(code) = lower($1)`, code)
}

func (s *PostgresStore) Save(ctx context.Context, p Product) (Product, error) {
	args := []any{p.Code, p.Name, p.Unit, p.Price1.String(), p.Price2.String(), p.Price3.String(),
		p.HasTax, p.TracksSerials, serialsOrEmpty(p.Serials), p.History}
	if p.ID == "" {
		p.ID = uuid.NewString()
		_, err := s.db.Exec(ctx, `INSERT INTO products
			(id, code, name, unit, price1, price2, price3, has_tax, tracks_serials, serials, history)
			VALUES ($11, $1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8, $9, $10)`,
			append(args, p.ID)...)
		if err != nil {
			return Product{}, mapWriteError(err)
		}
		return p, nil
	}
	tag, err := s.db.Exec(ctx, `UPDATE products SET
			code = $1, name = $2, unit = $3, price1 = $4::numeric, price2 = $5::numeric,
			price3 = $6::numeric, has_tax = $7, tracks_serials = $8, serials = $9, history = $10,
			updated_at = now()
		WHERE id = $11`, append(args, p.ID)...)
	if err != nil {
		return Product{}, mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Warehouses(ctx context.Context) ([]Warehouse, error) {
	rows, err := s.db.Query(ctx, `SELECT id, code, name FROM warehouses ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list warehouses: %w", err)
	}
	defer rows.Close()
	var out []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.Code, &w.Name); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// SaveWarehouse upserts a warehouse row. Used by the seeder.
func (s *PostgresStore) SaveWarehouse(ctx context.Context, w Warehouse) error {
	_, err := s.db.Exec(ctx, `INSERT INTO warehouses (id, code, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name`, w.ID, w.Code, w.Name)
	return err
}

// UpsertProduct inserts p keeping its ID, replacing any row with the same ID. Used by the seeder.
func (s *PostgresStore) UpsertProduct(ctx context.Context, p Product) error {
	_, err := s.db.Exec(ctx, `INSERT INTO products
			(id, code, name, unit, price1, price2, price3, has_tax, tracks_serials, serials, history)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name, unit = EXCLUDED.unit,
			price1 = EXCLUDED.price1, price2 = EXCLUDED.price2, price3 = EXCLUDED.price3,
			has_tax = EXCLUDED.has_tax, tracks_serials = EXCLUDED.tracks_serials,
			serials = EXCLUDED.serials, history = EXCLUDED.history, updated_at = now()`,
		p.ID, p.Code, p.Name, p.Unit, p.Price1.String(), p.Price2.String(), p.Price3.String(),
		p.HasTax, p.TracksSerials, serialsOrEmpty(p.Serials), p.History)
	return mapWriteError(err)
}

func (s *PostgresStore) one(ctx context.Context, query string, arg string) (Product, error) {
	p, err := scanProduct(s.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p                      Product
		price1, price2, price3 string
	)
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Unit, &price1, &price2, &price3,
		&p.HasTax, &p.TracksSerials, &p.Serials, &p.History); err != nil {
		return Product{}, err
	}
	var err error
	if p.Price1, err = decimal.NewFromString(price1); err != nil {
		return Product{}, fmt.Errorf("catalog: price1: %w", err)
	}
	if p.Price2, err = decimal.NewFromString(price2); err != nil {
		return Product{}, fmt.Errorf("catalog: price2: %w", err)
	}
	if p.Price3, err = decimal.NewFromString(price3); err != nil {
		return Product{}, fmt.Errorf("catalog: price3: %w", err)
	}
	if len(p.Serials) == 0 {
		p.Serials = nil
	}
	return p, nil
}

func serialsOrEmpty(serials []string) []string {
	if serials == nil {
		return []string{}
	}
	return serials
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateCode
	}
	return fmt.Errorf("catalog: save product: %w", err)
}
