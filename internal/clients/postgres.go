package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by PostgresStore.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const clientColumns = `id, document_type, document_number, name, business_name, address, phone, email, status, registered_at`

// PostgresStore persists clients in the clients table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore wraps db.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]Client, error) {
	rows, err := s.db.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY registered_at, name`)
	if err != nil {
		return nil, fmt.Errorf("clients: list: %w", err)
	}
	return pgx.CollectRows(rows, scanClient)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Client, error) {
	rows, err := s.db.Query(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	if err != nil {
		return Client{}, fmt.Errorf("clients: get: %w", err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanClient)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

func (s *PostgresStore) Save(ctx context.Context, c Client) (Client, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
		return c, s.Upsert(ctx, c)
	}
	tag, err := s.db.Exec(ctx, `UPDATE clients SET document_type = $2, document_number = $3, name = $4,
			business_name = $5, address = $6, phone = $7, email = $8, status = $9
		WHERE id = $1`,
		c.ID, c.DocumentType, c.DocumentNumber, c.Name, c.BusinessName, c.Address, c.Phone, c.Email, c.Status)
	if err != nil {
		return Client{}, fmt.Errorf("clients: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Client{}, ErrNotFound
	}
	return c, nil
}

// Upsert inserts c keeping its ID and registration date. Used by the seeder.
func (s *PostgresStore) Upsert(ctx context.Context, c Client) error {
	_, err := s.db.Exec(ctx, `INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
		ON CONFLICT (id) DO UPDATE SET document_type = EXCLUDED.document_type,
			document_number = EXCLUDED.document_number, name = EXCLUDED.name,
			business_name = EXCLUDED.business_name, address = EXCLUDED.address,
			phone = EXCLUDED.phone, email = EXCLUDED.email, status = EXCLUDED.status`,
		c.ID, c.DocumentType, c.DocumentNumber, c.Name, c.BusinessName, c.Address, c.Phone, c.Email, c.Status,
		nullableTime(c))
	if err != nil {
		return fmt.Errorf("clients: insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clients: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClient(row pgx.CollectableRow) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.DocumentType, &c.DocumentNumber, &c.Name, &c.BusinessName, &c.Address,
		&c.Phone, &c.Email, &c.Status, &c.RegisteredAt)
	return c, err
}

func nullableTime(c Client) any {
	if c.RegisteredAt.IsZero() {
		return nil
	}
	return c.RegisteredAt
}
