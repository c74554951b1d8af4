package suppliers

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
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const supplierColumns = `id, document_type, document_number, business_name, trade_name, address, phone, email, contact, status, registered_at`

// PostgresStore persists suppliers in the suppliers table.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) List(ctx context.Context) ([]Supplier, error) {
	rows, err := p.db.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY registered_at, business_name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[Supplier])
}

func (p *PostgresStore) Get(ctx context.Context, id string) (Supplier, error) {
	rows, err := p.db.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return Supplier{}, err
	}
	s, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[Supplier])
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return s, err
}

func (p *PostgresStore) Save(ctx context.Context, s Supplier) (Supplier, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
		return s, p.Upsert(ctx, s)
	}
	tag, err := p.db.Exec(ctx, `UPDATE suppliers SET document_type = $2, document_number = $3, business_name = $4,
			trade_name = $5, address = $6, phone = $7, email = $8, contact = $9, status = $10
		WHERE id = $1`,
		s.ID, s.DocumentType, s.DocumentNumber, s.BusinessName, s.TradeName, s.Address, s.Phone, s.Email, s.Contact, s.Status)
	if err != nil {
		return Supplier{}, fmt.Errorf("update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Supplier{}, ErrNotFound
	}
	return s, nil
}

// Upsert writes s keeping its ID. The seeder relies on it being idempotent.
func (p *PostgresStore) Upsert(ctx context.Context, s Supplier) error {
	var registered any
	if !s.RegisteredAt.IsZero() {
		registered = s.RegisteredAt
	}
	_, err := p.db.Exec(ctx, `INSERT INTO suppliers (`+supplierColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, now()))
		ON CONFLICT (id) DO UPDATE SET document_type = EXCLUDED.document_type,
			document_number = EXCLUDED.document_number, business_name = EXCLUDED.business_name,
			trade_name = EXCLUDED.trade_name, address = EXCLUDED.address, phone = EXCLUDED.phone,
			email = EXCLUDED.email, contact = EXCLUDED.contact, status = EXCLUDED.status`,
		s.ID, s.DocumentType, s.DocumentNumber, s.BusinessName, s.TradeName, s.Address, s.Phone, s.Email, s.Contact, s.Status,
		registered)
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
