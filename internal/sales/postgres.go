package sales

import (
	"context"
	"encoding/json"
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

const saleColumns = `id, series, number, issued_at, client_id, client_name, document_type, currency,
	subtotal::text, discount::text, tax::text, total::text, status, notes, items`

const purchaseColumns = `id, series, number, issued_at, supplier_id, supplier_name, currency,
	subtotal::text, tax::text, total::text, status, items`

// PostgresStore persists sales and purchases; items are stored as JSONB.
type PostgresStore struct {
	db DB
}

// NewPostgresStore wraps db.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, sale Sale) (Sale, error) {
	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}
	items, err := json.Marshal(sale.Items)
	if err != nil {
		return Sale{}, fmt.Errorf("sales: encode items: %w", err)
	}
	_, err = s.db.Exec(ctx, `INSERT INTO sales
			(id, series, number, issued_at, client_id, client_name, document_type, currency,
			 subtotal, discount, tax, total, status, notes, items)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10::numeric, $11::numeric, $12::numeric, $13, $14, $15)`,
		sale.ID, sale.Series, sale.Number, sale.Date, sale.ClientID, sale.ClientName, sale.DocumentType,
		sale.Currency, sale.Subtotal.String(), sale.Discount.String(), sale.Tax.String(), sale.Total.String(),
		string(sale.Status), sale.Notes, items)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Sale{}, ErrDuplicateNumber
		}
		return Sale{}, fmt.Errorf("sales: insert sale: %w", err)
	}
	return sale, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Sale, error) {
	rows, err := s.db.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY issued_at, series, number`)
	if err != nil {
		return nil, fmt.Errorf("sales: list sales: %w", err)
	}
	defer rows.Close()
	var out []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Sale, error) {
	sale, err := scanSale(s.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrNotFound
	}
	return sale, err
}

func (s *PostgresStore) SetStatus(ctx context.Context, id string, status Status) (Sale, error) {
	sale, err := scanSale(s.db.QueryRow(ctx,
		`UPDATE sales SET status = $2 WHERE id = $1 RETURNING `+saleColumns, id, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrNotFound
	}
	return sale, err
}

func (s *PostgresStore) AppendPurchase(ctx context.Context, p Purchase) (Purchase, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	items, err := json.Marshal(p.Items)
	if err != nil {
		return Purchase{}, fmt.Errorf("sales: encode items: %w", err)
	}
	_, err = s.db.Exec(ctx, `INSERT INTO purchases
			(id, series, number, issued_at, supplier_id, supplier_name, currency, subtotal, tax, total, status, items)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10::numeric, $11, $12)
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Series, p.Number, p.Date, p.SupplierID, p.SupplierName, p.Currency,
		p.Subtotal.String(), p.Tax.String(), p.Total.String(), string(p.Status), items)
	if err != nil {
		return Purchase{}, fmt.Errorf("sales: insert purchase: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPurchases(ctx context.Context) ([]Purchase, error) {
	rows, err := s.db.Query(ctx, `SELECT `+purchaseColumns+` FROM purchases ORDER BY issued_at, series, number`)
	if err != nil {
		return nil, fmt.Errorf("sales: list purchases: %w", err)
	}
	defer rows.Close()
	var out []Purchase
	for rows.Next() {
		var (
			p                    Purchase
			status               string
			subtotal, tax, total string
			items                []byte
		)
		if err := rows.Scan(&p.ID, &p.Series, &p.Number, &p.Date, &p.SupplierID, &p.SupplierName, &p.Currency,
			&subtotal, &tax, &total, &status, &items); err != nil {
			return nil, err
		}
		p.Status = Status(status)
		if err := decodeAmounts(map[*decimal.Decimal]string{&p.Subtotal: subtotal, &p.Tax: tax, &p.Total: total}); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &p.Items); err != nil {
			return nil, fmt.Errorf("sales: decode items: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanSale(row pgx.Row) (Sale, error) {
	var (
		sale                           Sale
		status                         string
		subtotal, discount, tax, total string
		items                          []byte
	)
	if err := row.Scan(&sale.ID, &sale.Series, &sale.Number, &sale.Date, &sale.ClientID, &sale.ClientName,
		&sale.DocumentType, &sale.Currency, &subtotal, &discount, &tax, &total, &status, &sale.Notes, &items); err != nil {
		return Sale{}, err
	}
	sale.Status = Status(status)
	if err := decodeAmounts(map[*decimal.Decimal]string{
		&sale.Subtotal: subtotal, &sale.Discount: discount, &sale.Tax: tax, &sale.Total: total,
	}); err != nil {
		return Sale{}, err
	}
	if err := json.Unmarshal(items, &sale.Items); err != nil {
		return Sale{}, fmt.Errorf("sales: decode items: %w", err)
	}
	return sale, nil
}

func decodeAmounts(fields map[*decimal.Decimal]string) error {
	for dst, raw := range fields {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("sales: decode amount %q: %w", raw, err)
		}
		*dst = v
	}
	return nil
}
