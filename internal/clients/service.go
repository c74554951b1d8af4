package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Directory answers client lookups and maintains the client list.
type Directory struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

// NewDirectory constructs a Directory. A nil validator gets the shared defaults.
func NewDirectory(store Store, v *validator.Validate) (*Directory, error) {
	if store == nil {
		return nil, errors.New("clients: store is required")
	}
	if v == nil {
		v = common.NewValidator()
	}
	v.RegisterStructValidation(documentRule, ClientInput{})
	return &Directory{store: store, validate: v, now: time.Now}, nil
}

// Search implements the POS picker: clients whose name, document number or
// email contains term, optionally restricted to docType. With neither a term
// nor a type it returns nothing. At most PickerLimit matches are returned.
func (d *Directory) Search(ctx context.Context, term, docType string) ([]Client, error) {
	term = strings.TrimSpace(term)
	docType = strings.ToUpper(strings.TrimSpace(docType))
	if term == "" && docType == "" {
		return []Client{}, nil
	}
	rows, err := d.List(ctx, Query{Term: term, DocumentType: docType})
	if err != nil {
		return nil, err
	}
	if len(rows) > PickerLimit {
		rows = rows[:PickerLimit]
	}
	return rows, nil
}

// List returns the clients matching q.
func (d *Directory) List(ctx context.Context, q Query) ([]Client, error) {
	rows, err := d.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Client, 0, len(rows))
	for _, c := range rows {
		if q.match(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Get returns one client.
func (d *Directory) Get(ctx context.Context, id string) (Client, error) {
	c, err := d.store.Get(ctx, id)
	if err != nil {
		return Client{}, wrap(err)
	}
	return c, nil
}

// Create registers a new client.
func (d *Directory) Create(ctx context.Context, in ClientInput) (Client, error) {
	if err := common.ValidateStruct(d.validate, in); err != nil {
		return Client{}, err
	}
	c := in.apply(Client{RegisteredAt: d.now().UTC()})
	saved, err := d.store.Save(ctx, c)
	if err != nil {
		return Client{}, wrap(err)
	}
	return saved, nil
}

// Update replaces the editable fields of client id.
func (d *Directory) Update(ctx context.Context, id string, in ClientInput) (Client, error) {
	if err := common.ValidateStruct(d.validate, in); err != nil {
		return Client{}, err
	}
	current, err := d.store.Get(ctx, id)
	if err != nil {
		return Client{}, wrap(err)
	}
	saved, err := d.store.Save(ctx, in.apply(current))
	if err != nil {
		return Client{}, wrap(err)
	}
	return saved, nil
}

// Delete removes client id.
func (d *Directory) Delete(ctx context.Context, id string) error {
	return wrap(d.store.Delete(ctx, id))
}

func wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return common.NotFound("client not found", err)
	default:
		return fmt.Errorf("clients: %w", err)
	}
}
