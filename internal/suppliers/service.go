package suppliers

import (
	"context"
	"errors"
	"fmt"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
)

// ServiceConfig wires the supplier service.
type ServiceConfig struct {
	Store     Store
	Validator *validator.Validate
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Service maintains the supplier directory.
type Service struct {
	store    Store
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("suppliers: store is required")
	}
	v := cfg.Validator
	if v == nil {
		v = common.NewValidator()
	}
	v.RegisterStructValidation(documentRule, Input{})
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{store: cfg.Store, validate: v, logger: cfg.Logger, now: now}, nil
}

// List returns the suppliers matching q in registration order.
func (s *Service) List(ctx context.Context, q Query) ([]Supplier, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("suppliers: list: %w", err)
	}
	out := make([]Supplier, 0, len(rows))
	for _, row := range rows {
		if q.match(row) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Supplier, error) {
	row, err := s.store.Get(ctx, id)
	if err != nil {
		return Supplier{}, wrap(err)
	}
	return row, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Supplier, error) {
	if err := common.ValidateStruct(s.validate, in); err != nil {
		return Supplier{}, err
	}
	saved, err := s.store.Save(ctx, in.apply(Supplier{RegisteredAt: s.now().UTC()}))
	if err != nil {
		return Supplier{}, wrap(err)
	}
	s.logger.Info().Str("supplier_id", saved.ID).Msg("supplier created")
	return saved, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Supplier, error) {
	if err := common.ValidateStruct(s.validate, in); err != nil {
		return Supplier{}, err
	}
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Supplier{}, wrap(err)
	}
	saved, err := s.store.Save(ctx, in.apply(current))
	if err != nil {
		return Supplier{}, wrap(err)
	}
	return saved, nil
}

// Delete removes supplier id. Recorded purchases keep the denormalized name.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return wrap(err)
	}
	s.logger.Info().Str("supplier_id", id).Msg("supplier deleted")
	return nil
}

func wrap(err error) error {
	if errors.Is(err, ErrNotFound) {
		return common.NotFound("supplier not found", err)
	}
	return fmt.Errorf("suppliers: %w", err)
}
