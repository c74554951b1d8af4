package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
)

// Service orchestrates catalog queries, validation, caching and events.
type Service struct {
	store    Store
	cache    *Cache
	events   *events.Bus
	validate *validator.Validate
	logger   zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store     Store
	Cache     *Cache
	Events    *events.Bus
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// NewService constructs a catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	v := cfg.Validator
	if v == nil {
		v = common.NewValidator()
	}
	return &Service{
		store:    cfg.Store,
		cache:    cfg.Cache,
		events:   cfg.Events,
		validate: v,
		logger:   cfg.Logger,
	}, nil
}

// List returns the products whose name or code contains term, in catalog order.
func (s *Service) List(ctx context.Context, term string) ([]Product, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(rows))
	for _, p := range rows {
		if p.Matches(term) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ByCode resolves a product by its internal code, reading through the cache.
func (s *Service) ByCode(ctx context.Context, code string) (Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Product{}, common.BadRequest("code is required", nil)
	}
	key := productCodeKey(code)
	var cached Product
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("code", code).Msg("catalog cache read failed")
	}
	p, err := s.store.ByCode(ctx, code)
	if err != nil {
		return Product{}, s.wrap(err)
	}
	if err := s.cache.SetJSON(ctx, key, p); err != nil {
		s.logger.Warn().Err(err).Str("code", code).Msg("catalog cache write failed")
	}
	return p, nil
}

// ByID returns a product by identifier.
func (s *Service) ByID(ctx context.Context, id string) (Product, error) {
	p, err := s.store.ByID(ctx, id)
	if err != nil {
		return Product{}, s.wrap(err)
	}
	return p, nil
}

// Warehouses returns the warehouse reference list.
func (s *Service) Warehouses(ctx context.Context) ([]Warehouse, error) {
	var cached []Warehouse
	if ok, err := s.cache.GetJSON(ctx, warehousesKey(), &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.store.Warehouses(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, warehousesKey(), rows); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache write failed")
	}
	return rows, nil
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	p, err := s.prepare(in)
	if err != nil {
		return Product{}, err
	}
	saved, err := s.store.Save(ctx, p)
	if err != nil {
		return Product{}, s.wrap(err)
	}
	s.afterWrite(ctx, events.TopicProductSaved, saved, saved.Code)
	return saved, nil
}

// Update replaces the product identified by id.
func (s *Service) Update(ctx context.Context, id string, in ProductInput) (Product, error) {
	current, err := s.store.ByID(ctx, id)
	if err != nil {
		return Product{}, s.wrap(err)
	}
	p, err := s.prepare(in)
	if err != nil {
		return Product{}, err
	}
	p.ID = current.ID
	saved, err := s.store.Save(ctx, p)
	if err != nil {
		return Product{}, s.wrap(err)
	}
	s.afterWrite(ctx, events.TopicProductSaved, saved, current.Code, saved.Code)
	return saved, nil
}

// Delete removes a product. Recorded sales keep their own copy of name and price.
func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := s.store.ByID(ctx, id)
	if err != nil {
		return s.wrap(err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.wrap(err)
	}
	s.afterWrite(ctx, events.TopicProductDeleted, current, current.Code)
	return nil
}

func (s *Service) prepare(in ProductInput) (Product, error) {
	if err := common.ValidateStruct(s.validate, in); err != nil {
		return Product{}, err
	}
	if details := in.priceErrors(); len(details) > 0 {
		return Product{}, common.BadRequest("validation failed", details)
	}
	return in.normalize(), nil
}

func (s *Service) afterWrite(ctx context.Context, topic string, p Product, codes ...string) {
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		keys = append(keys, productCodeKey(code))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn().Err(err).Str("product_id", p.ID).Msg("catalog cache invalidation failed")
	}
	if _, err := s.events.Emit(ctx, topic, p.ID, p); err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Str("product_id", p.ID).Msg("emit catalog event")
	}
}

func (s *Service) wrap(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return common.NotFound("product not found", err)
	case errors.Is(err, ErrDuplicateCode):
		return common.NewAppError("DUPLICATE_CODE", "product code already exists", http.StatusConflict, err)
	default:
		return fmt.Errorf("catalog: %w", err)
	}
}
