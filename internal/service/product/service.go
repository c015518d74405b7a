package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bookstore/internal/cache"
	"github.com/Additional-Code/bookstore/internal/config"
	"github.com/Additional-Code/bookstore/internal/entity"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/bookstore/service/product")

// Repository is the persistence capability for catalog products.
type Repository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateInput carries a requested catalog entry. Price is a pointer so an
// absent value can be told apart from zero.
type CreateInput struct {
	Name  string
	Price *float64
}

// UpdateInput is a partial product patch; at least one field must be present.
type UpdateInput struct {
	Name  *string
	Price *float64
}

// SearchInput narrows the catalog listing. All filters are optional.
type SearchInput struct {
	Query    string
	MinPrice *float64
	MaxPrice *float64
}

// Service encapsulates catalog business logic.
type Service struct {
	repo     Repository
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:     p.Repository,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
	}
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Create")
	defer span.End()

	price, err := validatePrice(in.Name, in.Price)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:        uuid.New(),
		Name:      in.Name,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create product", errorbank.WithCause(err))
	}
	return product, nil
}

// Get retrieves a product by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, rawID string) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Get", trace.WithAttributes(attribute.String("product.id", rawID)))
	defer span.End()

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errorbank.NotFound("there is no product with the given ID")
	}

	if product, ok := s.getFromCache(ctx, id); ok {
		return product, nil
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("there is no product with the given ID")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, product); err != nil {
		s.logger.Warn("products cache write failed", zap.String("id", id.String()), zap.Error(err))
	}
	return product, nil
}

// Search lists products matching the optional name query and price bounds.
// An empty result is a valid answer, never an error.
func (s *Service) Search(ctx context.Context, in SearchInput) ([]*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Search")
	defer span.End()

	products, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list products", errorbank.WithCause(err))
	}

	matched := make([]*entity.Product, 0, len(products))
	for _, product := range products {
		if in.Query != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(in.Query)) {
			continue
		}
		if in.MinPrice != nil && !priceAtLeast(product.Price, *in.MinPrice) {
			continue
		}
		if in.MaxPrice != nil && !priceAtMost(product.Price, *in.MaxPrice) {
			continue
		}
		matched = append(matched, product)
	}
	return matched, nil
}

// Update patches name and/or price on an existing product.
func (s *Service) Update(ctx context.Context, rawID string, in UpdateInput) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Update", trace.WithAttributes(attribute.String("product.id", rawID)))
	defer span.End()

	if in.Name == nil && in.Price == nil {
		return nil, errorbank.BadRequest("you must provide at least a name or price attribute")
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errorbank.NotFound("there is no product with the given ID")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("there is no product with the given ID")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, errorbank.BadRequest("every product must have a non-empty name")
		}
		product.Name = *in.Name
	}
	if in.Price != nil {
		price, err := validatePrice(product.Name, in.Price)
		if err != nil {
			return nil, err
		}
		product.Price = price
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("there is no product with the given ID")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update product", errorbank.WithCause(err))
	}

	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("products cache invalidation failed", zap.String("id", id.String()), zap.Error(err))
	}
	return product, nil
}

// Delete removes a product and returns its last state.
func (s *Service) Delete(ctx context.Context, rawID string) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Delete", trace.WithAttributes(attribute.String("product.id", rawID)))
	defer span.End()

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errorbank.NotFound("there is no product with the given ID")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("there is no product with the given ID")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("there is no product with the given ID")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to delete product", errorbank.WithCause(err))
	}

	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("products cache invalidation failed", zap.String("id", id.String()), zap.Error(err))
	}
	return product, nil
}

func validatePrice(name string, raw *float64) (decimal.Decimal, error) {
	if name == "" {
		return decimal.Decimal{}, errorbank.BadRequest("every product must have a non-empty name")
	}
	if raw == nil || *raw < 0 {
		return decimal.Decimal{}, errorbank.BadRequest("every product must have a non-negative price attribute")
	}
	price, err := decimal.NewFromFloat64(*raw)
	if err != nil {
		return decimal.Decimal{}, errorbank.BadRequest("every product must have a non-negative price attribute")
	}
	return price, nil
}

func priceAtLeast(price decimal.Decimal, bound float64) bool {
	b, err := decimal.NewFromFloat64(bound)
	if err != nil {
		return true
	}
	return price.Cmp(b) >= 0
}

func priceAtMost(price decimal.Decimal, bound float64) bool {
	b, err := decimal.NewFromFloat64(bound)
	if err != nil {
		return true
	}
	return price.Cmp(b) <= 0
}

func (s *Service) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("products:%s", id)
}

func (s *Service) getFromCache(ctx context.Context, id uuid.UUID) (*entity.Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("products cache read failed", zap.String("id", id.String()), zap.Error(err))
		}
		return nil, false
	}
	var product entity.Product
	if err := json.Unmarshal(bytes, &product); err != nil {
		return nil, false
	}
	return &product, true
}

func (s *Service) storeInCache(ctx context.Context, product *entity.Product) error {
	if s.cache == nil || product == nil {
		return nil
	}
	bytes, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(product.ID), bytes, s.cacheTTL)
}
