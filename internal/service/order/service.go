package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
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
	"github.com/Additional-Code/bookstore/internal/identity"
	"github.com/Additional-Code/bookstore/internal/messaging"
	"github.com/Additional-Code/bookstore/internal/policy"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/bookstore/service/order")

// Repository is the persistence capability the order store depends on.
// Missing rows are signalled with entity.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context) ([]*entity.Order, error)
	Update(ctx context.Context, order *entity.Order, replaceItems bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductReader resolves a product identifier to its current price.
type ProductReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
}

// CustomerReader checks that the customer an order references exists.
type CustomerReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

// LineItemInput is one requested product+quantity pair. Quantity is a pointer
// so an absent value can be told apart from zero; non-integer values are
// rejected during validation.
type LineItemInput struct {
	Product  string
	Quantity *float64
}

// CreateInput carries a validated-by-policy customer id and the requested
// line items. A nil Items slice means the attribute was absent.
type CreateInput struct {
	Customer string
	Items    []LineItemInput
}

// UpdateInput is a partial order patch. Nil fields are left untouched; at
// least one must be present.
type UpdateInput struct {
	Items  []LineItemInput
	Status *string
}

// Service owns order validation, total computation, the status state machine,
// and per-order access checks. List-level authorization is the policy layer's
// concern (see internal/policy).
type Service struct {
	repo      Repository
	products  ProductReader
	customers CustomerReader
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Products   ProductReader
	Customers  CustomerReader
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:      p.Repository,
		products:  p.Products,
		customers: p.Customers,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Create validates the requested line items, prices them against the catalog
// at this moment, and persists a new ACTIVE order. Nothing is written unless
// every check passes.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create")
	defer span.End()

	if in.Customer == "" {
		return nil, errorbank.BadRequest("customer is required")
	}
	if in.Items == nil {
		return nil, errorbank.BadRequest("products attribute is required")
	}

	customerID, err := uuid.Parse(in.Customer)
	if err != nil {
		return nil, errorbank.NotFound("customer does not exist")
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("customer does not exist")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "customer lookup failed")
		return nil, errorbank.Internal("failed to resolve customer", errorbank.WithCause(err))
	}

	items, total, err := s.priceItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &entity.Order{
		ID:         uuid.New(),
		Status:     entity.OrderStatusActive,
		Total:      total,
		CustomerID: customerID,
		Items:      items,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("id", order.ID.String()), zap.Error(err))
	}

	s.publishEvent(ctx, EventOrderCreated, order)
	return order, nil
}

// Get returns a single order, consulting cache when available. Customers may
// only read their own orders; admins read anything.
func (s *Service) Get(ctx context.Context, rawID string, caller identity.Identity) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.String("order.id", rawID)))
	defer span.End()

	if !caller.Role.Valid() {
		return nil, errorbank.BadRequest("every user must have a valid role")
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errorbank.NotFound("order does not exist")
	}

	order, cached := s.getFromCache(ctx, id)
	if !cached {
		order, err = s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return nil, errorbank.NotFound("order does not exist")
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
		}
	}

	// Ownership applies to cached reads too.
	if err := policy.CanReadOrder(caller, order.CustomerID.String()); err != nil {
		return nil, err
	}

	if !cached {
		if err := s.storeInCache(ctx, order); err != nil {
			s.logger.Warn("orders cache write failed", zap.String("id", id.String()), zap.Error(err))
		}
	}
	return order, nil
}

// List applies the optional customer/status filters to the full order set.
// It trusts its caller to have applied policy.CanListOrders first; it is a
// filter, not a security boundary.
func (s *Service) List(ctx context.Context, f Filter) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	orders, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return f.Apply(orders), nil
}

// Update patches an order's line items and/or status. Items, when given,
// replace the stored list wholesale and the total is recomputed from current
// catalog prices; a status-only update leaves items and total untouched.
func (s *Service) Update(ctx context.Context, rawID string, caller identity.Identity, in UpdateInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.String("order.id", rawID)))
	defer span.End()

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errorbank.NotFound("order does not exist")
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("order does not exist")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := policy.CanMutateOrder(caller, order.CustomerID.String()); err != nil {
		return nil, err
	}

	if in.Items == nil && in.Status == nil {
		return nil, errorbank.BadRequest("you must provide at least a products or status attribute")
	}

	wasComplete := order.Status == entity.OrderStatusComplete
	if in.Status != nil {
		status, err := entity.ParseOrderStatus(*in.Status)
		if err != nil {
			return nil, errorbank.BadRequest("invalid status attribute")
		}
		order.Status = status
	}

	replaceItems := in.Items != nil
	if replaceItems {
		items, total, err := s.priceItems(ctx, in.Items)
		if err != nil {
			return nil, err
		}
		order.Items = items
		order.Total = total
	}

	order.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, order, replaceItems); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("order does not exist")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}

	if err := s.cache.Delete(ctx, s.cacheKey(order.ID)); err != nil {
		s.logger.Warn("orders cache invalidation failed", zap.String("id", order.ID.String()), zap.Error(err))
	}

	if !wasComplete && order.Status == entity.OrderStatusComplete {
		s.publishEvent(ctx, EventOrderCompleted, order)
	}
	return order, nil
}

// Delete removes an order owned by the caller and returns its last state.
// Deleting an id that no longer exists reports NotFound, not silent success.
func (s *Service) Delete(ctx context.Context, rawID string, caller identity.Identity) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.String("order.id", rawID)))
	defer span.End()

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errorbank.NotFound("order does not exist")
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("order does not exist")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := policy.CanMutateOrder(caller, order.CustomerID.String()); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("order does not exist")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to delete order", errorbank.WithCause(err))
	}

	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("orders cache invalidation failed", zap.String("id", id.String()), zap.Error(err))
	}
	return order, nil
}

// priceItems validates every requested line item and computes the order total
// from catalog prices at this moment. Historical totals stay stable when
// prices later change.
func (s *Service) priceItems(ctx context.Context, inputs []LineItemInput) ([]*entity.OrderItem, decimal.Decimal, error) {
	total := decimal.Zero
	items := make([]*entity.OrderItem, 0, len(inputs))

	for _, in := range inputs {
		productID, err := uuid.Parse(in.Product)
		if err != nil {
			return nil, decimal.Zero, errorbank.BadRequest("invalid product attribute")
		}

		if in.Quantity == nil {
			return nil, decimal.Zero, errorbank.BadRequest("invalid quantity attribute")
		}
		raw := *in.Quantity
		if raw != math.Trunc(raw) || raw <= 0 || raw > math.MaxInt32 {
			return nil, decimal.Zero, errorbank.BadRequest("invalid quantity attribute")
		}
		quantity := int64(raw)

		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return nil, decimal.Zero, errorbank.NotFound("product does not exist")
			}
			return nil, decimal.Zero, errorbank.Internal("failed to resolve product", errorbank.WithCause(err))
		}

		line, err := lineTotal(product.Price, quantity)
		if err != nil {
			return nil, decimal.Zero, errorbank.Internal("failed to compute total", errorbank.WithCause(err))
		}
		total, err = total.Add(line)
		if err != nil {
			return nil, decimal.Zero, errorbank.Internal("failed to compute total", errorbank.WithCause(err))
		}

		items = append(items, &entity.OrderItem{
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	return items, total, nil
}

func lineTotal(price decimal.Decimal, quantity int64) (decimal.Decimal, error) {
	qty, err := decimal.New(quantity, 0)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return price.Mul(qty)
}

func (s *Service) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("orders:%s", id)
}

func (s *Service) getFromCache(ctx context.Context, id uuid.UUID) (*entity.Order, bool) {
	if s.cache == nil {
		return nil, false
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("orders cache read failed", zap.String("id", id.String()), zap.Error(err))
		}
		return nil, false
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, false
	}
	return &order, true
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

func (s *Service) publishEvent(ctx context.Context, eventType string, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderEvent{
		Type:       eventType,
		ID:         order.ID.String(),
		CustomerID: order.CustomerID.String(),
		Status:     string(order.Status),
		Total:      order.Total.String(),
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%s", order.ID)), payload); err != nil {
		s.logger.Error("publish order event", zap.String("type", eventType), zap.Error(err))
	}
}
