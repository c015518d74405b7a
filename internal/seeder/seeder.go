package seeder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bookstore/internal/auth"
	"github.com/Additional-Code/bookstore/internal/database"
	"github.com/Additional-Code/bookstore/internal/entity"
	"github.com/Additional-Code/bookstore/internal/identity"
)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// Module provides the seeder to the Fx graph.
var Module = fx.Provide(New)

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// All seeds users, products, and sample orders in dependency order.
func (s *Seeder) All(ctx context.Context) error {
	if err := s.Users(ctx); err != nil {
		return err
	}
	if err := s.Products(ctx); err != nil {
		return err
	}
	return s.Orders(ctx)
}

// Users seeds an admin and a customer account if they are missing.
func (s *Seeder) Users(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []struct {
		username string
		password string
		role     identity.Role
	}{
		{username: "admin", password: "admin", role: identity.RoleAdmin},
		{username: "alice", password: "alice", role: identity.RoleCustomer},
	}

	for _, sample := range samples {
		hash, err := auth.HashPassword(sample.password)
		if err != nil {
			return err
		}
		user := entity.User{
			ID:           uuid.New(),
			Username:     sample.username,
			PasswordHash: hash,
			Role:         sample.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := s.db.NewInsert().Model(&user).
			On("CONFLICT (username) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded users", zap.Int("count", len(samples)))
	}
	return nil
}

// Products seeds the starter book catalog if it is missing.
func (s *Seeder) Products(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []struct {
		name  string
		price string
	}{
		{name: "Eloquent JavaScript", price: "20.99"},
		{name: "JavaScript: The Good Parts", price: "13.69"},
		{name: "The Pragmatic Programmer", price: "39.90"},
	}

	for _, sample := range samples {
		product := entity.Product{
			ID:        uuid.New(),
			Name:      sample.name,
			Price:     decimal.MustParse(sample.price),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.db.NewInsert().Model(&product).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded products", zap.Int("count", len(samples)))
	}
	return nil
}

// Orders seeds one example order per seeded customer, skipping customers
// that already have orders.
func (s *Seeder) Orders(ctx context.Context) error {
	var customer entity.User
	err := s.db.NewSelect().Model(&customer).
		Where("username = ?", "alice").
		Scan(ctx)
	if err != nil {
		return err
	}

	existing, err := s.db.NewSelect().Model((*entity.Order)(nil)).
		Where("customer_id = ?", customer.ID).
		Count(ctx)
	if err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	var products []*entity.Product
	if err := s.db.NewSelect().Model(&products).
		Order("name ASC").
		Limit(2).
		Scan(ctx); err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}

	now := time.Now().UTC()
	total := decimal.Zero
	order := entity.Order{
		ID:         uuid.New(),
		Status:     entity.OrderStatusActive,
		CustomerID: customer.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	items := make([]*entity.OrderItem, 0, len(products))
	for _, product := range products {
		total, err = total.Add(product.Price)
		if err != nil {
			return err
		}
		items = append(items, &entity.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  1,
		})
	}
	order.Total = total

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&order).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
			return err
		}
		if s.logger != nil {
			s.logger.Info("seeded orders", zap.Int("count", 1))
		}
		return nil
	})
}
