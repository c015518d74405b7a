package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/bookstore/internal/cache"
	"github.com/Additional-Code/bookstore/internal/config"
	"github.com/Additional-Code/bookstore/internal/entity"
	"github.com/Additional-Code/bookstore/internal/identity"
	"github.com/Additional-Code/bookstore/internal/messaging"
	"github.com/Additional-Code/bookstore/internal/service/order"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

// In-memory stand-ins for the persistence and lookup capabilities, so the
// store logic is exercised without a database or token service.

type fakeRepo struct {
	orders map[uuid.UUID]*entity.Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[uuid.UUID]*entity.Order)}
}

func (f *fakeRepo) Create(_ context.Context, o *entity.Order) error {
	f.orders[o.ID] = o
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := *o
	clone.Items = append([]*entity.OrderItem(nil), o.Items...)
	return &clone, nil
}

func (f *fakeRepo) List(_ context.Context) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, o *entity.Order, replaceItems bool) error {
	stored, ok := f.orders[o.ID]
	if !ok {
		return entity.ErrNotFound
	}
	stored.Status = o.Status
	stored.Total = o.Total
	stored.UpdatedAt = o.UpdatedAt
	if replaceItems {
		stored.Items = o.Items
	}
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.orders[id]; !ok {
		return entity.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

type fakeProducts struct {
	products map[uuid.UUID]*entity.Product
}

func (f *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return p, nil
}

type fakeCustomers struct {
	users map[uuid.UUID]*entity.User
}

func (f *fakeCustomers) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return u, nil
}

type missCache struct{}

func (missCache) Get(context.Context, string) ([]byte, error) { return nil, cache.ErrCacheMiss }
func (missCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (missCache) Delete(context.Context, string) error { return nil }

type capturePublisher struct {
	keys   []string
	values [][]byte
}

func (p *capturePublisher) Publish(_ context.Context, key, value []byte) error {
	p.keys = append(p.keys, string(key))
	p.values = append(p.values, value)
	return nil
}

func (p *capturePublisher) Consume(ctx context.Context, _ messaging.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (p *capturePublisher) Topic() string { return "bookstore.orders" }

type fixture struct {
	svc       *order.Service
	repo      *fakeRepo
	publisher *capturePublisher
	alice     *entity.User
	bob       *entity.User
	book      *entity.Product
	essays    *entity.Product
}

func qty(v float64) *float64 { return &v }

func price(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.MustParse(s)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	alice := &entity.User{ID: uuid.New(), Username: "alice", Role: identity.RoleCustomer}
	bob := &entity.User{ID: uuid.New(), Username: "bob", Role: identity.RoleCustomer}
	book := &entity.Product{ID: uuid.New(), Name: "Eloquent JavaScript", Price: price(t, "20.99")}
	essays := &entity.Product{ID: uuid.New(), Name: "JavaScript: The Good Parts", Price: price(t, "13.69")}

	repo := newFakeRepo()
	publisher := &capturePublisher{}

	cfg := config.Config{}
	cfg.Cache.DefaultTTL = time.Minute
	cfg.Messaging.Enabled = true
	cfg.Messaging.Kafka.Topic = "bookstore.orders"

	svc := order.NewService(order.Params{
		Repository: repo,
		Products:   &fakeProducts{products: map[uuid.UUID]*entity.Product{book.ID: book, essays.ID: essays}},
		Customers:  &fakeCustomers{users: map[uuid.UUID]*entity.User{alice.ID: alice, bob.ID: bob}},
		Cache:      missCache{},
		Config:     cfg,
		Logger:     zap.NewNop(),
		Publisher:  publisher,
	})

	return &fixture{svc: svc, repo: repo, publisher: publisher, alice: alice, bob: bob, book: book, essays: essays}
}

func (f *fixture) asCustomer(u *entity.User) identity.Identity {
	return identity.Identity{Subject: u.ID.String(), Role: identity.RoleCustomer}
}

func (f *fixture) createOrder(t *testing.T, owner *entity.User) *entity.Order {
	t.Helper()
	created, err := f.svc.Create(context.Background(), order.CreateInput{
		Customer: owner.ID.String(),
		Items: []order.LineItemInput{
			{Product: f.book.ID.String(), Quantity: qty(2)},
			{Product: f.essays.ID.String(), Quantity: qty(1)},
		},
	})
	require.NoError(t, err)
	return created
}

func TestCreateComputesTotalFromCurrentPrices(t *testing.T) {
	f := newFixture(t)

	created := f.createOrder(t, f.alice)

	assert.Equal(t, "55.67", created.Total.String())
	assert.Equal(t, entity.OrderStatusActive, created.Status)
	assert.Equal(t, f.alice.ID, created.CustomerID)
	require.Len(t, created.Items, 2)
	assert.Equal(t, f.book.ID, created.Items[0].ProductID)
	assert.Equal(t, int64(2), created.Items[0].Quantity)
	assert.NotEqual(t, uuid.Nil, created.ID)

	// Catalog price changes must not touch the stored total.
	f.book.Price = price(t, "99.99")
	got, err := f.svc.Get(context.Background(), created.ID.String(), f.asCustomer(f.alice))
	require.NoError(t, err)
	assert.Equal(t, "55.67", got.Total.String())
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		input    order.CreateInput
		wantKind errorbank.Kind
	}{
		{
			name:     "missing customer",
			input:    order.CreateInput{Items: []order.LineItemInput{}},
			wantKind: errorbank.KindBadRequest,
		},
		{
			name:     "missing products attribute",
			input:    order.CreateInput{Customer: f.alice.ID.String()},
			wantKind: errorbank.KindBadRequest,
		},
		{
			name:     "malformed customer id",
			input:    order.CreateInput{Customer: "not-an-id", Items: []order.LineItemInput{}},
			wantKind: errorbank.KindNotFound,
		},
		{
			name:     "unknown customer",
			input:    order.CreateInput{Customer: uuid.NewString(), Items: []order.LineItemInput{}},
			wantKind: errorbank.KindNotFound,
		},
		{
			name: "malformed product id",
			input: order.CreateInput{Customer: f.alice.ID.String(), Items: []order.LineItemInput{
				{Product: "not-an-id", Quantity: qty(1)},
			}},
			wantKind: errorbank.KindBadRequest,
		},
		{
			name: "unknown product",
			input: order.CreateInput{Customer: f.alice.ID.String(), Items: []order.LineItemInput{
				{Product: uuid.NewString(), Quantity: qty(1)},
			}},
			wantKind: errorbank.KindNotFound,
		},
		{
			name: "missing quantity",
			input: order.CreateInput{Customer: f.alice.ID.String(), Items: []order.LineItemInput{
				{Product: f.book.ID.String()},
			}},
			wantKind: errorbank.KindBadRequest,
		},
		{
			name: "fractional quantity",
			input: order.CreateInput{Customer: f.alice.ID.String(), Items: []order.LineItemInput{
				{Product: f.book.ID.String(), Quantity: qty(1.5)},
			}},
			wantKind: errorbank.KindBadRequest,
		},
		{
			name: "zero quantity",
			input: order.CreateInput{Customer: f.alice.ID.String(), Items: []order.LineItemInput{
				{Product: f.book.ID.String(), Quantity: qty(0)},
			}},
			wantKind: errorbank.KindBadRequest,
		},
		{
			name: "negative quantity",
			input: order.CreateInput{Customer: f.alice.ID.String(), Items: []order.LineItemInput{
				{Product: f.book.ID.String(), Quantity: qty(-3)},
			}},
			wantKind: errorbank.KindBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), test.input)
			assert.True(t, errorbank.IsKind(err, test.wantKind), "got %v", err)
		})
	}

	// Every failure above happened before any write.
	assert.Empty(t, f.repo.orders)
	assert.Empty(t, f.publisher.keys)
}

func TestGetAuthorization(t *testing.T) {
	f := newFixture(t)
	created := f.createOrder(t, f.bob)
	ctx := context.Background()

	t.Run("invalid role", func(t *testing.T) {
		_, err := f.svc.Get(ctx, created.ID.String(), identity.Identity{Subject: f.bob.ID.String(), Role: "MANAGER"})
		assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := f.svc.Get(ctx, uuid.NewString(), f.asCustomer(f.bob))
		assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
	})

	t.Run("other customer is forbidden", func(t *testing.T) {
		_, err := f.svc.Get(ctx, created.ID.String(), f.asCustomer(f.alice))
		assert.True(t, errorbank.IsKind(err, errorbank.KindForbidden))
	})

	t.Run("admin reads regardless of owner", func(t *testing.T) {
		got, err := f.svc.Get(ctx, created.ID.String(), identity.Identity{Subject: uuid.NewString(), Role: identity.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})
}

func TestUpdateStatusOnlyKeepsTotalAndItems(t *testing.T) {
	f := newFixture(t)
	created := f.createOrder(t, f.alice)
	ctx := context.Background()

	status := "COMPLETE"
	updated, err := f.svc.Update(ctx, created.ID.String(), f.asCustomer(f.alice), order.UpdateInput{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusComplete, updated.Status)
	assert.Equal(t, "55.67", updated.Total.String())
	assert.Len(t, updated.Items, 2)
}

func TestUpdateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	created := f.createOrder(t, f.alice)
	ctx := context.Background()
	owner := f.asCustomer(f.alice)

	t.Run("empty patch", func(t *testing.T) {
		_, err := f.svc.Update(ctx, created.ID.String(), owner, order.UpdateInput{})
		assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
	})

	t.Run("unrecognized status", func(t *testing.T) {
		status := "SHIPPED"
		_, err := f.svc.Update(ctx, created.ID.String(), owner, order.UpdateInput{Status: &status})
		assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
	})

	t.Run("unknown order", func(t *testing.T) {
		status := "COMPLETE"
		_, err := f.svc.Update(ctx, uuid.NewString(), owner, order.UpdateInput{Status: &status})
		assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
	})

	t.Run("fractional quantity on update", func(t *testing.T) {
		_, err := f.svc.Update(ctx, created.ID.String(), owner, order.UpdateInput{
			Items: []order.LineItemInput{{Product: f.book.ID.String(), Quantity: qty(2.5)}},
		})
		assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
	})
}

func TestUpdateItemsReplacesListAndRecomputesTotal(t *testing.T) {
	f := newFixture(t)
	created := f.createOrder(t, f.alice)
	ctx := context.Background()

	updated, err := f.svc.Update(ctx, created.ID.String(), f.asCustomer(f.alice), order.UpdateInput{
		Items: []order.LineItemInput{{Product: f.essays.ID.String(), Quantity: qty(3)}},
	})
	require.NoError(t, err)

	assert.Equal(t, "41.07", updated.Total.String())
	require.Len(t, updated.Items, 1)
	assert.Equal(t, f.essays.ID, updated.Items[0].ProductID)
	// Replacement, not merge.
	assert.Equal(t, entity.OrderStatusActive, updated.Status)
}

// Mutation is owner-exclusive; even admins are turned away on another
// customer's order.
func TestMutationOwnership(t *testing.T) {
	f := newFixture(t)
	created := f.createOrder(t, f.bob)
	ctx := context.Background()
	admin := identity.Identity{Subject: uuid.NewString(), Role: identity.RoleAdmin}
	status := "COMPLETE"

	_, err := f.svc.Update(ctx, created.ID.String(), f.asCustomer(f.alice), order.UpdateInput{Status: &status})
	assert.True(t, errorbank.IsKind(err, errorbank.KindForbidden))

	_, err = f.svc.Update(ctx, created.ID.String(), admin, order.UpdateInput{Status: &status})
	assert.True(t, errorbank.IsKind(err, errorbank.KindForbidden))

	_, err = f.svc.Delete(ctx, created.ID.String(), f.asCustomer(f.alice))
	assert.True(t, errorbank.IsKind(err, errorbank.KindForbidden))

	_, err = f.svc.Delete(ctx, created.ID.String(), admin)
	assert.True(t, errorbank.IsKind(err, errorbank.KindForbidden))
}

func TestDeleteReturnsLastStateAndIsNotIdempotent(t *testing.T) {
	f := newFixture(t)
	created := f.createOrder(t, f.alice)
	ctx := context.Background()
	owner := f.asCustomer(f.alice)

	deleted, err := f.svc.Delete(ctx, created.ID.String(), owner)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, "55.67", deleted.Total.String())

	_, err = f.svc.Delete(ctx, created.ID.String(), owner)
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}

func TestListAppliesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createOrder(t, f.alice)
	f.createOrder(t, f.bob)

	status := "COMPLETE"
	_, err := f.svc.Update(ctx, first.ID.String(), f.asCustomer(f.alice), order.UpdateInput{Status: &status})
	require.NoError(t, err)

	active, err := f.svc.List(ctx, order.Filter{Status: "ACTIVE"})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	nothing, err := f.svc.List(ctx, order.Filter{Status: "no-such-status"})
	require.NoError(t, err)
	assert.Empty(t, nothing)

	mine, err := f.svc.List(ctx, order.Filter{Customer: f.alice.ID.String(), Status: "COMPLETE"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)
}

func TestLifecycleEventsArePublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.createOrder(t, f.alice)
	require.Len(t, f.publisher.values, 1)

	status := "COMPLETE"
	_, err := f.svc.Update(ctx, created.ID.String(), f.asCustomer(f.alice), order.UpdateInput{Status: &status})
	require.NoError(t, err)
	require.Len(t, f.publisher.values, 2)

	// Completing an already complete order emits nothing new.
	_, err = f.svc.Update(ctx, created.ID.String(), f.asCustomer(f.alice), order.UpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Len(t, f.publisher.values, 2)
}
