package order

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/bookstore/internal/auth"
	"github.com/Additional-Code/bookstore/internal/cache"
	"github.com/Additional-Code/bookstore/internal/config"
	"github.com/Additional-Code/bookstore/internal/entity"
	"github.com/Additional-Code/bookstore/internal/identity"
	httpserver "github.com/Additional-Code/bookstore/internal/server/http"
	service "github.com/Additional-Code/bookstore/internal/service/order"
)

type fakeRepo struct {
	orders map[uuid.UUID]*entity.Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[uuid.UUID]*entity.Order)}
}

func (r *fakeRepo) Create(_ context.Context, order *entity.Order) error {
	r.orders[order.ID] = order
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeRepo) List(_ context.Context) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, order)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, order *entity.Order, _ bool) error {
	if _, ok := r.orders[order.ID]; !ok {
		return entity.ErrNotFound
	}
	r.orders[order.ID] = order
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.orders[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

type fakeProducts struct {
	products map[uuid.UUID]*entity.Product
}

func (r *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return product, nil
}

type fakeCustomers struct {
	customers map[uuid.UUID]*entity.User
}

func (r *fakeCustomers) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	customer, ok := r.customers[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return customer, nil
}

type missCache struct{}

func (missCache) Get(context.Context, string) ([]byte, error) { return nil, cache.ErrCacheMiss }

func (missCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (missCache) Delete(context.Context, string) error { return nil }

type testEnv struct {
	echo   *echo.Echo
	repo   *fakeRepo
	tokens *auth.TokenManager
	alice  entity.User
	bob    entity.User
	admin  entity.User
	book   entity.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{
		Auth:  config.Auth{Secret: "test-secret", TokenTTL: time.Hour},
		Cache: config.Cache{DefaultTTL: time.Minute},
	}

	alice := entity.User{ID: uuid.New(), Username: "alice", Role: identity.RoleCustomer}
	bob := entity.User{ID: uuid.New(), Username: "bob", Role: identity.RoleCustomer}
	admin := entity.User{ID: uuid.New(), Username: "root", Role: identity.RoleAdmin}
	book := entity.Product{ID: uuid.New(), Name: "Eloquent JavaScript", Price: decimal.MustParse("20.99")}

	repo := newFakeRepo()
	svc := service.NewService(service.Params{
		Repository: repo,
		Products:   &fakeProducts{products: map[uuid.UUID]*entity.Product{book.ID: &book}},
		Customers: &fakeCustomers{customers: map[uuid.UUID]*entity.User{
			alice.ID: &alice,
			bob.ID:   &bob,
			admin.ID: &admin,
		}},
		Cache:     missCache{},
		Config:    cfg,
		Logger:    zap.NewNop(),
		Publisher: nil,
	})

	tokens := auth.NewTokenManager(cfg)
	e := httpserver.NewEcho(cfg, nil, zap.NewNop())
	Register(e, NewHandler(svc), tokens)

	return &testEnv{echo: e, repo: repo, tokens: tokens, alice: alice, bob: bob, admin: admin, book: book}
}

func (env *testEnv) token(t *testing.T, user entity.User) string {
	t.Helper()
	token, err := env.tokens.Issue(identity.Identity{Subject: user.ID.String(), Role: user.Role})
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) seedOrder(t *testing.T, owner entity.User) *entity.Order {
	t.Helper()
	order := &entity.Order{
		ID:         uuid.New(),
		Status:     entity.OrderStatusActive,
		Total:      decimal.MustParse("20.99"),
		CustomerID: owner.ID,
		Items:      []*entity.OrderItem{{ProductID: env.book.ID, Quantity: 1}},
	}
	require.NoError(t, env.repo.Create(context.Background(), order))
	return order
}

func quantity(v float64) *float64 { return &v }

func TestOrderRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/orders/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/orders/"+uuid.NewString(), "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetOrderStatusCodes(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, env.alice)

	rec := env.do(t, http.MethodGet, "/orders/"+order.ID.String(), env.token(t, env.alice), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/orders/"+order.ID.String(), env.token(t, env.bob), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/orders/"+order.ID.String(), env.token(t, env.admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/orders/"+uuid.NewString(), env.token(t, env.alice), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrderStatusCodes(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]any{
		"products": []map[string]any{{"product": env.book.ID.String(), "quantity": 2}},
	}
	rec := env.do(t, http.MethodPost, "/orders", env.token(t, env.alice), payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data struct {
			Customer string  `json:"customer"`
			Total    float64 `json:"total"`
			Status   string  `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, env.alice.ID.String(), body.Data.Customer)
	assert.InDelta(t, 41.98, body.Data.Total, 0.001)
	assert.Equal(t, "ACTIVE", body.Data.Status)

	badQuantity := map[string]any{
		"products": []map[string]any{{"product": env.book.ID.String(), "quantity": 1.5}},
	}
	rec = env.do(t, http.MethodPost, "/orders", env.token(t, env.alice), badQuantity)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unknownProduct := map[string]any{
		"products": []map[string]any{{"product": uuid.NewString(), "quantity": 1}},
	}
	rec = env.do(t, http.MethodPost, "/orders", env.token(t, env.alice), unknownProduct)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	missingProducts := map[string]any{}
	rec = env.do(t, http.MethodPost, "/orders", env.token(t, env.alice), missingProducts)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOnBehalf(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]any{
		"customer": env.bob.ID.String(),
		"products": []map[string]any{{"product": env.book.ID.String(), "quantity": 1}},
	}

	rec := env.do(t, http.MethodPost, "/orders", env.token(t, env.admin), payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Data struct {
			Customer string `json:"customer"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, env.bob.ID.String(), body.Data.Customer)

	// A customer-supplied customer attribute is ignored, not an error.
	rec = env.do(t, http.MethodPost, "/orders", env.token(t, env.alice), payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, env.alice.ID.String(), body.Data.Customer)
}

func TestMutationStatusCodes(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, env.alice)
	patch := map[string]any{"status": "COMPLETE"}

	rec := env.do(t, http.MethodPut, "/orders/"+order.ID.String(), env.token(t, env.admin), patch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/orders/"+order.ID.String(), env.token(t, env.bob), patch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/orders/"+order.ID.String(), env.token(t, env.alice), patch)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/orders/"+order.ID.String(), env.token(t, env.admin), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/orders/"+order.ID.String(), env.token(t, env.alice), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/orders/"+order.ID.String(), env.token(t, env.alice), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersAuthorization(t *testing.T) {
	env := newTestEnv(t)
	env.seedOrder(t, env.alice)
	env.seedOrder(t, env.bob)

	rec := env.do(t, http.MethodGet, "/orders?customer="+env.alice.ID.String(), env.token(t, env.alice), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/orders", env.token(t, env.alice), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/orders?customer="+env.bob.ID.String(), env.token(t, env.alice), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/orders", env.token(t, env.admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
