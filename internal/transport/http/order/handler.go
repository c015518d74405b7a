package order

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bookstore/internal/auth"
	"github.com/Additional-Code/bookstore/internal/dto"
	"github.com/Additional-Code/bookstore/internal/policy"
	"github.com/Additional-Code/bookstore/internal/presentation/http/response"
	service "github.com/Additional-Code/bookstore/internal/service/order"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bookstore/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. All order routes require
// an authenticated caller.
func Register(e *echo.Echo, h *Handler, tokens *auth.TokenManager) {
	g := e.Group("/orders", auth.Middleware(tokens))
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.getByID)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return b.WithError(errorbank.Forbidden("a valid bearer token is required")).Build()
	}

	filter := service.Filter{
		Customer: c.QueryParam("customer"),
		Status:   c.QueryParam("status"),
	}
	if err := policy.CanListOrders(caller, filter.Customer); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx, filter)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponses(orders)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return b.WithError(errorbank.Forbidden("a valid bearer token is required")).Build()
	}

	var payload dto.CreateOrderPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	customer, err := policy.CustomerForCreate(caller, payload.Customer)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create",
		trace.WithAttributes(attribute.String("order.customer", customer)))
	defer span.End()

	order, err := h.svc.Create(ctx, service.CreateInput{
		Customer: customer,
		Items:    toLineItems(payload.Products),
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return b.WithError(errorbank.Forbidden("a valid bearer token is required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID",
		trace.WithAttributes(attribute.String("order.id", c.Param("id"))))
	defer span.End()

	order, err := h.svc.Get(ctx, c.Param("id"), caller)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return b.WithError(errorbank.Forbidden("a valid bearer token is required")).Build()
	}

	var payload dto.UpdateOrderPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.update",
		trace.WithAttributes(attribute.String("order.id", c.Param("id"))))
	defer span.End()

	order, err := h.svc.Update(ctx, c.Param("id"), caller, service.UpdateInput{
		Items:  toLineItems(payload.Products),
		Status: payload.Status,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return b.WithError(errorbank.Forbidden("a valid bearer token is required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.delete",
		trace.WithAttributes(attribute.String("order.id", c.Param("id"))))
	defer span.End()

	order, err := h.svc.Delete(ctx, c.Param("id"), caller)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func toLineItems(payloads []dto.OrderItemPayload) []service.LineItemInput {
	if payloads == nil {
		return nil
	}
	items := make([]service.LineItemInput, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, service.LineItemInput{Product: p.Product, Quantity: p.Quantity})
	}
	return items
}
