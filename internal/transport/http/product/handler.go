package product

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bookstore/internal/auth"
	"github.com/Additional-Code/bookstore/internal/dto"
	"github.com/Additional-Code/bookstore/internal/presentation/http/response"
	service "github.com/Additional-Code/bookstore/internal/service/product"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bookstore/transport/http/product")

// Handler exposes catalog endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a product Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. Reads are public; any
// catalog mutation requires an admin token.
func Register(e *echo.Echo, h *Handler, tokens *auth.TokenManager) {
	g := e.Group("/products")
	g.GET("", h.search)
	g.GET("/:id", h.getByID)

	admin := g.Group("", auth.Middleware(tokens), auth.RequireAdmin())
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

func (h *Handler) search(c echo.Context) error {
	b := response.New(c)

	// Non-numeric price bounds are ignored rather than rejected.
	in := service.SearchInput{Query: c.QueryParam("q")}
	if raw := c.QueryParam("min_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			in.MinPrice = &v
		}
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			in.MaxPrice = &v
		}
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.search")
	defer span.End()

	products, err := h.svc.Search(ctx, in)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProductResponses(products)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "products.getByID",
		trace.WithAttributes(attribute.String("product.id", c.Param("id"))))
	defer span.End()

	product, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProductResponse(product)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CreateProductPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.create")
	defer span.End()

	product, err := h.svc.Create(ctx, service.CreateInput{Name: payload.Name, Price: payload.Price})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewProductResponse(product)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	var payload dto.UpdateProductPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.update",
		trace.WithAttributes(attribute.String("product.id", c.Param("id"))))
	defer span.End()

	product, err := h.svc.Update(ctx, c.Param("id"), service.UpdateInput{Name: payload.Name, Price: payload.Price})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProductResponse(product)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "products.delete",
		trace.WithAttributes(attribute.String("product.id", c.Param("id"))))
	defer span.End()

	product, err := h.svc.Delete(ctx, c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProductResponse(product)).Build()
}
