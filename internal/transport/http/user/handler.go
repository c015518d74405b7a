package user

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bookstore/internal/auth"
	"github.com/Additional-Code/bookstore/internal/dto"
	"github.com/Additional-Code/bookstore/internal/identity"
	"github.com/Additional-Code/bookstore/internal/presentation/http/response"
	service "github.com/Additional-Code/bookstore/internal/service/user"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bookstore/transport/http/user")

// Handler exposes account endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a user Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. Listing and provisioning
// accounts is admin-only; single-account routes allow the account owner too.
func Register(e *echo.Echo, h *Handler, tokens *auth.TokenManager) {
	g := e.Group("/users", auth.Middleware(tokens))
	g.GET("/:id", h.getByID)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)

	admin := g.Group("", auth.RequireAdmin())
	admin.GET("", h.list)
	admin.POST("", h.create)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "users.list")
	defer span.End()

	users, err := h.svc.List(ctx, service.ListInput{
		Username: c.QueryParam("username"),
		Role:     c.QueryParam("role"),
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewUserResponses(users)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CreateUserPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.create")
	defer span.End()

	user, err := h.svc.Create(ctx, service.CreateInput{
		Username: payload.Username,
		Password: payload.Password,
		Role:     payload.Role,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewUserResponse(user)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return b.WithError(errorbank.Forbidden("a valid bearer token is required")).Build()
	}
	if err := selfOrAdmin(caller, c.Param("id")); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.getByID",
		trace.WithAttributes(attribute.String("user.id", c.Param("id"))))
	defer span.End()

	user, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewUserResponse(user)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return b.WithError(errorbank.Forbidden("a valid bearer token is required")).Build()
	}
	if err := selfOrAdmin(caller, c.Param("id")); err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.UpdateUserPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if payload.Role != nil && caller.Role != identity.RoleAdmin {
		return b.WithError(errorbank.Forbidden("only administrators may change roles")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.update",
		trace.WithAttributes(attribute.String("user.id", c.Param("id"))))
	defer span.End()

	user, err := h.svc.Update(ctx, c.Param("id"), service.UpdateInput{
		Password: payload.Password,
		Role:     payload.Role,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewUserResponse(user)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return b.WithError(errorbank.Forbidden("a valid bearer token is required")).Build()
	}
	if err := selfOrAdmin(caller, c.Param("id")); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.delete",
		trace.WithAttributes(attribute.String("user.id", c.Param("id"))))
	defer span.End()

	user, err := h.svc.Delete(ctx, c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewUserResponse(user)).Build()
}

func selfOrAdmin(caller identity.Identity, targetID string) error {
	if caller.Role == identity.RoleAdmin || caller.Subject == targetID {
		return nil
	}
	return errorbank.Forbidden("you may only access your own account")
}
