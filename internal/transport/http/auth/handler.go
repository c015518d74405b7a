package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/bookstore/internal/dto"
	"github.com/Additional-Code/bookstore/internal/presentation/http/response"
	service "github.com/Additional-Code/bookstore/internal/service/auth"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bookstore/transport/http/auth")

// Handler exposes registration and login over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an auth Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. Both routes are public.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
}

func (h *Handler) register(c echo.Context) error {
	b := response.New(c)

	var payload dto.CredentialsPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.register")
	defer span.End()

	user, err := h.svc.Register(ctx, service.Credentials{
		Username: payload.Username,
		Password: payload.Password,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewUserResponse(user)).Build()
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload dto.CredentialsPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.login")
	defer span.End()

	token, err := h.svc.Login(ctx, service.Credentials{
		Username: payload.Username,
		Password: payload.Password,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.TokenResponse{Token: token}).Build()
}
