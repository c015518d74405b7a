package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bookstore/internal/auth"
	"github.com/Additional-Code/bookstore/internal/entity"
	"github.com/Additional-Code/bookstore/internal/identity"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/bookstore/service/auth")

// UserRepository is the slice of user persistence the auth flow needs.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

// Credentials carries a username and plaintext password from a client.
type Credentials struct {
	Username string
	Password string
}

// Service implements account registration and login.
type Service struct {
	users  UserRepository
	tokens *auth.TokenManager
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Users  UserRepository
	Tokens *auth.TokenManager
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{users: p.Users, tokens: p.Tokens, logger: p.Logger}
}

// Register creates a new customer account. Self-service registration never
// grants the admin role.
func (s *Service) Register(ctx context.Context, creds Credentials) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if creds.Username == "" || creds.Password == "" {
		return nil, errorbank.BadRequest("username and password are required")
	}

	if _, err := s.users.GetByUsername(ctx, creds.Username); err == nil {
		return nil, errorbank.Conflict("username is already taken")
	} else if !errors.Is(err, entity.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to check username", errorbank.WithCause(err))
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		return nil, errorbank.Internal("failed to hash password", errorbank.WithCause(err))
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New(),
		Username:     creds.Username,
		PasswordHash: hash,
		Role:         identity.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create user", errorbank.WithCause(err))
	}

	s.logger.Info("user registered", zap.String("id", user.ID.String()), zap.String("username", user.Username))
	return user, nil
}

// Login checks credentials and returns a signed bearer token. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, creds Credentials) (string, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if creds.Username == "" || creds.Password == "" {
		return "", errorbank.BadRequest("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return "", errorbank.Forbidden("invalid username or password")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return "", errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}

	if !auth.CheckPassword(user.PasswordHash, creds.Password) {
		return "", errorbank.Forbidden("invalid username or password")
	}

	token, err := s.tokens.Issue(identity.Identity{Subject: user.ID.String(), Role: user.Role})
	if err != nil {
		return "", errorbank.Internal("failed to issue token", errorbank.WithCause(err))
	}
	return token, nil
}
