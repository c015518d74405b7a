package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bookstore/internal/auth"
	"github.com/Additional-Code/bookstore/internal/entity"
	"github.com/Additional-Code/bookstore/internal/identity"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/bookstore/service/user")

// Repository is the persistence capability for user accounts.
type Repository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context, role identity.Role) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateInput is an administrative account creation request.
type CreateInput struct {
	Username string
	Password string
	Role     string
}

// UpdateInput is a partial account patch; at least one field must be present.
type UpdateInput struct {
	Password *string
	Role     *string
}

// ListInput narrows the account listing. Username and Role are mutually
// exclusive.
type ListInput struct {
	Username string
	Role     string
}

// Service encapsulates account management logic.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{repo: p.Repository, logger: p.Logger}
}

// List returns accounts filtered by exactly one of username or role, or all
// accounts when neither is given. A username that matches nobody yields an
// empty list.
func (s *Service) List(ctx context.Context, in ListInput) ([]*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.List")
	defer span.End()

	if in.Username != "" && in.Role != "" {
		return nil, errorbank.BadRequest("you can filter by username or role, not both")
	}

	if in.Username != "" {
		user, err := s.repo.GetByUsername(ctx, in.Username)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return []*entity.User{}, nil
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
		}
		return []*entity.User{user}, nil
	}

	users, err := s.repo.List(ctx, identity.Role(in.Role))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list users", errorbank.WithCause(err))
	}
	return users, nil
}

// Get retrieves an account by id.
func (s *Service) Get(ctx context.Context, rawID string) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.Get", trace.WithAttributes(attribute.String("user.id", rawID)))
	defer span.End()

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errorbank.NotFound("there is no user with the given ID")
	}
	return s.load(ctx, span, id)
}

// Create provisions an account with an explicit role. Username collisions
// surface as unexpected errors rather than a dedicated conflict.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.Create")
	defer span.End()

	if in.Username == "" || in.Password == "" {
		return nil, errorbank.BadRequest("username and password are required")
	}
	role := identity.RoleCustomer
	if in.Role != "" {
		parsed, err := identity.ParseRole(in.Role)
		if err != nil {
			return nil, errorbank.BadRequest("every user must have a valid role")
		}
		role = parsed
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, errorbank.Internal("failed to hash password", errorbank.WithCause(err))
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New(),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create user", errorbank.WithCause(err))
	}
	return user, nil
}

// Update patches password and/or role on an existing account.
func (s *Service) Update(ctx context.Context, rawID string, in UpdateInput) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.Update", trace.WithAttributes(attribute.String("user.id", rawID)))
	defer span.End()

	if in.Password == nil && in.Role == nil {
		return nil, errorbank.BadRequest("you must provide at least a password or role attribute")
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errorbank.NotFound("there is no user with the given ID")
	}

	user, err := s.load(ctx, span, id)
	if err != nil {
		return nil, err
	}

	if in.Password != nil {
		if *in.Password == "" {
			return nil, errorbank.BadRequest("password must not be empty")
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, errorbank.Internal("failed to hash password", errorbank.WithCause(err))
		}
		user.PasswordHash = hash
	}
	if in.Role != nil {
		role, err := identity.ParseRole(*in.Role)
		if err != nil {
			return nil, errorbank.BadRequest("every user must have a valid role")
		}
		user.Role = role
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("there is no user with the given ID")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update user", errorbank.WithCause(err))
	}
	return user, nil
}

// Delete removes an account and returns its last state.
func (s *Service) Delete(ctx context.Context, rawID string) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.Delete", trace.WithAttributes(attribute.String("user.id", rawID)))
	defer span.End()

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errorbank.NotFound("there is no user with the given ID")
	}

	user, err := s.load(ctx, span, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("there is no user with the given ID")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to delete user", errorbank.WithCause(err))
	}
	return user, nil
}

func (s *Service) load(ctx context.Context, span trace.Span, id uuid.UUID) (*entity.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, errorbank.NotFound("there is no user with the given ID")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}
	return user, nil
}
