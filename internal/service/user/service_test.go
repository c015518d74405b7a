package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/bookstore/internal/auth"
	"github.com/Additional-Code/bookstore/internal/entity"
	"github.com/Additional-Code/bookstore/internal/identity"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

type fakeRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeRepo) Create(_ context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *fakeRepo) List(_ context.Context, role identity.Role) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.users))
	for _, user := range r.users {
		if role != "" && user.Role != role {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, user *entity.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return entity.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func newTestService(repo Repository) *Service {
	return &Service{repo: repo, logger: zap.NewNop()}
}

func stringPtr(v string) *string { return &v }

func TestCreate(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, identity.RoleCustomer, created.Role)
	assert.True(t, auth.CheckPassword(created.PasswordHash, "s3cret"))

	admin, err := svc.Create(ctx, CreateInput{Username: "root", Password: "s3cret", Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, admin.Role)

	_, err = svc.Create(ctx, CreateInput{Username: "bob", Password: "s3cret", Role: "OVERLORD"})
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))

	_, err = svc.Create(ctx, CreateInput{Username: "", Password: "s3cret"})
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}

func TestListFilters(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Username: "bob", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Username: "root", Password: "pw", Role: "ADMIN"})
	require.NoError(t, err)

	all, err := svc.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	admins, err := svc.List(ctx, ListInput{Role: "ADMIN"})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root", admins[0].Username)

	byName, err := svc.List(ctx, ListInput{Username: "alice"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "alice", byName[0].Username)

	missing, err := svc.List(ctx, ListInput{Username: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, missing)

	_, err = svc.List(ctx, ListInput{Username: "alice", Role: "ADMIN"})
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Get(ctx, "not-a-uuid")
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))

	_, err = svc.Get(ctx, uuid.NewString())
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}

func TestUpdate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID.String(), UpdateInput{})
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))

	_, err = svc.Update(ctx, created.ID.String(), UpdateInput{Role: stringPtr("OVERLORD")})
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))

	promoted, err := svc.Update(ctx, created.ID.String(), UpdateInput{Role: stringPtr("ADMIN")})
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, promoted.Role)

	rotated, err := svc.Update(ctx, created.ID.String(), UpdateInput{Password: stringPtr("n3w")})
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(rotated.PasswordHash, "n3w"))
	assert.Equal(t, identity.RoleAdmin, rotated.Role)
}

func TestDeleteReturnsLastState(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = svc.Get(ctx, created.ID.String())
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}
