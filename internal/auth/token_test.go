package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/bookstore/internal/identity"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

func newTestManager(ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte("test-secret"), ttl: ttl}
}

func TestIssueAndVerify(t *testing.T) {
	manager := newTestManager(time.Hour)
	caller := identity.Identity{Subject: "9c7a1c4e-8a62-4d09-9f3a-1f2b33f0a001", Role: identity.RoleAdmin}

	token, err := manager.Issue(caller)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	verified, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, caller, verified)
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := newTestManager(-time.Minute)

	token, err := manager.Issue(identity.Identity{Subject: "u1", Role: identity.RoleCustomer})
	require.NoError(t, err)

	_, err = manager.Verify(token)
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindForbidden))
}

func TestVerifyTamperedToken(t *testing.T) {
	manager := newTestManager(time.Hour)

	token, err := manager.Issue(identity.Identity{Subject: "u1", Role: identity.RoleCustomer})
	require.NoError(t, err)

	other := &TokenManager{secret: []byte("another-secret"), ttl: time.Hour}
	_, err = other.Verify(token)
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindForbidden))

	_, err = manager.Verify(token + "x")
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindForbidden))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
