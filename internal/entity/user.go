package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/Additional-Code/bookstore/internal/identity"
)

// User is an account that may authenticate against the API.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           uuid.UUID     `bun:"id,pk,type:uuid"`
	Username     string        `bun:"username,unique"`
	PasswordHash string        `bun:"password_hash" json:"-"`
	Role         identity.Role `bun:"role"`
	CreatedAt    time.Time     `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time     `bun:"updated_at,nullzero"`
}
