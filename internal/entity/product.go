package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/uptrace/bun"
)

// Product is a catalog entry. The order service only ever consults its
// identifier and price.
type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID        uuid.UUID       `bun:"id,pk,type:uuid"`
	Name      string          `bun:"name"`
	Price     decimal.Decimal `bun:"price"`
	CreatedAt time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero"`
}
