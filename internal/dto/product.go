package dto

import (
	"time"

	"github.com/Additional-Code/bookstore/internal/entity"
)

// CreateProductPayload is the request body for adding a catalog entry.
type CreateProductPayload struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

// UpdateProductPayload is the request body for patching a catalog entry.
type UpdateProductPayload struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

// ProductResponse represents a product as exposed via transport layers.
type ProductResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProductResponse maps a product entity to its transport shape.
func NewProductResponse(product *entity.Product) ProductResponse {
	price, _ := product.Price.Float64()
	return ProductResponse{
		ID:        product.ID.String(),
		Name:      product.Name,
		Price:     price,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}

// NewProductResponses maps a slice of products.
func NewProductResponses(products []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		out = append(out, NewProductResponse(product))
	}
	return out
}
