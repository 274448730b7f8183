package repositories

import (
	"context"

	"cannashop/internal/models"
)

// CartRepository defines the interface for cart data access.
// Update always writes the whole cart, including its line items.
type CartRepository interface {
	GetAll(ctx context.Context) ([]models.Cart, error)
	GetByID(ctx context.Context, id string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	Update(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id string) (*models.Cart, error)
}
