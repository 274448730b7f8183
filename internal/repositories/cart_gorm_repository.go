package repositories

import (
	"context"
	"errors"
	"fmt"

	"cannashop/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
// Line items are stored as a JSON column next to the cart row.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetAll retrieves all carts from the database.
func (r *GORMCartRepository) GetAll(ctx context.Context) ([]models.Cart, error) {
	var carts []models.Cart
	if err := r.db.WithContext(ctx).Order("seq asc").Find(&carts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all carts: %w", err)
	}
	return carts, nil
}

// GetByID retrieves a cart by its ID from the database.
func (r *GORMCartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart by ID %s: %w", id, err)
	}
	if cart.Products == nil {
		cart.Products = []models.CartItem{}
	}
	return &cart, nil
}

// Create creates a new cart in the database.
func (r *GORMCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if cart.Products == nil {
		cart.Products = []models.CartItem{}
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSeq(tx, &models.Cart{})
		if err != nil {
			return err
		}
		cart.Seq = seq
		return tx.Create(cart).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// Update writes the whole cart back to the database.
func (r *GORMCartRepository) Update(ctx context.Context, cart *models.Cart) error {
	existing, err := r.GetByID(ctx, cart.ID)
	if err != nil {
		return err
	}
	cart.Seq = existing.Seq
	if err := r.db.WithContext(ctx).Save(cart).Error; err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	return nil
}

// Delete deletes a cart by its ID from the database and returns it.
func (r *GORMCartRepository) Delete(ctx context.Context, id string) (*models.Cart, error) {
	cart, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Cart{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to delete cart: %w", err)
	}
	return cart, nil
}
