package repositories

import (
	"context"
	"fmt"
	"sync"

	"cannashop/internal/models"

	"github.com/google/uuid"
)

// MemoryCartRepository is an in-memory implementation of CartRepository.
type MemoryCartRepository struct {
	carts []models.Cart
	mu    sync.RWMutex
}

// NewMemoryCartRepository creates a new instance of MemoryCartRepository.
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{}
}

// GetAll returns all carts.
func (r *MemoryCartRepository) GetAll(_ context.Context) ([]models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cartList := make([]models.Cart, 0, len(r.carts))
	for _, c := range r.carts {
		cartList = append(cartList, cloneCart(c))
	}
	return cartList, nil
}

// GetByID returns a cart by its ID.
func (r *MemoryCartRepository) GetByID(_ context.Context, id string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("cart %s: %w", id, ErrNotFound)
	}
	cart := cloneCart(r.carts[i])
	return &cart, nil
}

// Create adds a new cart.
func (r *MemoryCartRepository) Create(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if cart.Products == nil {
		cart.Products = []models.CartItem{}
	}
	stampCreated(&cart.CreatedAt, &cart.UpdatedAt)
	r.carts = append(r.carts, cloneCart(*cart))
	return nil
}

// Update replaces an existing cart.
func (r *MemoryCartRepository) Update(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(cart.ID)
	if i < 0 {
		return fmt.Errorf("cart %s: %w", cart.ID, ErrNotFound)
	}
	r.carts[i] = cloneCart(*cart)
	return nil
}

// Delete removes a cart by its ID and returns it.
func (r *MemoryCartRepository) Delete(_ context.Context, id string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("cart %s: %w", id, ErrNotFound)
	}
	removed := r.carts[i]
	r.carts = append(r.carts[:i], r.carts[i+1:]...)
	return &removed, nil
}

func (r *MemoryCartRepository) indexOf(id string) int {
	for i, c := range r.carts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func cloneCart(c models.Cart) models.Cart {
	c.Products = append([]models.CartItem{}, c.Products...)
	return c
}
