package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cannashop/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Products are kept in insertion order.
type MemoryProductRepository struct {
	products []models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{}
}

// GetAll returns all products.
func (r *MemoryProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, cloneProduct(p))
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	p := cloneProduct(r.products[i])
	return &p, nil
}

// GetByCode returns a product by its code.
func (r *MemoryProductRepository) GetByCode(_ context.Context, code string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Code == code {
			found := cloneProduct(p)
			return &found, nil
		}
	}
	return nil, fmt.Errorf("product with code %s: %w", code, ErrNotFound)
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.Code == product.Code {
			return fmt.Errorf("product code %s: %w", product.Code, ErrDuplicateCode)
		}
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	stampCreated(&product.CreatedAt, &product.UpdatedAt)
	r.products = append(r.products, cloneProduct(*product))
	return nil
}

// Update replaces an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(product.ID)
	if i < 0 {
		return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
	}
	for j, p := range r.products {
		if j != i && p.Code == product.Code {
			return fmt.Errorf("product code %s: %w", product.Code, ErrDuplicateCode)
		}
	}
	r.products[i] = cloneProduct(*product)
	return nil
}

// Delete removes a product by its ID and returns it.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	removed := r.products[i]
	r.products = append(r.products[:i], r.products[i+1:]...)
	return &removed, nil
}

func (r *MemoryProductRepository) indexOf(id string) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// cloneProduct copies the slice and map fields so callers cannot mutate stored state.
func cloneProduct(p models.Product) models.Product {
	if p.Thumbnails != nil {
		p.Thumbnails = append([]string{}, p.Thumbnails...)
	}
	if p.Specs != nil {
		specs := make(map[string]any, len(p.Specs))
		for k, v := range p.Specs {
			specs[k] = v
		}
		p.Specs = specs
	}
	return p
}

func stampCreated(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}
