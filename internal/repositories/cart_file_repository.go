package repositories

import (
	"context"
	"fmt"
	"path/filepath"

	"cannashop/internal/models"

	"github.com/google/uuid"
)

// FileCartRepository stores carts as a JSON array in carts.json.
type FileCartRepository struct {
	file *jsonFile[models.Cart]
}

// NewFileCartRepository creates a repository backed by dataDir/carts.json.
func NewFileCartRepository(dataDir string) *FileCartRepository {
	return &FileCartRepository{file: newJSONFile[models.Cart](filepath.Join(dataDir, "carts.json"))}
}

// GetAll returns all carts.
func (r *FileCartRepository) GetAll(_ context.Context) ([]models.Cart, error) {
	var out []models.Cart
	err := r.file.view(func(carts []models.Cart) error {
		out = carts
		return nil
	})
	return out, err
}

// GetByID returns a cart by its ID.
func (r *FileCartRepository) GetByID(_ context.Context, id string) (*models.Cart, error) {
	var found *models.Cart
	err := r.file.view(func(carts []models.Cart) error {
		for i := range carts {
			if carts[i].ID == id {
				found = &carts[i]
				if found.Products == nil {
					found.Products = []models.CartItem{}
				}
				return nil
			}
		}
		return fmt.Errorf("cart %s: %w", id, ErrNotFound)
	})
	return found, err
}

// Create appends a new cart.
func (r *FileCartRepository) Create(_ context.Context, cart *models.Cart) error {
	return r.file.mutate(func(carts []models.Cart) ([]models.Cart, error) {
		if cart.ID == "" {
			cart.ID = uuid.New().String()
		}
		if cart.Products == nil {
			cart.Products = []models.CartItem{}
		}
		stampCreated(&cart.CreatedAt, &cart.UpdatedAt)
		return append(carts, *cart), nil
	})
}

// Update writes the whole cart back.
func (r *FileCartRepository) Update(_ context.Context, cart *models.Cart) error {
	return r.file.mutate(func(carts []models.Cart) ([]models.Cart, error) {
		for i := range carts {
			if carts[i].ID == cart.ID {
				carts[i] = *cart
				return carts, nil
			}
		}
		return nil, fmt.Errorf("cart %s: %w", cart.ID, ErrNotFound)
	})
}

// Delete removes a cart and returns it.
func (r *FileCartRepository) Delete(_ context.Context, id string) (*models.Cart, error) {
	var removed *models.Cart
	err := r.file.mutate(func(carts []models.Cart) ([]models.Cart, error) {
		for i, c := range carts {
			if c.ID == id {
				removed = &c
				return append(carts[:i], carts[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("cart %s: %w", id, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
