package repositories

import (
	"context"
	"fmt"
	"path/filepath"

	"cannashop/internal/models"

	"github.com/google/uuid"
)

// FileProductRepository stores the catalog as a JSON array in products.json.
type FileProductRepository struct {
	file *jsonFile[models.Product]
}

// NewFileProductRepository creates a repository backed by dataDir/products.json.
func NewFileProductRepository(dataDir string) *FileProductRepository {
	return &FileProductRepository{file: newJSONFile[models.Product](filepath.Join(dataDir, "products.json"))}
}

// GetAll returns all products in file order.
func (r *FileProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.file.view(func(products []models.Product) error {
		out = products
		return nil
	})
	return out, err
}

// GetByID returns a product by its ID.
func (r *FileProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.ID == id }, id)
}

// GetByCode returns a product by its code.
func (r *FileProductRepository) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.Code == code }, code)
}

func (r *FileProductRepository) find(match func(models.Product) bool, key string) (*models.Product, error) {
	var found *models.Product
	err := r.file.view(func(products []models.Product) error {
		for i := range products {
			if match(products[i]) {
				found = &products[i]
				return nil
			}
		}
		return fmt.Errorf("product %s: %w", key, ErrNotFound)
	})
	return found, err
}

// Create appends a new product to the file.
func (r *FileProductRepository) Create(_ context.Context, product *models.Product) error {
	return r.file.mutate(func(products []models.Product) ([]models.Product, error) {
		for _, p := range products {
			if p.Code == product.Code {
				return nil, fmt.Errorf("product code %s: %w", product.Code, ErrDuplicateCode)
			}
		}
		if product.ID == "" {
			product.ID = uuid.New().String()
		}
		stampCreated(&product.CreatedAt, &product.UpdatedAt)
		return append(products, *product), nil
	})
}

// Update replaces an existing product.
func (r *FileProductRepository) Update(_ context.Context, product *models.Product) error {
	return r.file.mutate(func(products []models.Product) ([]models.Product, error) {
		idx := -1
		for i, p := range products {
			if p.ID == product.ID {
				idx = i
			} else if p.Code == product.Code {
				return nil, fmt.Errorf("product code %s: %w", product.Code, ErrDuplicateCode)
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
		}
		products[idx] = *product
		return products, nil
	})
}

// Delete removes a product and returns it.
func (r *FileProductRepository) Delete(_ context.Context, id string) (*models.Product, error) {
	var removed *models.Product
	err := r.file.mutate(func(products []models.Product) ([]models.Product, error) {
		for i, p := range products {
			if p.ID == id {
				removed = &p
				return append(products[:i], products[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
