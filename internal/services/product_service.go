package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cannashop/internal/models"
	"cannashop/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProductService owns product validation and catalog queries.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
	opts     QueryOptions
	now      func() time.Time
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, opts QueryOptions) *ProductService {
	defaults := DefaultQueryOptions()
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = defaults.DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = defaults.MaxLimit
	}
	return &ProductService{
		repo:     repo,
		validate: newValidator(),
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr(err, id)
	}
	return product, nil
}

// CreateProduct validates and stores a new product.
// Status defaults to active and thumbnails to an empty list.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if problems := s.validateAll(input); len(problems) > 0 {
		return nil, invalid(problems...)
	}

	code := *input.Code
	if err := s.ensureCodeFree(ctx, code, ""); err != nil {
		return nil, err
	}

	now := s.now()
	product := &models.Product{
		Status:     true,
		Thumbnails: []string{},
		Specs:      map[string]any{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	input.Apply(product)

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateCode) {
			return nil, &ConflictError{Field: "code", Value: code}
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct merges patch into the stored product and re-validates the result.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductInput) (*models.Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr(err, id)
	}

	if patch.Code != nil && *patch.Code != existing.Code {
		if err := s.ensureCodeFree(ctx, *patch.Code, existing.ID); err != nil {
			return nil, err
		}
	}

	if !patch.IsEmpty() {
		merged := models.InputFromProduct(*existing).Merge(patch)
		if problems := s.validateAll(merged); len(problems) > 0 {
			return nil, invalid(problems...)
		}
	}

	updated := *existing
	patch.Apply(&updated)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repositories.ErrDuplicateCode) {
			return nil, &ConflictError{Field: "code", Value: updated.Code}
		}
		return nil, s.storeErr(err, id)
	}
	return &updated, nil
}

// DeleteProduct removes a product and returns the removed record.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.storeErr(err, id)
	}
	return removed, nil
}

func (s *ProductService) validateAll(input models.ProductInput) []string {
	problems := s.ValidateProduct(input)
	if input.Category != nil {
		problems = append(problems, s.ValidateCategorySpecs(*input.Category, input.Specs)...)
	}
	return problems
}

// ensureCodeFree fails with ConflictError when code belongs to a product other than selfID.
func (s *ProductService) ensureCodeFree(ctx context.Context, code, selfID string) error {
	other, err := s.repo.GetByCode(ctx, code)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check product code: %w", err)
	case other.ID != selfID:
		return &ConflictError{Field: "code", Value: code}
	}
	return nil
}

func (s *ProductService) storeErr(err error, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound("product", id)
	}
	return err
}
