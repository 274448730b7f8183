package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cannashop/internal/models"
	"cannashop/internal/repositories"
)

// CartService owns every mutation of cart line items.
//
// Each mutation reads the whole cart, changes it in memory and writes the whole cart back.
// Without WithCartLocking two concurrent mutations of one cart may race and the later
// write wins; the store never sees partial line updates.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	locks    *keyedMutex
	now      func() time.Time
}

// CartOption customizes a CartService.
type CartOption func(*CartService)

// WithCartLocking serializes mutations of the same cart within this process.
func WithCartLocking() CartOption {
	return func(s *CartService) {
		s.locks = newKeyedMutex()
	}
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, opts ...CartOption) *CartService {
	s := &CartService{
		carts:    carts,
		products: products,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCart stores a new empty cart.
func (s *CartService) CreateCart(ctx context.Context) (*models.Cart, error) {
	now := s.now()
	cart := &models.Cart{Products: []models.CartItem{}, CreatedAt: now, UpdatedAt: now}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

// GetCart returns the cart with raw product references.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*models.Cart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, cartErr(err, cartID)
	}
	return cart, nil
}

// GetCartWithDetails resolves every line to its product.
// Lines whose product was deleted keep a nil product instead of failing the read.
func (s *CartService) GetCartWithDetails(ctx context.Context, cartID string) (*models.CartDetail, error) {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	detail := &models.CartDetail{
		ID:        cart.ID,
		Products:  make([]models.CartLineDetail, 0, len(cart.Products)),
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Products {
		product, err := s.products.GetByID(ctx, item.ProductID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			product = nil
		case err != nil:
			return nil, fmt.Errorf("failed to resolve product %s: %w", item.ProductID, err)
		default:
			detail.Total += product.Price * float64(item.Quantity)
		}
		detail.Products = append(detail.Products, models.CartLineDetail{Product: product, Quantity: item.Quantity})
	}
	return detail, nil
}

// AddProductToCart adds one unit of productID, creating the line when needed.
func (s *CartService) AddProductToCart(ctx context.Context, cartID, productID string) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		product, err := s.product(ctx, productID)
		if err != nil {
			return err
		}
		if !product.Status {
			return invalid("inactive products cannot be added to a cart")
		}

		line := cart.Line(productID)
		current := 0
		if line >= 0 {
			current = cart.Products[line].Quantity
		}
		if product.Stock <= current {
			return invalid("insufficient stock to add the product")
		}

		if line >= 0 {
			cart.Products[line].Quantity++
		} else {
			cart.Products = append(cart.Products, models.CartItem{ProductID: productID, Quantity: 1})
		}
		return nil
	})
}

// UpdateProductQuantity sets the quantity of an existing line.
// A quantity of zero or less removes the line.
func (s *CartService) UpdateProductQuantity(ctx context.Context, cartID, productID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return s.RemoveProductFromCart(ctx, cartID, productID)
	}
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		product, err := s.product(ctx, productID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return invalid(fmt.Sprintf("requested quantity %d exceeds available stock %d", quantity, product.Stock))
		}
		line := cart.Line(productID)
		if line < 0 {
			return notFound("cart line for product", productID)
		}
		cart.Products[line].Quantity = quantity
		return nil
	})
}

// RemoveProductFromCart drops the line for productID.
func (s *CartService) RemoveProductFromCart(ctx context.Context, cartID, productID string) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		line := cart.Line(productID)
		if line < 0 {
			return notFound("cart line for product", productID)
		}
		cart.Products = append(cart.Products[:line], cart.Products[line+1:]...)
		return nil
	})
}

// ClearCart empties the cart.
func (s *CartService) ClearCart(ctx context.Context, cartID string) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		cart.Products = []models.CartItem{}
		return nil
	})
}

// ReplaceAllLines swaps the whole line sequence for lines.
//
// This bulk path does not check stock or product status; callers that need those
// guarantees must use the single-line operations. Only malformed lines are rejected.
func (s *CartService) ReplaceAllLines(ctx context.Context, cartID string, lines []models.CartItem) (*models.Cart, error) {
	var problems []string
	seen := make(map[string]bool, len(lines))
	for i, l := range lines {
		switch {
		case l.ProductID == "":
			problems = append(problems, fmt.Sprintf("products[%d].product is required", i))
		case seen[l.ProductID]:
			problems = append(problems, fmt.Sprintf("products[%d].product %s is duplicated", i, l.ProductID))
		}
		if l.Quantity <= 0 {
			problems = append(problems, fmt.Sprintf("products[%d].quantity must be greater than 0", i))
		}
		seen[l.ProductID] = true
	}
	if len(problems) > 0 {
		return nil, invalid(problems...)
	}

	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		cart.Products = append([]models.CartItem{}, lines...)
		return nil
	})
}

// mutate runs the read-modify-write cycle shared by every cart mutation.
func (s *CartService) mutate(ctx context.Context, cartID string, change func(*models.Cart) error) (*models.Cart, error) {
	if s.locks != nil {
		unlock := s.locks.lock(cartID)
		defer unlock()
	}

	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, cartErr(err, cartID)
	}
	if err := change(cart); err != nil {
		return nil, err
	}
	cart.UpdatedAt = s.now()
	if err := s.carts.Update(ctx, cart); err != nil {
		return nil, cartErr(err, cartID)
	}
	return cart, nil
}

func (s *CartService) product(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("product", productID)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}
	return product, nil
}

func cartErr(err error, cartID string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound("cart", cartID)
	}
	return err
}
