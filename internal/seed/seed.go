package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cannashop/internal/models"
	"cannashop/internal/repositories"
)

// Products returns the demo catalog.
func Products() []models.Product {
	return []models.Product{
		{
			Title:       "OG Kush Premium",
			Description: "Flor indoor curada 3 semanas, aroma terroso y cítrico. Variedad híbrida con efectos relajantes.",
			Code:        "OGK-001",
			Price:       4500,
			Stock:       25,
			Category:    string(models.CategoryFlowers),
			Status:      true,
			Thumbnails:  []string{"https://example.com/ogkush1.jpg", "https://example.com/ogkush2.jpg"},
			Specs:       map[string]any{"strain": "OG Kush", "thc": 22.0, "cbd": 0.3, "aroma": "cítrico", "weight": 3.5},
		},
		{
			Title:       "Wax Lemon Haze",
			Description: "Extracto de calidad premium, extracción por BHO de la variedad Lemon Haze",
			Code:        "WLH-001",
			Price:       8500,
			Stock:       15,
			Category:    string(models.CategoryExtracts),
			Status:      true,
			Thumbnails:  []string{"https://example.com/wax1.jpg"},
			Specs:       map[string]any{"type": "BHO", "thc": 85.0, "cbd": 1.2, "quantity": 1.0},
		},
		{
			Title:       "Brownie THC 50mg",
			Description: "Brownie de chocolate artesanal infusionado con 50mg de THC. Ideal para usuarios experimentados.",
			Code:        "BRW-050",
			Price:       1200,
			Stock:       30,
			Category:    string(models.CategoryEdibles),
			Status:      true,
			Thumbnails:  []string{"https://example.com/brownie1.jpg"},
			Specs:       map[string]any{"format": "brownie", "thcMg": 50.0, "units": 1.0},
		},
		{
			Title:       "Grinder Metálico 4 Partes",
			Description: "Grinder de aluminio anodizado de 4 partes con malla fina para recolección de tricomas",
			Code:        "GRD-ALU-4",
			Price:       2800,
			Stock:       50,
			Category:    string(models.CategoryAccessories),
			Status:      true,
			Thumbnails:  []string{"https://example.com/grinder1.jpg"},
			Specs:       map[string]any{"type": "grinder", "material": "aluminio", "compatibility": "universal"},
		},
		{
			Title:       "White Widow Indoor",
			Description: "Flor de interior de la legendaria White Widow, conocida por su potencia y cristales blancos",
			Code:        "WW-IND-001",
			Price:       5200,
			Stock:       18,
			Category:    string(models.CategoryFlowers),
			Status:      true,
			Thumbnails:  []string{"https://example.com/whitewidow1.jpg"},
			Specs:       map[string]any{"strain": "White Widow", "thc": 25.0, "cbd": 0.8, "aroma": "dulce", "weight": 3.5},
		},
		{
			Title:       "Aceite CBD Full Spectrum",
			Description: "Aceite de CBD de espectro completo, ideal para uso medicinal y relajación",
			Code:        "CBD-FS-30",
			Price:       6800,
			Stock:       22,
			Category:    string(models.CategoryExtracts),
			Status:      true,
			Thumbnails:  []string{"https://example.com/cbdoil1.jpg"},
			Specs:       map[string]any{"type": "aceite", "thc": 0.3, "cbd": 30.0, "quantity": 30.0},
		},
		{
			Title:       "Gummies de Frutas 10mg",
			Description: "Gomitas de frutas sabor mixto, cada una con 10mg de THC. Presentación de 10 unidades.",
			Code:        "GUM-FRT-10",
			Price:       3500,
			Stock:       40,
			Category:    string(models.CategoryEdibles),
			Status:      true,
			Thumbnails:  []string{"https://example.com/gummies1.jpg"},
			Specs:       map[string]any{"format": "gummies", "thcMg": 10.0, "units": 10.0},
		},
		{
			Title:       "Pipa de Cristal Borosilicato",
			Description: "Pipa artesanal de cristal borosilicato resistente al calor, diseño elegante",
			Code:        "PIP-CRI-BOR",
			Price:       3200,
			Stock:       12,
			Category:    string(models.CategoryAccessories),
			Status:      true,
			Thumbnails:  []string{"https://example.com/pipe1.jpg"},
			Specs:       map[string]any{"type": "pipe", "material": "borosilicato", "compatibility": "flores"},
		},
	}
}

// ErrNotEmpty is returned by Seed when the stores already hold data and force is off.
var ErrNotEmpty = errors.New("stores already contain data, use force to overwrite")

// Result reports what Seed wrote.
type Result struct {
	Products []models.Product
	Cart     *models.Cart
}

// Seed fills the stores with the demo catalog and one empty cart.
// With force, existing products and carts are deleted first.
func Seed(ctx context.Context, products repositories.ProductRepository, carts repositories.CartRepository, force bool) (*Result, error) {
	existingProducts, err := products.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	existingCarts, err := carts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}

	if len(existingProducts) > 0 || len(existingCarts) > 0 {
		if !force {
			return nil, ErrNotEmpty
		}
		for _, p := range existingProducts {
			if _, err := products.Delete(ctx, p.ID); err != nil {
				return nil, fmt.Errorf("failed to delete product %s: %w", p.ID, err)
			}
		}
		for _, c := range existingCarts {
			if _, err := carts.Delete(ctx, c.ID); err != nil {
				return nil, fmt.Errorf("failed to delete cart %s: %w", c.ID, err)
			}
		}
	}

	result := &Result{}
	for _, p := range Products() {
		if err := products.Create(ctx, &p); err != nil {
			return nil, fmt.Errorf("failed to seed product %s: %w", p.Code, err)
		}
		log.Printf("Seeded product: %s (%s) - $%.2f", p.Title, p.Category, p.Price)
		result.Products = append(result.Products, p)
	}

	cart := &models.Cart{Products: []models.CartItem{}}
	if err := carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to seed cart: %w", err)
	}
	result.Cart = cart
	log.Printf("Seeded %d products and cart %s", len(result.Products), cart.ID)
	return result, nil
}
