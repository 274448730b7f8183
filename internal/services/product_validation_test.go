package services_test

import (
	"testing"

	"cannashop/internal/models"
	"cannashop/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestValidateCategorySpecs(t *testing.T) {
	service, _ := newMemoryCatalog()

	tests := []struct {
		name     string
		category string
		specs    map[string]any
		problems []string
	}{
		{
			name:     "valid flower",
			category: "flowers",
			specs:    map[string]any{"strain": "White Widow", "thc": 25.0, "cbd": 0.0, "weight": 3.5},
		},
		{
			name:     "flower with bson integers",
			category: "flowers",
			specs:    map[string]any{"strain": "White Widow", "thc": int32(25), "cbd": int64(0), "weight": int32(3)},
		},
		{
			name:     "flower with zero weight",
			category: "flowers",
			specs:    map[string]any{"strain": "White Widow", "thc": 25.0, "cbd": 1.0, "weight": 0.0},
			problems: []string{"specs.weight must be greater than 0"},
		},
		{
			name:     "flower with negative thc and text cbd",
			category: "flowers",
			specs:    map[string]any{"strain": "White Widow", "thc": -1.0, "cbd": "low", "weight": 1.0},
			problems: []string{"specs.thc must be greater than or equal to 0", "specs.cbd must be a number"},
		},
		{
			name:     "flower missing everything",
			category: "flowers",
			specs:    nil,
			problems: []string{
				"specs.strain is required for flowers",
				"specs.thc is required for flowers",
				"specs.cbd is required for flowers",
				"specs.weight is required for flowers",
			},
		},
		{
			name:     "extract without quantity",
			category: "extracts",
			specs:    map[string]any{"thc": 85.0, "cbd": 1.2, "quantity": 0.0},
			problems: []string{"specs.quantity must be greater than 0"},
		},
		{
			name:     "edible",
			category: "edibles",
			specs:    map[string]any{"format": "gummies", "thcMg": 10.0, "units": 10.0},
		},
		{
			name:     "edible with no units",
			category: "edibles",
			specs:    map[string]any{"thcMg": 10.0},
			problems: []string{"specs.units is required for edibles"},
		},
		{
			name:     "accessories have no mandatory specs",
			category: "accessories",
			specs:    map[string]any{},
		},
		{
			name:     "unknown category is permissive",
			category: "apparel",
			specs:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.problems, service.ValidateCategorySpecs(tt.category, tt.specs))
		})
	}
}

func TestValidateProduct(t *testing.T) {
	service := services.NewProductService(nil, services.DefaultQueryOptions())

	assert.Empty(t, service.ValidateProduct(flowerInput("OGK-001", 4500, 25)))

	problems := service.ValidateProduct(models.ProductInput{})
	assert.ElementsMatch(t, []string{
		"title is required",
		"description is required",
		"code is required",
		"price is required",
		"stock is required",
		"category is required",
	}, problems)

	in := flowerInput("OGK-001", 4500, 25)
	in.Category = ptr("seeds")
	in.Thumbnails = &[]string{"https://example.com/a.jpg", " "}
	problems = service.ValidateProduct(in)
	assert.ElementsMatch(t, []string{
		"category must be one of: flowers, extracts, edibles, accessories",
		"thumbnails[1] must not be blank",
	}, problems)
}
