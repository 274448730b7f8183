package models

import "time"

// Category groups products and decides which specs are mandatory.
type Category string

const (
	CategoryFlowers     Category = "flowers"
	CategoryExtracts    Category = "extracts"
	CategoryEdibles     Category = "edibles"
	CategoryAccessories Category = "accessories"
)

// Categories lists every category accepted by the catalog.
var Categories = []Category{CategoryFlowers, CategoryExtracts, CategoryEdibles, CategoryAccessories}

// Product represents a product in the catalog.
type Product struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string         `json:"title" gorm:"type:varchar(200);not null"`
	Description string         `json:"description"`
	Code        string         `json:"code" gorm:"uniqueIndex;type:varchar(100);not null"`
	Price       float64        `json:"price"`
	Stock       int            `json:"stock"`
	Category    string         `json:"category" gorm:"index;type:varchar(32)"`
	Status      bool           `json:"status"`
	Thumbnails  []string       `json:"thumbnails" gorm:"serializer:json"`
	Specs       map[string]any `json:"specs" gorm:"serializer:json"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	// Seq is the insertion position kept by SQL stores.
	Seq int64 `json:"-" bson:"-" gorm:"index;not null;default:0"`
}

// ProductInput is the candidate received from clients for create and update.
// Nil fields are absent; there is no identity field, so ids sent by clients are ignored.
type ProductInput struct {
	Title       *string        `json:"title,omitempty" validate:"required,notblank"`
	Description *string        `json:"description,omitempty" validate:"required"`
	Code        *string        `json:"code,omitempty" validate:"required,notblank"`
	Price       *float64       `json:"price,omitempty" validate:"required,gt=0"`
	Stock       *int           `json:"stock,omitempty" validate:"required,gte=0"`
	Category    *string        `json:"category,omitempty" validate:"required,oneof=flowers extracts edibles accessories"`
	Status      *bool          `json:"status,omitempty"`
	Thumbnails  *[]string      `json:"thumbnails,omitempty" validate:"omitempty,dive,notblank"`
	Specs       map[string]any `json:"specs,omitempty"`
}

// IsEmpty reports whether the input carries no field at all.
func (in ProductInput) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Code == nil && in.Price == nil &&
		in.Stock == nil && in.Category == nil && in.Status == nil && in.Thumbnails == nil &&
		in.Specs == nil
}

// InputFromProduct returns an input with every field of p set.
func InputFromProduct(p Product) ProductInput {
	thumbnails := append([]string{}, p.Thumbnails...)
	specs := make(map[string]any, len(p.Specs))
	for k, v := range p.Specs {
		specs[k] = v
	}
	return ProductInput{
		Title:       &p.Title,
		Description: &p.Description,
		Code:        &p.Code,
		Price:       &p.Price,
		Stock:       &p.Stock,
		Category:    &p.Category,
		Status:      &p.Status,
		Thumbnails:  &thumbnails,
		Specs:       specs,
	}
}

// Merge overlays the non-nil fields of patch onto in.
// Specs are replaced as a whole, matching a shallow document update.
func (in ProductInput) Merge(patch ProductInput) ProductInput {
	out := in
	if patch.Title != nil {
		out.Title = patch.Title
	}
	if patch.Description != nil {
		out.Description = patch.Description
	}
	if patch.Code != nil {
		out.Code = patch.Code
	}
	if patch.Price != nil {
		out.Price = patch.Price
	}
	if patch.Stock != nil {
		out.Stock = patch.Stock
	}
	if patch.Category != nil {
		out.Category = patch.Category
	}
	if patch.Status != nil {
		out.Status = patch.Status
	}
	if patch.Thumbnails != nil {
		out.Thumbnails = patch.Thumbnails
	}
	if patch.Specs != nil {
		out.Specs = patch.Specs
	}
	return out
}

// Apply writes the set fields of in onto p.
func (in ProductInput) Apply(p *Product) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Code != nil {
		p.Code = *in.Code
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Thumbnails != nil {
		p.Thumbnails = append([]string{}, (*in.Thumbnails)...)
	}
	if in.Specs != nil {
		p.Specs = in.Specs
	}
}

// SpecString returns specs[key] when it holds a string.
func (p Product) SpecString(key string) (string, bool) {
	v, ok := p.Specs[key].(string)
	return v, ok
}
