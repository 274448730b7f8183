package models

import "time"

// CartItem is a single product line within a cart.
type CartItem struct {
	ProductID string `json:"product" bson:"product"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Cart represents a shopping cart.
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Products  []CartItem `json:"products" gorm:"serializer:json"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	// Seq is the insertion position kept by SQL stores.
	Seq int64 `json:"-" bson:"-" gorm:"index;not null;default:0"`
}

// Line returns the index of the line holding productID, or -1.
func (c *Cart) Line(productID string) int {
	for i, item := range c.Products {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// CartLineDetail pairs a cart line with the product it references.
// Product is nil when the product no longer exists.
type CartLineDetail struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// CartDetail is a cart with its products resolved.
type CartDetail struct {
	ID        string           `json:"id"`
	Products  []CartLineDetail `json:"products"`
	Total     float64          `json:"total"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
