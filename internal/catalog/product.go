// Package catalog defines the product data model shared by the remote
// client, the view pipeline, and the dashboard controller.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record as served by the remote collection
// endpoint. The dashboard holds a cached copy; the remote system owns
// the data and assigns identifiers.
type Product struct {
	ID          int64
	Title       string
	Price       decimal.Decimal
	Description string
	Category    Category
	Images      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category is a product category reference.
type Category struct {
	ID   int64
	Name string
}

// FirstImage returns the first image URL of the product, or an empty
// string when the product has none.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
