// Package store keeps shopping carts and their line items.
package store

import (
	"context"
)

// CartStore is an interface for cart storage operations.
type CartStore interface {
	// Create stores an empty cart under the next id.
	Create(ctx context.Context) (*Cart, error)

	// FindAll returns every cart in insertion order.
	FindAll(ctx context.Context) ([]Cart, error)

	// FindByID returns ErrCartNotFound if no cart exists with the given ID.
	FindByID(ctx context.Context, id int) (*Cart, error)

	// AddProduct adds one unit of productID to the cart.
	// The product id is not checked against the product catalog.
	AddProduct(ctx context.Context, cartID, productID int) (*Cart, error)
}

type Cart struct {
	ID       int        `json:"id"`
	Products []LineItem `json:"products"`
}

// LineItem is a product reference and how many units of it the cart holds.
type LineItem struct {
	Product  int `json:"product"`
	Quantity int `json:"quantity"`
}

func cartID(c Cart) int { return c.ID }

// addUnit increments the line item for productID or appends a new one.
func (c *Cart) addUnit(productID int) {
	for i := range c.Products {
		if c.Products[i].Product == productID {
			c.Products[i].Quantity++
			return
		}
	}
	c.Products = append(c.Products, LineItem{Product: productID, Quantity: 1})
}
