package domain

import "time"

type Cart struct {
	ID        string             `bson:"_id,omitempty" json:"-"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Lines     []CartLine         `bson:"lines" json:"lines"`
	Delivery  *DeliverySelection `bson:"delivery,omitempty" json:"delivery,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CartLine is one product's quantity and selection state inside a cart.
// A line only exists while its quantity is >= 1; there is at most one
// line per product.
type CartLine struct {
	ProductID int64 `bson:"product_id" json:"product_id"`
	Quantity  int32 `bson:"quantity" json:"quantity"`
	Selected  bool  `bson:"selected" json:"selected"`
}

// Line returns a pointer into Lines for the given product, or nil.
func (c *Cart) Line(productID int64) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}
