// Package cart holds the pure cart mutation rules. Every function takes
// the cart it operates on explicitly and applies one transition; nothing
// here touches storage or the network, so the rules can be tested without
// any runtime around them.
//
// None of the operations return errors. Out-of-range quantities are
// clamped and references to missing lines either insert a defaulted line
// or do nothing. That mirrors how the storefront UI drives the cart:
// a stray click must never put the cart into an error state.
package cart

import "github.com/leehai1107/shop-service/internal/domain"

// AddOrIncrement inserts a new line with quantity max(1, delta) when the
// product is not in the cart yet, otherwise adds delta to the existing
// quantity, floored at 1. The selected flag only applies on insert; an
// existing line keeps its selection.
func AddOrIncrement(c *domain.Cart, productID int64, selected bool, delta int32) {
	line := c.Line(productID)
	if line == nil {
		q := delta
		if q < 1 {
			q = 1
		}
		c.Lines = append(c.Lines, domain.CartLine{ProductID: productID, Quantity: q, Selected: selected})
		return
	}

	line.Quantity += delta
	if line.Quantity < 1 {
		line.Quantity = 1
	}
}

// SetQuantity sets the quantity directly. A result of zero or less deletes
// the line; anything else is clamped to [1, maxUnits]. Setting a quantity
// on a product that is not in the cart inserts a selected line.
func SetQuantity(c *domain.Cart, productID int64, quantity, maxUnits int32) {
	if quantity <= 0 {
		removeLine(c, productID)
		return
	}

	q := clamp(quantity, maxUnits)
	line := c.Line(productID)
	if line == nil {
		c.Lines = append(c.Lines, domain.CartLine{ProductID: productID, Quantity: q, Selected: true})
		return
	}
	line.Quantity = q
}

// Increment adds delta to the line's quantity, clamped to maxUnits. A
// missing line is created with quantity 1 regardless of delta.
func Increment(c *domain.Cart, productID int64, delta, maxUnits int32) {
	line := c.Line(productID)
	if line == nil {
		c.Lines = append(c.Lines, domain.CartLine{ProductID: productID, Quantity: 1, Selected: true})
		return
	}
	line.Quantity = clamp(line.Quantity+delta, maxUnits)
}

// Decrement subtracts delta from the line's quantity. Reaching zero or
// below deletes the line entirely; no zero-quantity line is ever kept.
// Missing lines are a no-op.
func Decrement(c *domain.Cart, productID int64, delta int32) {
	line := c.Line(productID)
	if line == nil {
		return
	}
	if line.Quantity-delta <= 0 {
		removeLine(c, productID)
		return
	}
	line.Quantity -= delta
}

// ToggleSelected flips the selected flag without touching the quantity.
// Missing lines are a no-op.
func ToggleSelected(c *domain.Cart, productID int64) {
	if line := c.Line(productID); line != nil {
		line.Selected = !line.Selected
	}
}

// RemoveAll clears every line. Used when an order completes and on logout.
func RemoveAll(c *domain.Cart) {
	c.Lines = nil
}

func removeLine(c *domain.Cart, productID int64) {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// clamp keeps q within [1, maxUnits]. A maxUnits below 1 still leaves one
// unit in the cart: stock gating happens at pricing and checkout time,
// not here.
func clamp(q, maxUnits int32) int32 {
	if maxUnits >= 1 && q > maxUnits {
		q = maxUnits
	}
	if q < 1 {
		q = 1
	}
	return q
}
