// Package checkout assembles the order payload sent to the external
// order-creation endpoint from the current cart, catalog snapshots and
// delivery selection.
package checkout

import (
	"errors"

	"github.com/leehai1107/shop-service/internal/domain"
)

var ErrEmptyOrder = errors.New("nothing orderable in cart, no order to build")

// BuildOrderDraft snapshots the cart into a submission payload.
//
// Product lines make it into the draft only when selected and in stock
// with at least one available unit. The delivery product, when one is
// selected, is always appended as a quantity-1 line regardless of its own
// stock status: delivery slots are bookable even when the catalog marks
// the delivery product unavailable. That asymmetry against the product
// stock gate is intentional.
//
// A draft with no product lines and no delivery is not an order;
// ErrEmptyOrder is returned. A delivery-only draft is valid.
func BuildOrderDraft(
	c *domain.Cart,
	snapshots map[int64]domain.ProductSnapshot,
	formIdentifier string,
	formFields []domain.FormField,
	paymentMethod string,
) (*domain.OrderDraft, error) {
	var lines []domain.OrderLine
	for _, line := range c.Lines {
		if !line.Selected {
			continue
		}
		snap, ok := snapshots[line.ProductID]
		if !ok || !snap.InStock() {
			continue
		}
		lines = append(lines, domain.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Selected:  true,
		})
	}

	if c.Delivery != nil && c.Delivery.ProductID != 0 {
		lines = append(lines, domain.OrderLine{
			ProductID: c.Delivery.ProductID,
			Quantity:  1,
			Selected:  true,
		})
	}

	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	return &domain.OrderDraft{
		FormIdentifier:           formIdentifier,
		FormData:                 formFields,
		Products:                 lines,
		PaymentAccountIdentifier: paymentMethod,
	}, nil
}
