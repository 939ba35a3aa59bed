// Package pricing derives the cart total from the current cart state and
// live catalog snapshots. Totals are recomputed from scratch on every
// read; nothing is cached here.
package pricing

import (
	"github.com/leehai1107/shop-service/internal/domain"
	"github.com/shopspring/decimal"
)

// ComputeTotal sums unitPrice * quantity over the selected, in-stock
// lines of the cart. Lines without a matching snapshot are skipped, as
// are lines whose product is out of stock or has no units left.
//
// The delivery price joins the total only when at least one product line
// qualified. A cart with nothing orderable totals zero even when a
// delivery with a nonzero price is selected. That all-or-nothing rule is
// intentional business behavior, not an accident; see the regression test.
func ComputeTotal(c *domain.Cart, snapshots map[int64]domain.ProductSnapshot, deliverySnapshot *domain.ProductSnapshot) decimal.Decimal {
	total := decimal.Zero
	anyOrderable := false

	for _, line := range c.Lines {
		if !line.Selected {
			continue
		}
		snap, ok := snapshots[line.ProductID]
		if !ok || !snap.InStock() {
			continue
		}

		unit := decimal.NewFromFloat(snap.UnitPrice())
		total = total.Add(unit.Mul(decimal.NewFromInt32(line.Quantity)))
		anyOrderable = true
	}

	if anyOrderable && deliverySnapshot != nil {
		total = total.Add(decimal.NewFromFloat(deliverySnapshot.UnitPrice()))
	}

	return total
}
