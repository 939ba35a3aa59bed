package domain

type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// ProductSnapshot is read-only pricing and stock data fetched from the
// external catalog. The cart never owns or mutates it.
type ProductSnapshot struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Price          float64     `json:"price"`
	SaleValue      *float64    `json:"sale_value,omitempty"`
	StockStatus    StockStatus `json:"stock_status"`
	AvailableUnits int32       `json:"available_units"`
}

// InStock reports whether the product can actually be ordered: the status
// flag alone is not enough, at least one unit must be available.
func (p ProductSnapshot) InStock() bool {
	return p.StockStatus == StockStatusInStock && p.AvailableUnits >= 1
}

// UnitPrice is the sale price when one is set, the regular price otherwise.
func (p ProductSnapshot) UnitPrice() float64 {
	if p.SaleValue != nil {
		return *p.SaleValue
	}
	return p.Price
}
