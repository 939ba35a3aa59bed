package domain

// FormField is one marker/value pair of the order form. Order matters,
// the external commerce API expects the fields in form order.
type FormField struct {
	Marker string `json:"marker"`
	Value  string `json:"value"`
}

type OrderLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
	Selected  bool  `json:"selected"`
}

// OrderDraft is the checkout-ready payload handed to the external
// order-creation endpoint. The shape is dictated by that API, we do not
// own the schema.
type OrderDraft struct {
	FormIdentifier           string      `json:"formIdentifier"`
	FormData                 []FormField `json:"formData"`
	Products                 []OrderLine `json:"products"`
	PaymentAccountIdentifier string      `json:"paymentAccountIdentifier"`
}
