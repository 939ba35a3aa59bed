package catalog

import (
	"context"
	"errors"

	"github.com/leehai1107/shop-service/internal/domain"
)

var ErrSubmissionRejected = errors.New("order submission rejected by commerce API")

// Catalog reads product, delivery schedule and payment data from the
// external commerce API. Consumers define this interface, not the HTTP
// implementation.
type Catalog interface {
	GetProducts(ctx context.Context, ids []int64) ([]domain.ProductSnapshot, error)
	GetDeliverySchedule(ctx context.Context) ([]domain.Interval, error)
	GetPaymentMethods(ctx context.Context) ([]string, error)
}

// OrderSubmitter hands a finished draft to the external order-creation
// endpoint and returns the remote order identifier. Failures are opaque
// to the cart core; retries, if any, live behind this interface.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, draft *domain.OrderDraft) (string, error)
}
