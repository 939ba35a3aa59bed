package repository

import (
	"context"

	"github.com/leehai1107/shop-service/internal/domain"
)

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
//
// Line-level math (clamping, delete-on-zero) lives in the cart package;
// the repository only reads and replaces whole carts.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}
