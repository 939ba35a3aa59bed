package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leehai1107/shop-service/internal/cache"
	"github.com/leehai1107/shop-service/internal/cart"
	"github.com/leehai1107/shop-service/internal/catalog"
	"github.com/leehai1107/shop-service/internal/delivery"
	"github.com/leehai1107/shop-service/internal/domain"
	"github.com/leehai1107/shop-service/internal/pricing"
	"github.com/leehai1107/shop-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	catalog catalog.Catalog
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, cat catalog.Catalog) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cache,
		catalog: cat,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		c, err := s.cache.Get(ctx, userID)
		if err == nil {
			return c, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			logrus.WithError(err).Warn("cache get error") // log cache error but continue
		}

		c, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil && errors.Is(errGet, repository.ErrCartNotFound) { // not found cart return empty cart
			return &domain.Cart{
				UserID:    userID,
				Lines:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet // err from repo is not cache miss, return it
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), userID, c)
			if errSet != nil {
				logrus.WithError(errSet).Warn("cache set error")
			}
		}()

		return c, nil // cart was not in cache, return it from repo
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem inserts the product or bumps its quantity per the ledger rules.
func (s *CartService) AddItem(ctx context.Context, userID string, productID int64, selected bool, quantity int32) error {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		cart.AddOrIncrement(c, productID, selected, quantity)
	})
}

// SetQuantity sets the line quantity directly, clamped to the product's
// available units. Zero or negative removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID string, productID int64, quantity int32) error {
	maxUnits, err := s.availableUnits(ctx, productID)
	if err != nil {
		return err
	}
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		cart.SetQuantity(c, productID, quantity, maxUnits)
	})
}

func (s *CartService) IncrementItem(ctx context.Context, userID string, productID int64, delta int32) error {
	maxUnits, err := s.availableUnits(ctx, productID)
	if err != nil {
		return err
	}
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		cart.Increment(c, productID, delta, maxUnits)
	})
}

func (s *CartService) DecrementItem(ctx context.Context, userID string, productID int64, delta int32) error {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		cart.Decrement(c, productID, delta)
	})
}

func (s *CartService) ToggleSelected(ctx context.Context, userID string, productID int64) error {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		cart.ToggleSelected(c, productID)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, productID int64) error {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		cart.SetQuantity(c, productID, 0, 0)
	})
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	errDelete := s.repo.DeleteCart(ctx, userID)
	if errDelete != nil && !errors.Is(errDelete, repository.ErrCartNotFound) {
		logrus.WithError(errDelete).Error("repo delete cart error")
		return errDelete
	}

	s.invalidateCache(userID)
	return nil
}

// SetDeliverySelection replaces the cart's delivery slot, carrying over
// the interval when the update omits it.
func (s *CartService) SetDeliverySelection(ctx context.Context, userID string, upd delivery.Update) error {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		c.Delivery = delivery.SetDelivery(c.Delivery, upd)
	})
}

// ComputeTotal prices the cart against live catalog snapshots.
func (s *CartService) ComputeTotal(ctx context.Context, userID string) (decimal.Decimal, error) {
	c, err := s.GetCart(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	snapshots, deliverySnap, err := s.snapshotsFor(ctx, c)
	if err != nil {
		return decimal.Zero, err
	}

	return pricing.ComputeTotal(c, snapshots, deliverySnap), nil
}

// snapshotsFor fetches the snapshots for every cart line plus the
// delivery product in one catalog round trip.
func (s *CartService) snapshotsFor(ctx context.Context, c *domain.Cart) (map[int64]domain.ProductSnapshot, *domain.ProductSnapshot, error) {
	ids := make([]int64, 0, len(c.Lines)+1)
	for _, line := range c.Lines {
		ids = append(ids, line.ProductID)
	}
	deliveryID := int64(0)
	if c.Delivery != nil && c.Delivery.ProductID != 0 {
		deliveryID = c.Delivery.ProductID
		ids = append(ids, deliveryID)
	}

	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch product snapshots: %w", err)
	}

	snapshots := make(map[int64]domain.ProductSnapshot, len(products))
	var deliverySnap *domain.ProductSnapshot
	for _, p := range products {
		snapshots[p.ID] = p
		if deliveryID != 0 && p.ID == deliveryID {
			snap := p
			deliverySnap = &snap
		}
	}
	return snapshots, deliverySnap, nil
}

// availableUnits resolves the clamp ceiling for a quantity change. A
// product the catalog does not know about gets no clamp at all (zero
// means no ceiling for the ledger); the stock gate at pricing/checkout
// time still excludes it from any order.
func (s *CartService) availableUnits(ctx context.Context, productID int64) (int32, error) {
	products, err := s.catalog.GetProducts(ctx, []int64{productID})
	if err != nil {
		return 0, fmt.Errorf("fetch product snapshot: %w", err)
	}
	for _, p := range products {
		if p.ID == productID {
			return p.AvailableUnits, nil
		}
	}
	return 0, nil
}

func (s *CartService) mutate(ctx context.Context, userID string, apply func(*domain.Cart)) error {
	c, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return err
	}

	apply(c)

	if errUpsert := s.repo.UpsertCart(ctx, c); errUpsert != nil {
		logrus.WithError(errUpsert).Error("repo upsert cart error")
		return errUpsert
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) loadOrEmpty(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		now := time.Now()
		return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, userID)
	if errInvalidate != nil {
		logrus.WithError(errInvalidate).Warn("cache invalidate error")
	}
}
