package poller

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/leehai1107/shop-service/internal/cache"
	"github.com/leehai1107/shop-service/internal/repository"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Poller clears a user's cart once the outbox reports their order as
// completed. The cart and its cache entry go together.
type Poller struct {
	repo   repository.CartRepository
	reader *kafka.Reader
	cache  cache.CartCache
}

func NewPoller(repo repository.CartRepository, c cache.CartCache, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "order-outbox",
		GroupID:  "cart-clearing-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{repo, reader, c}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.getMessagesAndEmptyCart(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		logrus.WithError(err).Error("error closing kafka reader")
	}
}

func (p *Poller) getMessagesAndEmptyCart(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logrus.WithError(err).Error("error reading message")
		}
		return
	}

	if eventType(m) != "order.completed" {
		return
	}

	var payload map[string]interface{}
	if errUnMarshal := json.Unmarshal(m.Value, &payload); errUnMarshal != nil {
		logrus.WithError(errUnMarshal).Error("error parsing message")
		return
	}
	userID, ok := payload["user_id"].(string)
	if !ok {
		logrus.Error("missing or invalid user_id")
		return
	}

	errDelete := p.repo.DeleteCart(ctx, userID)
	if errDelete != nil && !errors.Is(errDelete, repository.ErrCartNotFound) {
		logrus.WithError(errDelete).Error("failed to delete cart")
	}

	if errCacheDelete := p.cache.Delete(ctx, userID); errCacheDelete != nil {
		logrus.WithError(errCacheDelete).Error("failed to delete cached cart")
	}
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}
