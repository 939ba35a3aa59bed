package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/leehai1107/shop-service/internal/orders"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// OutboxPoller drains unprocessed outbox events into kafka and re-completes
// submissions whose completing transaction never landed.
type OutboxPoller struct {
	timeout      time.Duration
	eventTick    time.Duration
	recoveryTick time.Duration
	repo         orders.RepoInterface
	writer       *kafka.Writer
}

func NewOutboxPoller(repo orders.RepoInterface, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-outbox",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{time.Second * 5, time.Second, time.Second * 5, repo, w}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	recoveryTicker := time.NewTicker(p.recoveryTick)
	defer eventTicker.Stop()
	defer recoveryTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-recoveryTicker.C:
			p.recoverStuckSubmissions(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch outbox events")
		return
	}

	for _, event := range events {
		if errPublish := p.publishToKafka(ctx, event); errPublish != nil {
			logrus.WithError(errPublish).WithField("event_id", event.ID).Error("failed to publish event")
			continue
		}

		if errMark := p.repo.MarkEventAsProcessed(ctx, event.ID); errMark != nil {
			logrus.WithError(errMark).WithField("event_id", event.ID).Error("failed to mark event as processed")
			continue
		}
	}
}

func (p *OutboxPoller) recoverStuckSubmissions(ctx context.Context) {
	// a stuck submission is SUBMITTED with no outbox event: the order went
	// out to the commerce API but the completing transaction never ran
	subs, err := p.repo.GetStuckSubmissions(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to get stuck submissions")
		return
	}
	for _, sub := range subs {
		logrus.WithField("submission_id", sub.ID).Info("recovering stuck submission")

		payload := map[string]interface{}{
			"submission_id": sub.ID.String(),
			"user_id":       sub.UserID,
			"total_amount":  sub.TotalAmount,
			"completed_at":  sub.UpdatedAt,
		}
		if sub.RemoteOrderID != nil {
			payload["remote_order_id"] = *sub.RemoteOrderID
		}

		payloadJSON, err := json.Marshal(payload)
		if err != nil {
			logrus.WithError(err).WithField("submission_id", sub.ID).Error("failed to marshal recovery payload")
			continue
		}

		if err := p.repo.CompleteSubmission(ctx, sub.ID, payloadJSON); err != nil {
			logrus.WithError(err).WithField("submission_id", sub.ID).Error("failed to complete submission in poller")
			continue
		}

		logrus.WithField("submission_id", sub.ID).Info("submission recovered")
	}
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *orders.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // submission id for ordering
		Value: event.Payload,             // already JSON from the database
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}
