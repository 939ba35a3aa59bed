package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leehai1107/shop-service/internal/catalog"
	"github.com/leehai1107/shop-service/internal/checkout"
	"github.com/leehai1107/shop-service/internal/domain"
	"github.com/leehai1107/shop-service/internal/orders"
	"github.com/leehai1107/shop-service/internal/pricing"
	"github.com/sirupsen/logrus"
)

var ErrUnknownPaymentMethod = errors.New("payment method not in the allowed list")

type CheckoutRequest struct {
	UserID         string
	IdempotencyKey string
	PaymentMethod  string
	FormFields     []domain.FormField
}

type CheckoutResponse struct {
	SubmissionID  string
	Status        domain.SubmissionStatus
	RemoteOrderID *string
}

type CheckoutService interface {
	InitiateCheckout(ctx context.Context, request *CheckoutRequest) (*CheckoutResponse, error)
}

type CheckoutServiceImpl struct {
	repo           orders.RepoInterface
	carts          *CartService
	catalog        catalog.Catalog
	submitter      catalog.OrderSubmitter
	formIdentifier string
}

func NewCheckoutService(repo orders.RepoInterface, carts *CartService, cat catalog.Catalog, submitter catalog.OrderSubmitter, formIdentifier string) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		repo:           repo,
		carts:          carts,
		catalog:        cat,
		submitter:      submitter,
		formIdentifier: formIdentifier,
	}
}

func (s *CheckoutServiceImpl) InitiateCheckout(
	ctx context.Context,
	request *CheckoutRequest) (*CheckoutResponse, error) {

	// check submission by idempotency key first
	existing, err := s.repo.GetSubmissionByIdempotencyKey(ctx, request.IdempotencyKey)
	if err != nil && !errors.Is(err, orders.ErrIdempotencyKeyNotFound) {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}

	if existing != nil {
		// This checkout already exists!
		// Return the cached result (could be COMPLETED, FAILED, or in flight)
		logrus.WithFields(logrus.Fields{
			"idempotency_key": request.IdempotencyKey,
			"submission_id":   existing.ID,
			"status":          existing.Status,
		}).Info("duplicate checkout request detected")

		return responseFor(existing), nil
	}

	c, err := s.carts.GetCart(ctx, request.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	snapshots, deliverySnap, err := s.carts.snapshotsFor(ctx, c)
	if err != nil {
		return nil, err
	}

	if err := s.checkPaymentMethod(ctx, request.PaymentMethod); err != nil {
		return nil, err
	}

	draft, err := checkout.BuildOrderDraft(c, snapshots, s.formIdentifier, request.FormFields, request.PaymentMethod)
	if err != nil {
		return nil, err // ErrEmptyOrder surfaces unchanged
	}

	total := pricing.ComputeTotal(c, snapshots, deliverySnap)

	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order draft: %w", err)
	}

	sub := &orders.Submission{
		ID:             uuid.New(),
		UserID:         request.UserID,
		IdempotencyKey: request.IdempotencyKey,
		Status:         domain.SubmissionStatusInitiated,
		Draft:          draftJSON,
		TotalAmount:    total,
	}

	if errCreate := s.repo.CreateSubmission(ctx, sub); errCreate != nil {
		if errors.Is(errCreate, orders.ErrDuplicateSubmission) {
			// lost a race on the same key, return whatever the winner did
			winner, errGet := s.repo.GetSubmissionByIdempotencyKey(ctx, request.IdempotencyKey)
			if errGet != nil {
				return nil, fmt.Errorf("failed to load racing submission: %w", errGet)
			}
			return responseFor(winner), nil
		}
		return nil, fmt.Errorf("failed to create submission: %w", errCreate)
	}

	remoteOrderID, errSubmit := s.submitter.SubmitOrder(ctx, draft)
	if errSubmit != nil {
		if errMark := s.repo.MarkFailed(ctx, sub.ID, errSubmit.Error()); errMark != nil {
			logrus.WithError(errMark).Error("failed to mark submission failed")
		}
		// submission failure is opaque to the caller, the cart core has
		// no retry policy of its own
		return nil, fmt.Errorf("order submission failed: %w", errSubmit)
	}

	if errSet := s.repo.SetSubmitted(ctx, sub.ID, remoteOrderID); errSet != nil {
		return nil, errSet
	}

	status := domain.SubmissionStatusCompleted
	if errComplete := s.complete(ctx, sub, remoteOrderID); errComplete != nil {
		// the stuck-submission poller will finish this one; until then
		// the row is SUBMITTED and the response must not get ahead of it
		logrus.WithError(errComplete).Error("failed to complete submission")
		status = domain.SubmissionStatusSubmitted
	}

	return &CheckoutResponse{
		SubmissionID:  sub.ID.String(),
		Status:        status,
		RemoteOrderID: &remoteOrderID,
	}, nil
}

func (s *CheckoutServiceImpl) complete(ctx context.Context, sub *orders.Submission, remoteOrderID string) error {
	payload := map[string]interface{}{
		"submission_id":   sub.ID.String(),
		"user_id":         sub.UserID,
		"remote_order_id": remoteOrderID,
		"total_amount":    sub.TotalAmount,
		"completed_at":    time.Now(),
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal completion payload: %w", err)
	}

	return s.repo.CompleteSubmission(ctx, sub.ID, payloadJSON)
}

func (s *CheckoutServiceImpl) checkPaymentMethod(ctx context.Context, method string) error {
	allowed, err := s.catalog.GetPaymentMethods(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch payment methods: %w", err)
	}
	for _, m := range allowed {
		if m == method {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, method)
}

func responseFor(sub *orders.Submission) *CheckoutResponse {
	return &CheckoutResponse{
		SubmissionID:  sub.ID.String(),
		Status:        sub.Status,
		RemoteOrderID: sub.RemoteOrderID,
	}
}
