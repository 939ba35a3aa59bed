package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/leehai1107/shop-service/internal/domain"
	"github.com/leehai1107/shop-service/internal/service"
)

type CheckoutHandler struct {
	checkouts service.CheckoutService
	timeout   time.Duration
}

func NewCheckoutHandler(checkouts service.CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkouts: checkouts,
		timeout:   timeout,
	}
}

type FormFieldDTO struct {
	Marker string `json:"marker"`
	Value  string `json:"value"`
}

type InitiateCheckoutRequestDTO struct {
	IdempotencyKey string         `json:"idempotency_key"`
	PaymentMethod  string         `json:"payment_method"`
	FormFields     []FormFieldDTO `json:"form_fields"`
}

type CheckoutResponseDTO struct {
	SubmissionID  string  `json:"submission_id"`
	Status        string  `json:"status"`
	RemoteOrderID *string `json:"remote_order_id,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req InitiateCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.IdempotencyKey == "" {
		respondError(w, http.StatusBadRequest, "missing_idempotency_key",
			"idempotency_key is required")
		return
	}
	if req.PaymentMethod == "" {
		respondError(w, http.StatusBadRequest, "missing_payment_method",
			"payment_method is required")
		return
	}

	fields := make([]domain.FormField, 0, len(req.FormFields))
	for _, f := range req.FormFields {
		fields = append(fields, domain.FormField{Marker: f.Marker, Value: f.Value})
	}

	resp, err := h.checkouts.InitiateCheckout(ctx, &service.CheckoutRequest{
		UserID:         userID,
		IdempotencyKey: req.IdempotencyKey,
		PaymentMethod:  req.PaymentMethod,
		FormFields:     fields,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		SubmissionID:  resp.SubmissionID,
		Status:        resp.Status.String(),
		RemoteOrderID: resp.RemoteOrderID,
	})
}
