package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leehai1107/shop-service/internal/catalog"
	"github.com/leehai1107/shop-service/internal/checkout"
	"github.com/leehai1107/shop-service/internal/delivery"
	"github.com/leehai1107/shop-service/internal/domain"
	"github.com/leehai1107/shop-service/internal/repository"
	"github.com/leehai1107/shop-service/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CartOperations is what the handlers need from the cart service.
type CartOperations interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, productID int64, selected bool, delta int32) error
	SetQuantity(ctx context.Context, userID string, productID int64, quantity int32) error
	IncrementItem(ctx context.Context, userID string, productID int64, delta int32) error
	DecrementItem(ctx context.Context, userID string, productID int64, delta int32) error
	ToggleSelected(ctx context.Context, userID string, productID int64) error
	RemoveItem(ctx context.Context, userID string, productID int64) error
	ClearCart(ctx context.Context, userID string) error
	SetDeliverySelection(ctx context.Context, userID string, upd delivery.Update) error
	ComputeTotal(ctx context.Context, userID string) (decimal.Decimal, error)
}

type CartHandler struct {
	carts   CartOperations
	timeout time.Duration
}

func NewCartHandler(carts CartOperations, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
	Selected  *bool `json:"selected,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int32 `json:"quantity"`
}

type QuantityDeltaRequestDTO struct {
	Delta int32 `json:"delta"`
}

type DeliveryRequestDTO struct {
	ProductID       int64            `json:"product_id"`
	DateEpochMillis int64            `json:"date_epoch_millis"`
	TimeLabel       string           `json:"time_label"`
	Address         string           `json:"address"`
	Interval        *domain.Interval `json:"interval,omitempty"`
}

type TotalResponseDTO struct {
	Total string `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cart, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	selected := true
	if req.Selected != nil {
		selected = *req.Selected
	}

	if err := h.carts.AddItem(ctx, userID, req.ProductID, selected, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondWithCart(ctx, w, userID, http.StatusCreated)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// quantity <= 0 removes the line
	if err := h.carts.SetQuantity(ctx, userID, productID, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondWithCart(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.applyDelta(w, r, h.carts.IncrementItem)
}

func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.applyDelta(w, r, h.carts.DecrementItem)
}

func (h *CartHandler) applyDelta(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, userID string, productID int64, delta int32) error) {

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	req := QuantityDeltaRequestDTO{Delta: 1}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}
	if req.Delta <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta must be positive")
		return
	}

	if err := op(ctx, userID, productID, req.Delta); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondWithCart(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) ToggleSelected(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.carts.ToggleSelected(ctx, userID, productID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondWithCart(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.carts.RemoveItem(ctx, userID, productID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondWithCart(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.carts.ClearCart(ctx, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *CartHandler) SetDelivery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req DeliveryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	upd := delivery.Update{
		ProductID:       req.ProductID,
		DateEpochMillis: req.DateEpochMillis,
		TimeLabel:       req.TimeLabel,
		Address:         req.Address,
		Interval:        req.Interval,
	}
	if err := h.carts.SetDeliverySelection(ctx, userID, upd); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondWithCart(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) GetTotal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	total, err := h.carts.ComputeTotal(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, TotalResponseDTO{Total: total.StringFixed(2)})
}

func (h *CartHandler) respondWithCart(ctx context.Context, w http.ResponseWriter, userID string, status int) {
	cart, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, status, cart)
}

func productIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "not_found", "cart not found")
	case errors.Is(err, checkout.ErrEmptyOrder):
		respondError(w, http.StatusBadRequest, "empty_order", "nothing orderable in the cart")
	case errors.Is(err, service.ErrUnknownPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "payment method is not allowed")
	case errors.Is(err, catalog.ErrSubmissionRejected):
		respondError(w, http.StatusBadGateway, "submission_rejected", "order was rejected by the commerce API")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		logrus.WithError(err).Error("internal error")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
