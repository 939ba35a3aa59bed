package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/leehai1107/shop-service/internal/domain"
)

// HTTPClient talks to the headless commerce API over its REST surface.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type productsResponse struct {
	Items []domain.ProductSnapshot `json:"items"`
}

func (c *HTTPClient) GetProducts(ctx context.Context, ids []int64) ([]domain.ProductSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = strconv.FormatInt(id, 10)
	}
	endpoint := fmt.Sprintf("%s/api/v1/products?ids=%s", c.baseURL, url.QueryEscape(strings.Join(strIDs, ",")))

	var resp productsResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return resp.Items, nil
}

type scheduleResponse struct {
	Intervals []domain.Interval `json:"intervals"`
}

func (c *HTTPClient) GetDeliverySchedule(ctx context.Context) ([]domain.Interval, error) {
	var resp scheduleResponse
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/delivery/schedule", &resp); err != nil {
		return nil, fmt.Errorf("get delivery schedule: %w", err)
	}
	return resp.Intervals, nil
}

type paymentMethodsResponse struct {
	Methods []string `json:"methods"`
}

func (c *HTTPClient) GetPaymentMethods(ctx context.Context) ([]string, error) {
	var resp paymentMethodsResponse
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/payments/methods", &resp); err != nil {
		return nil, fmt.Errorf("get payment methods: %w", err)
	}
	return resp.Methods, nil
}

type submitOrderResponse struct {
	OrderID string `json:"order_id"`
}

// SubmitOrder posts the draft to the order-creation endpoint. Any non-2xx
// answer surfaces as ErrSubmissionRejected; the caller decides what to do
// with a rejected draft.
func (c *HTTPClient) SubmitOrder(ctx context.Context, draft *domain.OrderDraft) (string, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("marshal order draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build submit request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrSubmissionRejected, resp.StatusCode)
	}

	var decoded submitOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	return decoded.OrderID, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}
