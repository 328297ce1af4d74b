package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
)

var ErrOrderRejected = errors.New("order rejected by backend")

// OrderClient talks to the external Order API.
type OrderClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
	}
}

type createOrderResponse struct {
	Data    *domain.OrderConfirmation `json:"data"`
	Message string                    `json:"message"`
}

// CreateOrder submits the order request. The cart must not be touched by
// the caller until this reports success.
func (c *OrderClient) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderConfirmation, error) {
	var resp createOrderResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/api/v1/order", req, &resp); err != nil {
		return domain.OrderConfirmation{}, err
	}

	if resp.Data == nil {
		return domain.OrderConfirmation{}, fmt.Errorf("%w: %s", ErrOrderRejected, resp.Message)
	}

	return *resp.Data, nil
}

// HistoryEntry mirrors one persisted order as the backend reports it.
type HistoryEntry struct {
	OrderID    string               `json:"_id"`
	Name       string               `json:"name"`
	Phone      string               `json:"phone"`
	Type       domain.PaymentMethod `json:"type"`
	TotalPrice float64              `json:"totalPrice"`
	Detail     []domain.OrderDetail `json:"detail"`
	CreatedAt  string               `json:"createdAt"`
}

type historyResponse struct {
	Data    []HistoryEntry `json:"data"`
	Message string         `json:"message"`
}

// History fetches the order history for one owner.
func (c *OrderClient) History(ctx context.Context, ownerID string) ([]HistoryEntry, error) {
	u := c.baseURL + "/api/v1/order/history?owner=" + url.QueryEscape(ownerID)

	var resp historyResponse
	if err := getJSON(ctx, c.httpClient, u, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
