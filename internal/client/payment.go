package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
)

var ErrStatusUpdateRejected = errors.New("payment status update rejected by backend")

// PaymentClient talks to the external Payment Status API.
type PaymentClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
	}
}

type updatePaymentRequest struct {
	Status     domain.PaymentStatus `json:"status"`
	PaymentRef string               `json:"paymentRef"`
}

type updatePaymentResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// UpdatePaymentStatus records the outcome of a payment-gateway transaction
// against the order identified by paymentRef.
func (c *PaymentClient) UpdatePaymentStatus(ctx context.Context, status domain.PaymentStatus, paymentRef string) error {
	body := updatePaymentRequest{Status: status, PaymentRef: paymentRef}

	var resp updatePaymentResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/api/v1/order/update-payment-status", body, &resp); err != nil {
		return err
	}

	if resp.Data == nil {
		return fmt.Errorf("%w: %s", ErrStatusUpdateRejected, resp.Message)
	}
	return nil
}
