package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client fetches book pages from the external Book API. Filtering and
// sorting happen locally on the fetched page.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type bookPage struct {
	Data *struct {
		Result []domain.Book `json:"result"`
	} `json:"data"`
	Message string `json:"message"`
}

func (c *Client) FetchPage(ctx context.Context, current, pageSize int) ([]domain.Book, error) {
	url := fmt.Sprintf("%s/api/v1/book?current=%d&pageSize=%d", c.baseURL, current, pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch books: %w", err)
	}
	defer resp.Body.Close()

	var page bookPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode book page (status %d): %w", resp.StatusCode, err)
	}
	if page.Data == nil {
		return nil, fmt.Errorf("book fetch rejected: %s", page.Message)
	}

	return page.Data.Result, nil
}
