package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/client"
)

// OrderHistory is the slice of the Order API the history page needs.
type OrderHistory interface {
	History(ctx context.Context, ownerID string) ([]client.HistoryEntry, error)
}

type OrdersHandler struct {
	orders  OrderHistory
	timeout time.Duration
}

func NewOrdersHandler(orders OrderHistory, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type HistoryResponseDTO struct {
	Orders []client.HistoryEntry `json:"orders"`
}

// GET /api/v1/orders/history
func (h *OrdersHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := ownerFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart session")
		return
	}

	entries, err := h.orders.History(ctx, ownerID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "history_fetch_failed", "failed to fetch order history")
		return
	}
	if entries == nil {
		entries = []client.HistoryEntry{}
	}

	respondJSON(w, http.StatusOK, HistoryResponseDTO{Orders: entries})
}
