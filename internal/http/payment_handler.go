package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/payment"
)

type PaymentHandler struct {
	returns *payment.ReturnHandler
	timeout time.Duration
}

func NewPaymentHandler(returns *payment.ReturnHandler, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		returns: returns,
		timeout: timeout,
	}
}

type ReturnResponseDTO struct {
	View          string `json:"view"`
	PaymentStatus string `json:"payment_status"`
	PaymentRef    string `json:"payment_ref"`
	Warning       string `json:"warning,omitempty"`
}

// GET /payment/return?vnp_TxnRef=...&vnp_ResponseCode=...
// The gateway redirects the shopper here after a payment attempt.
func (h *PaymentHandler) Return(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	paymentRef := r.URL.Query().Get("vnp_TxnRef")
	responseCode := r.URL.Query().Get("vnp_ResponseCode")

	outcome, err := h.returns.Resolve(ctx, paymentRef, responseCode)
	if err != nil {
		if errors.Is(err, payment.ErrMissingPaymentRef) {
			respondError(w, http.StatusBadRequest, "missing_payment_ref", "vnp_TxnRef is required")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to resolve payment return")
		return
	}

	resp := ReturnResponseDTO{
		View:          string(outcome.View),
		PaymentStatus: string(outcome.Status),
		PaymentRef:    outcome.PaymentRef,
	}
	// The update failure is a warning only: the view is decided by the
	// gateway response code alone.
	if outcome.UpdateErr != nil {
		resp.Warning = "payment recorded by gateway but status update failed, contact support"
	}

	respondJSON(w, http.StatusOK, resp)
}
