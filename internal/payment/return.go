package payment

import (
	"context"
	"errors"
	"log"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
)

var ErrMissingPaymentRef = errors.New("missing payment transaction reference")

// SuccessResponseCode is the gateway response code that denotes a
// completed payment. Every other code is a failure.
const SuccessResponseCode = "00"

// StatusUpdater is the slice of the Payment Status API the return
// handler needs.
type StatusUpdater interface {
	UpdatePaymentStatus(ctx context.Context, status domain.PaymentStatus, paymentRef string) error
}

type View string

const (
	ViewOrderConfirmed View = "order_confirmed"
	ViewPaymentFailed  View = "payment_failed"
)

// Outcome is the terminal result of a gateway return. The view is
// decided by the response code alone; a failed status update is carried
// separately as a warning.
type Outcome struct {
	View       View
	Status     domain.PaymentStatus
	PaymentRef string
	UpdateErr  error
}

// ReturnHandler consumes the redirect the payment gateway issues after a
// payment attempt.
type ReturnHandler struct {
	payments StatusUpdater
}

func NewReturnHandler(payments StatusUpdater) *ReturnHandler {
	return &ReturnHandler{payments: payments}
}

// Resolve maps the gateway response code to a payment status, pushes
// that status to the backend and reports the terminal view. Without a
// transaction reference no call is made and no view is produced.
func (h *ReturnHandler) Resolve(ctx context.Context, paymentRef, responseCode string) (Outcome, error) {
	if paymentRef == "" {
		return Outcome{}, ErrMissingPaymentRef
	}

	status := domain.PaymentStatusFailed
	if responseCode == SuccessResponseCode {
		status = domain.PaymentStatusSucceeded
	}

	updateErr := h.payments.UpdatePaymentStatus(ctx, status, paymentRef)
	if updateErr != nil {
		log.Printf("payment status update failed for ref %s: %v", paymentRef, updateErr)
	}

	view := ViewPaymentFailed
	if responseCode == SuccessResponseCode {
		view = ViewOrderConfirmed
	}

	return Outcome{
		View:       view,
		Status:     status,
		PaymentRef: paymentRef,
		UpdateErr:  updateErr,
	}, nil
}
