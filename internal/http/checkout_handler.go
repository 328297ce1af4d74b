package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/checkout"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/client"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
)

type CheckoutHandler struct {
	manager *checkout.Manager
	timeout time.Duration
}

func NewCheckoutHandler(manager *checkout.Manager, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		manager: manager,
		timeout: timeout,
	}
}

type StepResponseDTO struct {
	Step  int    `json:"step"`
	Title string `json:"title"`
}

type SubmitRequestDTO struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Method  string `json:"method"`
}

type SubmitResponseDTO struct {
	OrderID    string `json:"order_id"`
	PaymentRef string `json:"payment_ref,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
	Step       int    `json:"step"`
}

func stepResponse(s domain.CheckoutStep) StepResponseDTO {
	return StepResponseDTO{Step: int(s), Title: s.String()}
}

// GET /api/v1/checkout
func (h *CheckoutHandler) CurrentStep(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart session")
		return
	}

	step, err := h.manager.Step(ownerID)
	if err != nil {
		respondError(w, http.StatusNotFound, "no_session", "no checkout in progress")
		return
	}
	respondJSON(w, http.StatusOK, stepResponse(step))
}

// POST /api/v1/checkout/begin
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart session")
		return
	}

	step := h.manager.Begin(ownerID)
	respondJSON(w, http.StatusOK, stepResponse(step))
}

// POST /api/v1/checkout/next
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := ownerFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart session")
		return
	}

	step, err := h.manager.Next(ctx, ownerID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stepResponse(step))
}

// POST /api/v1/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart session")
		return
	}

	step, err := h.manager.Back(ownerID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stepResponse(step))
}

// POST /api/v1/checkout/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := ownerFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart session")
		return
	}

	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	details := domain.CheckoutDetails{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Method:  domain.PaymentMethod(req.Method),
	}

	confirmation, err := h.manager.Submit(ctx, ownerID, details)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitResponseDTO{
		OrderID:    confirmation.OrderID,
		PaymentRef: confirmation.PaymentRef,
		PaymentURL: confirmation.PaymentURL,
		Step:       int(domain.StepConfirmation),
	})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "cart_empty", "Cart is Empty.")
	case errors.Is(err, checkout.ErrNoSession):
		respondError(w, http.StatusNotFound, "no_session", "no checkout in progress")
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", "checkout step does not allow this action")
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", "order submission already in progress")
	case errors.Is(err, domain.ErrDetailsIncomplete), errors.Is(err, domain.ErrUnknownPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_details", err.Error())
	case errors.Is(err, client.ErrOrderRejected):
		respondError(w, http.StatusBadGateway, "order_failed", err.Error())
	default:
		respondError(w, http.StatusBadGateway, "order_failed", "order submission failed")
	}
}
