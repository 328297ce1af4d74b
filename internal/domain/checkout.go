package domain

import (
	"errors"
	"fmt"
)

type CheckoutStep int

const (
	StepReview CheckoutStep = iota
	StepDetails
	StepConfirmation
)

// String representation (for logging)
func (s CheckoutStep) String() string {
	switch s {
	case StepReview:
		return "REVIEW"
	case StepDetails:
		return "DETAILS"
	case StepConfirmation:
		return "CONFIRMATION"
	default:
		return "UNKNOWN"
	}
}

func (s CheckoutStep) IsTerminal() bool {
	return s == StepConfirmation
}

// CanTransitionTo reports whether the checkout flow allows moving from
// one step to another. No transition skips a step and confirmation is
// only reachable from the details step.
func CanTransitionTo(from, to CheckoutStep) bool {
	switch from {
	case StepReview:
		return to == StepDetails
	case StepDetails:
		return to == StepReview || to == StepConfirmation
	default:
		return false
	}
}

var (
	ErrDetailsIncomplete    = errors.New("required checkout field is empty")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// CheckoutDetails holds the payment form values collected on the details
// step. They live only for the duration of a checkout session.
type CheckoutDetails struct {
	Name    string        `json:"name"`
	Phone   string        `json:"phone"`
	Address string        `json:"address"`
	Method  PaymentMethod `json:"method"`
}

func (d CheckoutDetails) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name", ErrDetailsIncomplete)
	}
	if d.Phone == "" {
		return fmt.Errorf("%w: phone", ErrDetailsIncomplete)
	}
	if d.Address == "" {
		return fmt.Errorf("%w: address", ErrDetailsIncomplete)
	}
	if !d.Method.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, d.Method)
	}
	return nil
}
