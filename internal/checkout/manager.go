package checkout

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/cart"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/events"
)

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition  = errors.New("illegal transition of checkout step")
	ErrNoSession          = errors.New("no checkout session in progress")
	ErrSubmissionInFlight = errors.New("order submission already in flight")
)

// OrderAPI is the slice of the Order API the checkout flow needs.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderConfirmation, error)
}

// EventSink receives order-placed notifications. May be absent.
type EventSink interface {
	OrderPlaced(ctx context.Context, event events.OrderPlacedEvent) error
}

type session struct {
	step    domain.CheckoutStep
	details domain.CheckoutDetails
	busy    bool
}

// Manager drives the Review -> Details -> Confirmation flow, one
// transient session per cart owner. Sessions are never persisted; the
// cart survives them.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session

	carts  *cart.Service
	orders OrderAPI
	events EventSink
}

func NewManager(carts *cart.Service, orders OrderAPI, sink EventSink) *Manager {
	return &Manager{
		sessions: make(map[string]*session),
		carts:    carts,
		orders:   orders,
		events:   sink,
	}
}

// Begin opens a checkout session at the review step. A session already
// at confirmation is terminal, so beginning again restarts the flow.
func (m *Manager) Begin(ownerID string) domain.CheckoutStep {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[ownerID]
	if !ok || sess.step.IsTerminal() {
		sess = &session{step: domain.StepReview}
		m.sessions[ownerID] = sess
	}
	return sess.step
}

// Step reports the current step of the owner's session.
func (m *Manager) Step(ownerID string) (domain.CheckoutStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[ownerID]
	if !ok {
		return 0, ErrNoSession
	}
	return sess.step, nil
}

// Next advances Review -> Details. The transition is refused while the
// cart has no lines.
func (m *Manager) Next(ctx context.Context, ownerID string) (domain.CheckoutStep, error) {
	m.mu.Lock()
	sess, ok := m.sessions[ownerID]
	if !ok {
		m.mu.Unlock()
		return 0, ErrNoSession
	}
	step := sess.step
	m.mu.Unlock()

	if !domain.CanTransitionTo(step, domain.StepDetails) {
		return step, ErrIllegalTransition
	}

	current, err := m.carts.GetCart(ctx, ownerID)
	if err != nil {
		return step, err
	}
	if current.IsEmpty() {
		return step, ErrEmptyCart
	}

	// The cart read ran outside the lock; a concurrent request may have
	// moved the session meanwhile, so the transition is re-checked.
	m.mu.Lock()
	defer m.mu.Unlock()
	if !domain.CanTransitionTo(sess.step, domain.StepDetails) {
		return sess.step, ErrIllegalTransition
	}
	sess.step = domain.StepDetails
	return sess.step, nil
}

// Back returns Details -> Review. Going back never mutates the cart.
func (m *Manager) Back(ownerID string) (domain.CheckoutStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[ownerID]
	if !ok {
		return 0, ErrNoSession
	}
	if !domain.CanTransitionTo(sess.step, domain.StepReview) {
		return sess.step, ErrIllegalTransition
	}

	sess.step = domain.StepReview
	return sess.step, nil
}

// Leave discards the owner's session. The cart is untouched.
func (m *Manager) Leave(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, ownerID)
}

// Submit validates the details, submits the order and, only once the
// Order API confirms it, clears the cart and moves to confirmation. On
// any failure the cart and step are left as they were so the owner can
// resubmit. A busy flag refuses re-entrant submissions.
func (m *Manager) Submit(ctx context.Context, ownerID string, details domain.CheckoutDetails) (domain.OrderConfirmation, error) {
	m.mu.Lock()
	sess, ok := m.sessions[ownerID]
	if !ok {
		m.mu.Unlock()
		return domain.OrderConfirmation{}, ErrNoSession
	}
	if sess.step != domain.StepDetails {
		m.mu.Unlock()
		return domain.OrderConfirmation{}, ErrIllegalTransition
	}
	if sess.busy {
		m.mu.Unlock()
		return domain.OrderConfirmation{}, ErrSubmissionInFlight
	}
	sess.busy = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		sess.busy = false
		m.mu.Unlock()
	}()

	if err := details.Validate(); err != nil {
		return domain.OrderConfirmation{}, err
	}

	current, err := m.carts.GetCart(ctx, ownerID)
	if err != nil {
		return domain.OrderConfirmation{}, err
	}
	if current.IsEmpty() {
		return domain.OrderConfirmation{}, ErrEmptyCart
	}

	req := domain.NewOrderRequest(details, current)

	confirmation, err := m.orders.CreateOrder(ctx, req)
	if err != nil {
		return domain.OrderConfirmation{}, err
	}

	// The order exists from here on: clear the cart before reporting back.
	if errClear := m.carts.Clear(ctx, ownerID); errClear != nil {
		log.Printf("order %s created but cart %s not cleared: %v", confirmation.OrderID, ownerID, errClear)
	}

	m.mu.Lock()
	sess.details = details
	sess.step = domain.StepConfirmation
	m.mu.Unlock()

	m.publishOrderPlaced(ownerID, confirmation, req)

	return confirmation, nil
}

func (m *Manager) publishOrderPlaced(ownerID string, confirmation domain.OrderConfirmation, req domain.OrderRequest) {
	if m.events == nil {
		return
	}

	items := make([]events.OrderPlacedItem, len(req.Detail))
	for i, d := range req.Detail {
		items[i] = events.OrderPlacedItem{
			ProductID: d.ProductID,
			BookName:  d.BookName,
			Quantity:  d.Quantity,
		}
	}
	event := events.OrderPlacedEvent{
		OwnerID:    ownerID,
		OrderID:    confirmation.OrderID,
		TotalPrice: req.TotalPrice,
		Currency:   "VND",
		Items:      items,
		PlacedAt:   time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.events.OrderPlaced(ctx, event); err != nil {
			log.Printf("failed to publish order-placed event for order %s: %v", confirmation.OrderID, err)
		}
	}()
}
