package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/cache"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/cart"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/events"
)

// --- mocks ---

type mockStore struct {
	m     sync.RWMutex
	carts map[string]domain.Cart
}

func newMockStore() *mockStore {
	return &mockStore{carts: make(map[string]domain.Cart)}
}

func (m *mockStore) Load(_ context.Context, ownerID string) (domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	c, ok := m.carts[ownerID]
	if !ok {
		return domain.Cart{OwnerID: ownerID}, nil
	}
	return c, nil
}

func (m *mockStore) Save(_ context.Context, c domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[c.OwnerID] = c
	return nil
}

func (m *mockStore) Delete(_ context.Context, ownerID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, ownerID)
	return nil
}

type mockCache struct {
	m     sync.RWMutex
	carts map[string]domain.Cart
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, ownerID string) (domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	c, ok := m.carts[ownerID]
	if !ok {
		return domain.Cart{}, cache.ErrCacheMiss
	}
	return c, nil
}

func (m *mockCache) Set(_ context.Context, ownerID string, c domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[ownerID] = c
	return nil
}

func (m *mockCache) Delete(_ context.Context, ownerID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, ownerID)
	return nil
}

type mockOrderAPI struct {
	m            sync.Mutex
	confirmation domain.OrderConfirmation
	err          error
	requests     []domain.OrderRequest
}

func (m *mockOrderAPI) CreateOrder(_ context.Context, req domain.OrderRequest) (domain.OrderConfirmation, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return domain.OrderConfirmation{}, m.err
	}
	return m.confirmation, nil
}

type mockSink struct {
	m      sync.Mutex
	events []events.OrderPlacedEvent
	done   chan struct{}
}

func (m *mockSink) OrderPlaced(_ context.Context, e events.OrderPlacedEvent) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.events = append(m.events, e)
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	return nil
}

// --- helpers ---

func newTestManager(t *testing.T, orders OrderAPI, sink EventSink) (*Manager, *cart.Service) {
	t.Helper()
	carts := cart.NewService(newMockStore(), newMockCache())
	return NewManager(carts, orders, sink), carts
}

func fillCart(t *testing.T, carts *cart.Service, ownerID string) {
	t.Helper()
	_, err := carts.AddItem(context.Background(), ownerID, domain.Book{
		ID: "B1", MainText: "Book B1", Price: 100000, Quantity: 10,
	}, 2)
	require.NoError(t, err)
}

// --- tests ---

func TestBegin_StartsAtReview(t *testing.T) {
	m, _ := newTestManager(t, &mockOrderAPI{}, nil)

	assert.Equal(t, domain.StepReview, m.Begin("owner1"))

	step, err := m.Step("owner1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepReview, step)
}

func TestNext_EmptyCartStaysAtReview(t *testing.T) {
	m, _ := newTestManager(t, &mockOrderAPI{}, nil)
	m.Begin("owner1")

	step, err := m.Next(context.Background(), "owner1")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, domain.StepReview, step)

	current, err := m.Step("owner1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepReview, current)
}

func TestNext_AdvancesWithItems(t *testing.T) {
	m, carts := newTestManager(t, &mockOrderAPI{}, nil)
	fillCart(t, carts, "owner1")
	m.Begin("owner1")

	step, err := m.Next(context.Background(), "owner1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepDetails, step)
}

func TestBack_FromDetails(t *testing.T) {
	m, carts := newTestManager(t, &mockOrderAPI{}, nil)
	fillCart(t, carts, "owner1")
	m.Begin("owner1")
	_, err := m.Next(context.Background(), "owner1")
	require.NoError(t, err)

	step, err := m.Back("owner1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepReview, step)

	// The cart is untouched by going back.
	c, err := carts.GetCart(context.Background(), "owner1")
	require.NoError(t, err)
	assert.Len(t, c.Lines, 1)
}

func TestBack_FromReviewIsIllegal(t *testing.T) {
	m, _ := newTestManager(t, &mockOrderAPI{}, nil)
	m.Begin("owner1")

	_, err := m.Back("owner1")
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestStep_NoSession(t *testing.T) {
	m, _ := newTestManager(t, &mockOrderAPI{}, nil)

	_, err := m.Step("owner1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func validDetails() domain.CheckoutDetails {
	return domain.CheckoutDetails{
		Name:    "Nguyen Van A",
		Phone:   "0901234567",
		Address: "1 Le Loi, Q1, HCMC",
		Method:  domain.PaymentMethodCOD,
	}
}

func toDetails(t *testing.T, m *Manager, ownerID string) {
	t.Helper()
	m.Begin(ownerID)
	_, err := m.Next(context.Background(), ownerID)
	require.NoError(t, err)
}

func TestSubmit_Success(t *testing.T) {
	orders := &mockOrderAPI{confirmation: domain.OrderConfirmation{OrderID: "ORD-1"}}
	m, carts := newTestManager(t, orders, nil)
	fillCart(t, carts, "owner1")
	toDetails(t, m, "owner1")

	confirmation, err := m.Submit(context.Background(), "owner1", validDetails())
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", confirmation.OrderID)

	// Total is quantity x unit price: 2 x 100000.
	require.Len(t, orders.requests, 1)
	assert.Equal(t, 200000.0, orders.requests[0].TotalPrice)
	assert.Equal(t, domain.PaymentMethodCOD, orders.requests[0].Type)

	// Cart cleared, step terminal.
	c, err := carts.GetCart(context.Background(), "owner1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	step, err := m.Step("owner1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepConfirmation, step)
}

func TestSubmit_OrderAPIFailureKeepsCartAndStep(t *testing.T) {
	orders := &mockOrderAPI{err: errors.New("backend unavailable")}
	m, carts := newTestManager(t, orders, nil)
	fillCart(t, carts, "owner1")
	toDetails(t, m, "owner1")

	_, err := m.Submit(context.Background(), "owner1", validDetails())
	require.Error(t, err)

	c, err := carts.GetCart(context.Background(), "owner1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)

	step, err := m.Step("owner1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepDetails, step)

	// The owner can retry the submission.
	orders.err = nil
	orders.confirmation = domain.OrderConfirmation{OrderID: "ORD-2"}
	confirmation, err := m.Submit(context.Background(), "owner1", validDetails())
	require.NoError(t, err)
	assert.Equal(t, "ORD-2", confirmation.OrderID)
}

func TestSubmit_InvalidDetailsNoCall(t *testing.T) {
	orders := &mockOrderAPI{}
	m, carts := newTestManager(t, orders, nil)
	fillCart(t, carts, "owner1")
	toDetails(t, m, "owner1")

	details := validDetails()
	details.Phone = ""

	_, err := m.Submit(context.Background(), "owner1", details)
	assert.ErrorIs(t, err, domain.ErrDetailsIncomplete)
	assert.Empty(t, orders.requests)

	step, err := m.Step("owner1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepDetails, step)
}

func TestSubmit_FromReviewIsIllegal(t *testing.T) {
	m, carts := newTestManager(t, &mockOrderAPI{}, nil)
	fillCart(t, carts, "owner1")
	m.Begin("owner1")

	_, err := m.Submit(context.Background(), "owner1", validDetails())
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestSubmit_PublishesOrderPlacedEvent(t *testing.T) {
	sink := &mockSink{done: make(chan struct{})}
	done := sink.done
	orders := &mockOrderAPI{confirmation: domain.OrderConfirmation{OrderID: "ORD-1"}}
	m, carts := newTestManager(t, orders, sink)
	fillCart(t, carts, "owner1")
	toDetails(t, m, "owner1")

	_, err := m.Submit(context.Background(), "owner1", validDetails())
	require.NoError(t, err)

	<-done
	sink.m.Lock()
	defer sink.m.Unlock()
	require.Len(t, sink.events, 1)
	assert.Equal(t, "ORD-1", sink.events[0].OrderID)
	assert.Equal(t, "owner1", sink.events[0].OwnerID)
	assert.Equal(t, 200000.0, sink.events[0].TotalPrice)
}

type blockingOrderAPI struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingOrderAPI) CreateOrder(ctx context.Context, _ domain.OrderRequest) (domain.OrderConfirmation, error) {
	close(b.started)
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return domain.OrderConfirmation{OrderID: "ORD-1"}, nil
}

func TestSubmit_RefusesReentrantSubmission(t *testing.T) {
	orders := &blockingOrderAPI{started: make(chan struct{}), release: make(chan struct{})}
	m, carts := newTestManager(t, orders, nil)
	fillCart(t, carts, "owner1")
	toDetails(t, m, "owner1")

	firstDone := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), "owner1", validDetails())
		firstDone <- err
	}()

	<-orders.started
	_, err := m.Submit(context.Background(), "owner1", validDetails())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(orders.release)
	require.NoError(t, <-firstDone)
}

func TestNext_ConcurrentWithBackKeepsStepConsistent(t *testing.T) {
	m, carts := newTestManager(t, &mockOrderAPI{}, nil)
	fillCart(t, carts, "owner1")
	m.Begin("owner1")

	// Double-clicks and second tabs hit Next and Back for one owner at
	// the same time; the session must stay on a legal step throughout.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = m.Next(context.Background(), "owner1")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = m.Back("owner1")
			}
		}()
	}
	wg.Wait()

	step, err := m.Step("owner1")
	require.NoError(t, err)
	assert.Contains(t, []domain.CheckoutStep{domain.StepReview, domain.StepDetails}, step)
}

func TestBegin_AfterConfirmationRestartsFlow(t *testing.T) {
	orders := &mockOrderAPI{confirmation: domain.OrderConfirmation{OrderID: "ORD-1"}}
	m, carts := newTestManager(t, orders, nil)
	fillCart(t, carts, "owner1")
	toDetails(t, m, "owner1")

	_, err := m.Submit(context.Background(), "owner1", validDetails())
	require.NoError(t, err)

	assert.Equal(t, domain.StepReview, m.Begin("owner1"))
}

func TestLeave_DiscardsSessionKeepsCart(t *testing.T) {
	m, carts := newTestManager(t, &mockOrderAPI{}, nil)
	fillCart(t, carts, "owner1")
	toDetails(t, m, "owner1")

	m.Leave("owner1")

	_, err := m.Step("owner1")
	assert.ErrorIs(t, err, ErrNoSession)

	c, err := carts.GetCart(context.Background(), "owner1")
	require.NoError(t, err)
	assert.Len(t, c.Lines, 1)
}
