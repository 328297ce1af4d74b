package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	m    sync.Mutex
	msgs []kafka.Message
	err  error
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func sampleEvent() OrderPlacedEvent {
	return OrderPlacedEvent{
		OwnerID:    "owner1",
		OrderID:    "ORD-1",
		TotalPrice: 200000,
		Currency:   "VND",
		Items: []OrderPlacedItem{
			{ProductID: "B1", BookName: "Book B1", Quantity: 2},
		},
		PlacedAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestOrderPlaced_KeyedByOwner(t *testing.T) {
	w := &mockWriter{}
	p := &Publisher{writer: w}

	require.NoError(t, p.OrderPlaced(context.Background(), sampleEvent()))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("owner1"), w.msgs[0].Key)

	var got OrderPlacedEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "ORD-1", got.OrderID)
	assert.Equal(t, 200000.0, got.TotalPrice)
	assert.Equal(t, "VND", got.Currency)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "B1", got.Items[0].ProductID)
}

func TestOrderPlaced_FillsEventID(t *testing.T) {
	w := &mockWriter{}
	p := &Publisher{writer: w}

	require.NoError(t, p.OrderPlaced(context.Background(), sampleEvent()))

	var got OrderPlacedEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.NotEmpty(t, got.EventID)
}

func TestOrderPlaced_KeepsCallerEventID(t *testing.T) {
	w := &mockWriter{}
	p := &Publisher{writer: w}

	event := sampleEvent()
	event.EventID = "evt-42"
	require.NoError(t, p.OrderPlaced(context.Background(), event))

	var got OrderPlacedEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "evt-42", got.EventID)
}

func TestOrderPlaced_WriteFailure(t *testing.T) {
	w := &mockWriter{err: assert.AnError}
	p := &Publisher{writer: w}

	err := p.OrderPlaced(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestClose_NilCloser(t *testing.T) {
	p := &Publisher{writer: &mockWriter{}}
	assert.NoError(t, p.Close())
}
