package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderRequest(t *testing.T) {
	var c Cart
	require.NoError(t, c.AddItem(book("B1", 100000, 10), 2))
	require.NoError(t, c.AddItem(book("B2", 50000, 10), 1))

	details := CheckoutDetails{
		Name:    "Nguyen Van A",
		Phone:   "0901234567",
		Address: "1 Le Loi, Q1, HCMC",
		Method:  PaymentMethodCOD,
	}

	req := NewOrderRequest(details, c)

	assert.Equal(t, "Nguyen Van A", req.Name)
	assert.Equal(t, "0901234567", req.Phone)
	assert.Equal(t, "1 Le Loi, Q1, HCMC", req.Address)
	assert.Equal(t, PaymentMethodCOD, req.Type)
	assert.Equal(t, 250000.0, req.TotalPrice)

	require.Len(t, req.Detail, 2)
	assert.Equal(t, OrderDetail{ProductID: "B1", BookName: "Book B1", Quantity: 2}, req.Detail[0])
	assert.Equal(t, OrderDetail{ProductID: "B2", BookName: "Book B2", Quantity: 1}, req.Detail[1])
}
