package domain

type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "COD"
	PaymentMethodBanking PaymentMethod = "BANKING"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodBanking
}

type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "PAYMENT_SUCCEED"
	PaymentStatusFailed    PaymentStatus = "PAYMENT_FAILED"
)

// OrderDetail is one line of an order request, keyed by product ID.
type OrderDetail struct {
	ProductID string `json:"_id"`
	BookName  string `json:"bookName"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest is the payload submitted to the Order API. It is derived
// from the checkout details plus the cart at submission time and never
// stored locally.
type OrderRequest struct {
	Name       string        `json:"name"`
	Address    string        `json:"address"`
	Phone      string        `json:"phone"`
	TotalPrice float64       `json:"totalPrice"`
	Type       PaymentMethod `json:"type"`
	Detail     []OrderDetail `json:"detail"`
}

// NewOrderRequest packages the cart contents and details into an order
// request. The total is quantity times snapshot unit price, summed.
func NewOrderRequest(details CheckoutDetails, cart Cart) OrderRequest {
	detail := make([]OrderDetail, len(cart.Lines))
	for i, line := range cart.Lines {
		detail[i] = OrderDetail{
			ProductID: line.ProductID,
			BookName:  line.Detail.MainText,
			Quantity:  line.Quantity,
		}
	}

	total, _ := cart.TotalPrice().Float64()

	return OrderRequest{
		Name:       details.Name,
		Address:    details.Address,
		Phone:      details.Phone,
		TotalPrice: total,
		Type:       details.Method,
		Detail:     detail,
	}
}

// OrderConfirmation is what the Order API reports back for a created order.
type OrderConfirmation struct {
	OrderID    string `json:"_id"`
	PaymentRef string `json:"paymentRef,omitempty"`
	PaymentURL string `json:"paymentUrl,omitempty"`
}
