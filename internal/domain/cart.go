package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("item not found in cart")
)

// CartLine is one product-quantity pairing. The wire shape matches the
// stored "carts" value: {_id, quantity, detail}.
type CartLine struct {
	ProductID string `json:"_id" bson:"_id"`
	Quantity  int    `json:"quantity" bson:"quantity"`
	Detail    Book   `json:"detail" bson:"detail"`
}

// Cart is an ordered list of lines, first-added first. Product IDs are
// unique within a cart; all writes go through the methods below.
type Cart struct {
	OwnerID string
	Lines   []CartLine
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) find(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges quantity into an existing line for the same product or
// appends a new line with a snapshot of the book. The resulting quantity
// is capped at the stock recorded in the snapshot.
func (c *Cart) AddItem(book Book, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	if i := c.find(book.ID); i > -1 {
		c.Lines[i].Quantity = clampToStock(c.Lines[i].Quantity+quantity, c.Lines[i].Detail.Quantity)
		return nil
	}

	c.Lines = append(c.Lines, CartLine{
		ProductID: book.ID,
		Quantity:  clampToStock(quantity, book.Quantity),
		Detail:    book,
	})
	return nil
}

// SetQuantity overwrites a line's quantity. Values below 1 are rejected;
// decrementing never removes the line. Values above the snapshot stock
// are clamped.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	i := c.find(productID)
	if i == -1 {
		return ErrItemNotFound
	}

	c.Lines[i].Quantity = clampToStock(quantity, c.Lines[i].Detail.Quantity)
	return nil
}

// RemoveItem deletes the matching line. Removing an absent product is a no-op.
func (c *Cart) RemoveItem(productID string) {
	i := c.find(productID)
	if i == -1 {
		return
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// Merge folds another cart into this one, deduplicating by product ID.
// Quantities of shared products are summed (capped at stock); new lines
// keep their relative order and append after existing ones.
func (c *Cart) Merge(other Cart) {
	for _, line := range other.Lines {
		if i := c.find(line.ProductID); i > -1 {
			c.Lines[i].Quantity = clampToStock(c.Lines[i].Quantity+line.Quantity, c.Lines[i].Detail.Quantity)
			continue
		}
		c.Lines = append(c.Lines, line)
	}
}

// TotalPrice sums quantity times snapshot unit price over all lines.
func (c *Cart) TotalPrice() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range c.Lines {
		price := decimal.NewFromFloat(line.Detail.Price)
		sum = sum.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return sum
}

// clampToStock caps quantity at the snapshot stock. A stock of 0 means
// the snapshot carried no stock figure, so the quantity stays unclamped
// and the Order API remains the authority on availability.
func clampToStock(quantity, stock int) int {
	if stock > 0 && quantity > stock {
		return stock
	}
	return quantity
}
