package domain

import "time"

// Book is the display snapshot of a catalog item captured when the item
// enters a cart. Field names follow the backend's book resource so that
// stored carts round-trip unchanged.
type Book struct {
	ID        string    `json:"_id" bson:"_id"`
	MainText  string    `json:"mainText" bson:"mainText"`
	Author    string    `json:"author" bson:"author"`
	Price     float64   `json:"price" bson:"price"`
	Sold      int       `json:"sold" bson:"sold"`
	Quantity  int       `json:"quantity" bson:"quantity"` // available stock
	Category  string    `json:"category" bson:"category"`
	Thumbnail string    `json:"thumbnail" bson:"thumbnail"`
	CreatedAt time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}
