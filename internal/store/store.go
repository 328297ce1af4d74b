package store

import (
	"context"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
)

// CartStore persists one cart per owner. Loading an owner with no stored
// cart (or with an unreadable one) yields an empty cart rather than an
// error; storage problems on read are never fatal to the storefront.
// Consumers define this interface, not the MongoDB implementation.
type CartStore interface {
	Load(ctx context.Context, ownerID string) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
	Delete(ctx context.Context, ownerID string) error
}
