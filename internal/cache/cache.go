package cache

import (
	"context"
	"errors"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
)

// CartCache is the in-memory mirror of the cart store. It is kept in
// sync on every mutation so reads within a session never hit the store.
type CartCache interface {
	Get(ctx context.Context, ownerID string) (domain.Cart, error)
	Set(ctx context.Context, ownerID string, cart domain.Cart) error
	Delete(ctx context.Context, ownerID string) error
}

var ErrCacheMiss = errors.New("cache miss")
