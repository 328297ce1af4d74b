package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/cache"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/store"
	"golang.org/x/sync/singleflight"
)

// Service owns every cart mutation. The durable store is the source of
// truth; the cache mirrors it and is rewritten on each mutation so the
// two never diverge within a session.
type Service struct {
	store store.CartStore
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(store store.CartStore, cache cache.CartCache) *Service {
	return &Service{
		store: store,
		cache: cache,
	}
}

func (s *Service) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	// Use singleflight to collapse concurrent cache misses for the same owner
	v, err, _ := s.sfg.Do(ownerID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, ownerID)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errLoad := s.store.Load(ctx, ownerID)
		if errLoad != nil {
			return domain.Cart{}, errLoad
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.Set(ctx, ownerID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return domain.Cart{}, err
	}

	return v.(domain.Cart), nil
}

// AddItem merges the book into the owner's cart (summing quantities for
// a product already present) and persists the result.
func (s *Service) AddItem(ctx context.Context, ownerID string, book domain.Book, quantity int) (domain.Cart, error) {
	cart, err := s.store.Load(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, err
	}

	if errAdd := cart.AddItem(book, quantity); errAdd != nil {
		return cart, errAdd
	}

	if errSave := s.persist(ctx, cart); errSave != nil {
		return domain.Cart{}, errSave
	}
	return cart, nil
}

func (s *Service) SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (domain.Cart, error) {
	cart, err := s.store.Load(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, err
	}

	if errSet := cart.SetQuantity(productID, quantity); errSet != nil {
		return cart, errSet
	}

	if errSave := s.persist(ctx, cart); errSave != nil {
		return domain.Cart{}, errSave
	}
	return cart, nil
}

func (s *Service) RemoveItem(ctx context.Context, ownerID, productID string) (domain.Cart, error) {
	cart, err := s.store.Load(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart.RemoveItem(productID)

	if errSave := s.persist(ctx, cart); errSave != nil {
		return domain.Cart{}, errSave
	}
	return cart, nil
}

// Clear empties the owner's cart. Called once an order has been accepted.
func (s *Service) Clear(ctx context.Context, ownerID string) error {
	if err := s.store.Delete(ctx, ownerID); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, ownerID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
	return nil
}

// MergeCarts folds the cart of fromOwner into the cart of intoOwner,
// deduplicating by product ID, then drops the source cart. Used when a
// guest session signs in.
func (s *Service) MergeCarts(ctx context.Context, fromOwner, intoOwner string) (domain.Cart, error) {
	if fromOwner == intoOwner {
		return s.GetCart(ctx, intoOwner)
	}

	source, err := s.store.Load(ctx, fromOwner)
	if err != nil {
		return domain.Cart{}, err
	}

	target, err := s.store.Load(ctx, intoOwner)
	if err != nil {
		return domain.Cart{}, err
	}

	target.Merge(source)

	if errSave := s.persist(ctx, target); errSave != nil {
		return domain.Cart{}, errSave
	}

	if errClear := s.Clear(ctx, fromOwner); errClear != nil {
		log.Printf("failed to drop merged cart for owner %s: %v", fromOwner, errClear)
	}

	return target, nil
}

// persist writes the cart to the store and rewrites the cache mirror.
// A failed mirror write falls back to invalidation so the next read
// reloads from the store.
func (s *Service) persist(ctx context.Context, cart domain.Cart) error {
	if err := s.store.Save(ctx, cart); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}

	if err := s.cache.Set(ctx, cart.OwnerID, cart); err != nil {
		log.Printf("cache set error: %v", err)
		if errDel := s.cache.Delete(ctx, cart.OwnerID); errDel != nil {
			log.Printf("cache invalidate error: %v", errDel)
		}
	}
	return nil
}
