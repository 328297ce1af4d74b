package catalog

import (
	"sort"
	"strings"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
)

// Filter narrows an already-fetched book list. Zero values leave the
// corresponding dimension unfiltered.
type Filter struct {
	Category string
	MinPrice float64
	MaxPrice float64
}

func (f Filter) Apply(books []domain.Book) []domain.Book {
	out := make([]domain.Book, 0, len(books))
	for _, b := range books {
		if f.Category != "" && !strings.EqualFold(b.Category, f.Category) {
			continue
		}
		if f.MinPrice > 0 && b.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && b.Price > f.MaxPrice {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Sort orders a copy of the list by the given key: "price", "-price",
// "-sold" or "-createdAt". Unknown keys fall back to "-sold", the
// storefront default.
func Sort(books []domain.Book, key string) []domain.Book {
	out := make([]domain.Book, len(books))
	copy(out, books)

	var less func(a, b domain.Book) bool
	switch key {
	case "price":
		less = func(a, b domain.Book) bool { return a.Price < b.Price }
	case "-price":
		less = func(a, b domain.Book) bool { return a.Price > b.Price }
	case "-createdAt":
		less = func(a, b domain.Book) bool { return a.CreatedAt.After(b.CreatedAt) }
	default: // "-sold"
		less = func(a, b domain.Book) bool { return a.Sold > b.Sold }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
