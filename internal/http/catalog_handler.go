package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/catalog"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
)

type CatalogHandler struct {
	books   *catalog.Client
	timeout time.Duration
}

func NewCatalogHandler(books *catalog.Client, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		books:   books,
		timeout: timeout,
	}
}

type BookListResponseDTO struct {
	Result []domain.Book `json:"result"`
}

// GET /api/v1/books?current=&pageSize=&category=&minPrice=&maxPrice=&sort=
// Fetches a page from the Book API, then filters and sorts it locally.
func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	current := intQuery(q.Get("current"), 1)
	pageSize := intQuery(q.Get("pageSize"), 20)

	books, err := h.books.FetchPage(ctx, current, pageSize)
	if err != nil {
		respondError(w, http.StatusBadGateway, "book_fetch_failed", "failed to fetch books")
		return
	}

	filter := catalog.Filter{
		Category: q.Get("category"),
		MinPrice: floatQuery(q.Get("minPrice")),
		MaxPrice: floatQuery(q.Get("maxPrice")),
	}
	books = filter.Apply(books)
	books = catalog.Sort(books, q.Get("sort"))

	respondJSON(w, http.StatusOK, BookListResponseDTO{Result: books})
}

func intQuery(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func floatQuery(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
