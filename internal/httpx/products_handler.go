package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/catalog"
	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type ProductStore interface {
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
	List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)
}

type ProductsHandler struct {
	Store ProductStore
	Redis *redis.Client
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
}

// GET /products?search=&category=&featured=true&maxPrice=
func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	f := catalog.Filter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Featured: r.URL.Query().Get("featured") == "true",
	}
	if mp := r.URL.Query().Get("maxPrice"); mp != "" {
		if n, err := strconv.Atoi(mp); err == nil && n > 0 {
			f.MaxPriceCents = n
		}
	}

	ps, err := h.Store.List(ctx, f)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	items := make([]catalog.Summary, 0, len(ps))
	for _, p := range ps {
		items = append(items, catalog.Summarize(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (h *ProductsHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache ringkasan ketersediaan, TTL pendek: boleh sedikit stale,
	// checkout tetap divalidasi dari Ledger
	key := fmt.Sprintf(redisx.KeyAvailability, id)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	p, err := h.Store.FindByID(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	sum := catalog.Summarize(*p)
	if h.Redis != nil {
		if b, err := json.Marshal(sum); err == nil {
			_ = h.Redis.Set(ctx, key, b, redisx.TTLAvailability).Err()
		}
	}
	writeJSON(w, http.StatusOK, sum)
}
