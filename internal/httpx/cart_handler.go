package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/checkout"
	"github.com/go-chi/chi/v5"
)

type CartStore interface {
	Find(ctx context.Context, userID string) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
	Clear(ctx context.Context, userID string) error
}

type CartReader interface {
	CartAvailability(ctx context.Context, userID string) (*checkout.EnrichedCart, error)
	Preview(ctx context.Context, userID string) (*checkout.Preview, error)
}

type CartHandler struct {
	Carts  CartStore
	Engine CartReader
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart/{userId}", h.getCart)
	r.Post("/cart", h.addToCart)
	r.Put("/cart/qty", h.updateQty)
	r.Delete("/cart/{userId}", h.clearCart)
	r.Post("/cart/merge", h.mergeCart)
	r.Get("/cart/{userId}/preview", h.preview)
}

// GET /cart/{userId}: isi cart + availableQty/isOutOfStock per line.
func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ec, err := h.Engine.CartAvailability(ctx, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ec)
}

type addToCartReq struct {
	UserID string    `json:"userId"`
	Item   cart.Line `json:"item"`
}

func (h *CartHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Item.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId and item required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Carts.Find(ctx, req.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if c == nil {
		c = &cart.Cart{UserID: req.UserID}
	}
	c.Upsert(req.Item)
	if err := h.Carts.Save(ctx, c); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.respondEnriched(ctx, w, req.UserID)
}

type updateQtyReq struct {
	UserID      string `json:"userId"`
	ProductName string `json:"productName"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Qty         int    `json:"qty"`
}

func (h *CartHandler) updateQty(w http.ResponseWriter, r *http.Request) {
	var req updateQtyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.ProductName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid data"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Carts.Find(ctx, req.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart not found"})
		return
	}
	if !c.SetQty(req.ProductName, req.Size, req.Color, req.Qty) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}
	if err := h.Carts.Save(ctx, c); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.respondEnriched(ctx, w, req.UserID)
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Carts.Clear(ctx, userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type mergeCartReq struct {
	UserID string      `json:"userId"`
	Items  []cart.Line `json:"items"`
}

// POST /cart/merge: lipat cart guest ke cart user.
func (h *CartHandler) mergeCart(w http.ResponseWriter, r *http.Request) {
	var req mergeCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Items == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId and items required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Carts.Find(ctx, req.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if c == nil {
		c = &cart.Cart{UserID: req.UserID}
	}
	c.Merge(req.Items)
	if err := h.Carts.Save(ctx, c); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.respondEnriched(ctx, w, req.UserID)
}

func (h *CartHandler) preview(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	pv, err := h.Engine.Preview(ctx, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

func (h *CartHandler) respondEnriched(ctx context.Context, w http.ResponseWriter, userID string) {
	ec, err := h.Engine.CartAvailability(ctx, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "cart": ec})
}
