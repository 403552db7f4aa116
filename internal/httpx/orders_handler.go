package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/checkout"
	"github.com/ariefcatur/go-storefront-orders.git/internal/inventory"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type CheckoutEngine interface {
	Checkout(ctx context.Context, req checkout.Request) (*orders.Order, error)
}

type OrderLifecycle interface {
	SetStatus(ctx context.Context, orderID string, to orders.Status, changedBy string) (*orders.Order, error)
	CancelByUser(ctx context.Context, orderID string) (*orders.Order, error)
}

type OrderStore interface {
	FindByID(ctx context.Context, orderID string) (*orders.Order, error)
	List(ctx context.Context, f orders.Filter) ([]orders.Order, error)
}

type OrdersHandler struct {
	Store     OrderStore
	Engine    CheckoutEngine
	Lifecycle OrderLifecycle
	Redis     *redis.Client
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}/status", h.updateStatus)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
}

// POST /orders: checkout. 201 order, 400 validasi (dengan daftar
// outOfStock per line), 409 race stok (fase 2 gagal).
func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Engine.Checkout(ctx, req)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	var ve *checkout.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"outOfStock": ve.Failures})
		return
	}
	var sc *checkout.StockChangedError
	if errors.As(err, &sc) {
		writeJSON(w, http.StatusConflict, map[string]any{"message": sc.Error(), "line": sc.Line})
		return
	}
	if errors.Is(err, checkout.ErrBadRequest) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if errors.Is(err, inventory.ErrProductNotFound) || errors.Is(err, inventory.ErrVariantNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// GET /orders?userId=&status=
func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	f := orders.Filter{UserID: r.URL.Query().Get("userId")}
	if s := r.URL.Query().Get("status"); s != "" {
		if st, ok := orders.ParseStatus(s); ok {
			f.Status = st
		}
	}
	items, err := h.Store.List(ctx, f)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if items == nil {
		items = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Store.FindByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type updateStatusReq struct {
	Status    string `json:"status"`
	ChangedBy string `json:"changedBy"`
}

// PUT /orders/{id}/status: transisi admin. Nilai status di luar set fixed
// ditolak di sini, sebelum menyentuh state machine.
func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	to, ok := orders.ParseStatus(req.Status)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}
	changedBy := req.ChangedBy
	if changedBy == "" {
		changedBy = "admin"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Lifecycle.SetStatus(ctx, chi.URLParam(r, "id"), to, changedBy)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

// POST /orders/{id}/cancel: self-service, hanya pending.
func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Lifecycle.CancelByUser(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if errors.Is(err, orders.ErrNotCancellable) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

// cacheStatus: cache kecil biar polling status order murah. Gagal set
// cache tidak mempengaruhi response.
func (h *OrdersHandler) cacheStatus(ctx context.Context, o *orders.Order) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	b, _ := json.Marshal(map[string]string{"status": string(o.Status)})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}
