package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/notify"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type NotifyStore interface {
	Create(ctx context.Context, req *notify.Request) error
}

type NotifyHandler struct {
	Store NotifyStore
}

func (h *NotifyHandler) Register(r *chi.Mux) {
	r.Post("/notify", h.createRequest)
}

type notifyReq struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// POST /notify: daftar "kabari kalau stok balik" untuk satu variant.
func (h *NotifyHandler) createRequest(w http.ResponseWriter, r *http.Request) {
	var req notifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId and productId required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	nr := &notify.Request{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
	}
	if err := h.Store.Create(ctx, nr); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, nr)
}
