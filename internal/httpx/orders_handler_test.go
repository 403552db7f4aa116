package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariefcatur/go-storefront-orders.git/internal/checkout"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	order *orders.Order
	err   error
}

func (s *stubEngine) Checkout(ctx context.Context, req checkout.Request) (*orders.Order, error) {
	return s.order, s.err
}

type stubLifecycle struct {
	order *orders.Order
	err   error
}

func (s *stubLifecycle) SetStatus(ctx context.Context, orderID string, to orders.Status, changedBy string) (*orders.Order, error) {
	return s.order, s.err
}

func (s *stubLifecycle) CancelByUser(ctx context.Context, orderID string) (*orders.Order, error) {
	return s.order, s.err
}

type stubStore struct {
	order *orders.Order
	err   error
}

func (s *stubStore) FindByID(ctx context.Context, orderID string) (*orders.Order, error) {
	return s.order, s.err
}

func (s *stubStore) List(ctx context.Context, f orders.Filter) ([]orders.Order, error) {
	if s.order == nil {
		return nil, s.err
	}
	return []orders.Order{*s.order}, s.err
}

func newTestRouter(h *OrdersHandler) http.Handler {
	r := NewRouter()
	h.Register(r)
	return r
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderMapsValidationTo400(t *testing.T) {
	engine := &stubEngine{err: &checkout.ValidationError{Failures: []checkout.LineFailure{
		{Line: checkout.LineRequest{ProductID: "p1", Size: "M", Color: "Red", Qty: 3}, Reason: "Only 2 left"},
	}}}
	h := &OrdersHandler{Engine: engine, Lifecycle: &stubLifecycle{}, Store: &stubStore{}}

	rec := doJSON(t, newTestRouter(h), http.MethodPost, "/orders",
		`{"userId":"u1","items":[{"productId":"p1","size":"M","color":"Red","qty":3}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		OutOfStock []checkout.LineFailure `json:"outOfStock"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.OutOfStock, 1)
	assert.Equal(t, "Only 2 left", body.OutOfStock[0].Reason)
}

func TestCreateOrderMapsConflictTo409(t *testing.T) {
	engine := &stubEngine{err: &checkout.StockChangedError{
		Line: checkout.LineRequest{ProductID: "p1", Size: "M", Color: "Red", Qty: 2},
	}}
	h := &OrdersHandler{Engine: engine, Lifecycle: &stubLifecycle{}, Store: &stubStore{}}

	rec := doJSON(t, newTestRouter(h), http.MethodPost, "/orders",
		`{"userId":"u1","items":[{"productId":"p1","size":"M","color":"Red","qty":2}]}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["message"], "please retry")
	assert.NotNil(t, body["line"])
}

func TestCreateOrderSuccessIs201(t *testing.T) {
	o := &orders.Order{ID: "o1", Status: orders.StatusPending}
	h := &OrdersHandler{Engine: &stubEngine{order: o}, Lifecycle: &stubLifecycle{}, Store: &stubStore{}}

	rec := doJSON(t, newTestRouter(h), http.MethodPost, "/orders",
		`{"userId":"u1","items":[{"productId":"p1","size":"M","color":"Red","qty":1}]}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	h := &OrdersHandler{Engine: &stubEngine{}, Lifecycle: &stubLifecycle{}, Store: &stubStore{}}

	rec := doJSON(t, newTestRouter(h), http.MethodPut, "/orders/o1/status", `{"status":"refunded"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid status")
}

func TestUpdateStatusNotFoundIs404(t *testing.T) {
	h := &OrdersHandler{Engine: &stubEngine{}, Lifecycle: &stubLifecycle{err: orders.ErrNotFound}, Store: &stubStore{}}

	rec := doJSON(t, newTestRouter(h), http.MethodPut, "/orders/xx/status", `{"status":"confirmed"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelNonPendingIs400(t *testing.T) {
	h := &OrdersHandler{Engine: &stubEngine{}, Lifecycle: &stubLifecycle{err: orders.ErrNotCancellable}, Store: &stubStore{}}

	rec := doJSON(t, newTestRouter(h), http.MethodPost, "/orders/o1/cancel", ``)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	h := &OrdersHandler{Engine: &stubEngine{}, Lifecycle: &stubLifecycle{}, Store: &stubStore{err: orders.ErrNotFound}}

	rec := doJSON(t, newTestRouter(h), http.MethodGet, "/orders/xx", ``)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
