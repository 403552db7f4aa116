package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	open     []Request
	notified []string
}

func (f *fakeStore) FindOpen(ctx context.Context, productID, size, color string) ([]Request, error) {
	var out []Request
	for _, q := range f.open {
		if q.ProductID == productID && q.Size == size && q.Color == color {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkNotified(ctx context.Context, ids []string) error {
	f.notified = append(f.notified, ids...)
	return nil
}

func restockMessage(t *testing.T, productID, size, color string, qty int) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(orders.StockRestockedPayload{ProductID: productID, Size: size, Color: color, Qty: qty})
	require.NoError(t, err)
	env := orders.Envelope{
		EventID:      "evt-1",
		EventType:    orders.EventStockRestocked,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      payload,
	}
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Value: b}
}

func TestHandleStockRestockedMarksMatchingRequests(t *testing.T) {
	store := &fakeStore{open: []Request{
		{ID: "n1", UserID: "u1", ProductID: "p1", Size: "M", Color: "Red"},
		{ID: "n2", UserID: "u2", ProductID: "p1", Size: "M", Color: "Red"},
		{ID: "n3", UserID: "u3", ProductID: "p1", Size: "L", Color: "Red"}, // variant lain
	}}
	svc := &Service{Repo: store, ServiceName: "notifier-test"}

	err := svc.HandleStockRestocked(context.Background(), restockMessage(t, "p1", "M", "Red", 2))

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"n1", "n2"}, store.notified, "hanya request variant yang match yang di-resolve")
}

func TestHandleStockRestockedIgnoresOtherEventTypes(t *testing.T) {
	store := &fakeStore{open: []Request{{ID: "n1", ProductID: "p1", Size: "M", Color: "Red"}}}
	svc := &Service{Repo: store}

	env := orders.Envelope{EventID: "evt-2", EventType: orders.EventOrderCreated, EventVersion: 1}
	b, err := json.Marshal(env)
	require.NoError(t, err)

	require.NoError(t, svc.HandleStockRestocked(context.Background(), kafkago.Message{Value: b}))
	assert.Empty(t, store.notified)
}

func TestHandleStockRestockedNoOpenRequests(t *testing.T) {
	store := &fakeStore{}
	svc := &Service{Repo: store}

	require.NoError(t, svc.HandleStockRestocked(context.Background(), restockMessage(t, "p9", "S", "Blue", 1)))
	assert.Empty(t, store.notified)
}

func TestHandleStockRestockedRejectsGarbage(t *testing.T) {
	svc := &Service{Repo: &fakeStore{}}
	err := svc.HandleStockRestocked(context.Background(), kafkago.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
