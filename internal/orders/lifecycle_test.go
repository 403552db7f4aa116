package orders

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/inventory"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	orders    map[string]*Order
	updateErr error
}

func newFakeStore(os ...*Order) *fakeStore {
	s := &fakeStore{orders: map[string]*Order{}}
	for _, o := range os {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeStore) FindByID(ctx context.Context, orderID string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, orderID string, to Status, changedBy string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	o, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Status = to
	o.StatusChangedBy = changedBy
	o.StatusHistory = append(o.StatusHistory, HistoryEntry{Status: to, ChangedBy: changedBy, ChangedAt: at})
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []Envelope
}

func (p *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	var env Envelope
	_ = json.Unmarshal(value, &env)
	p.mu.Lock()
	p.events = append(p.events, env)
	p.mu.Unlock()
}

func (p *fakePublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

func twoLineOrder(status Status) *Order {
	return &Order{
		ID:     "o1",
		UserID: "u1",
		Status: status,
		Lines: []Line{
			{ProductID: "p1", Size: "M", Color: "Red", Qty: 2, PriceCents: 5000},
			{ProductID: "p2", Size: "L", Color: "Blue", Qty: 1, PriceCents: 8000},
		},
	}
}

func newLifecycle(store *fakeStore, ledger inventory.Ledger) (*Lifecycle, *fakePublisher, *fakePublisher) {
	pc := &fakePublisher{}
	pr := &fakePublisher{}
	return &Lifecycle{
		Orders:          store,
		Ledger:          ledger,
		ProducerCancel:  pc,
		ProducerRestock: pr,
		ServiceName:     "test",
	}, pc, pr
}

func TestCancelRestocksEveryLine(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	ledger.Seed("p1", "M", "Red", 0)
	ledger.Seed("p2", "L", "Blue", 3)
	store := newFakeStore(twoLineOrder(StatusConfirmed))
	lc, pc, pr := newLifecycle(store, ledger)

	o, err := lc.SetStatus(ctx, "o1", StatusCancelled, "admin")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)

	q1, _ := ledger.GetVariant(ctx, "p1", "M", "Red")
	q2, _ := ledger.GetVariant(ctx, "p2", "L", "Blue")
	assert.Equal(t, 2, q1)
	assert.Equal(t, 4, q2)

	assert.Equal(t, 1, pc.count(EventOrderCancelled))
	assert.Equal(t, 2, pr.count(EventStockRestocked), "satu event restock per line")

	stored, _ := store.FindByID(ctx, "o1")
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, StatusCancelled, stored.StatusHistory[0].Status)
	assert.Equal(t, "admin", stored.StatusHistory[0].ChangedBy)
}

func TestSelfTransitionIsTotalNoop(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	ledger.Seed("p1", "M", "Red", 5)
	ledger.Seed("p2", "L", "Blue", 5)
	store := newFakeStore(twoLineOrder(StatusConfirmed))
	lc, pc, pr := newLifecycle(store, ledger)

	o, err := lc.SetStatus(ctx, "o1", StatusConfirmed, "admin")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)

	q1, _ := ledger.GetVariant(ctx, "p1", "M", "Red")
	assert.Equal(t, 5, q1, "stok tidak tersentuh")
	stored, _ := store.FindByID(ctx, "o1")
	assert.Empty(t, stored.StatusHistory, "tidak ada entry history baru")
	assert.Zero(t, pc.count(EventOrderCancelled))
	assert.Zero(t, pr.count(EventStockRestocked))
}

func TestActiveToActiveChangesLabelOnly(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	ledger.Seed("p1", "M", "Red", 5)
	ledger.Seed("p2", "L", "Blue", 5)
	store := newFakeStore(twoLineOrder(StatusPending))
	lc, _, _ := newLifecycle(store, ledger)

	o, err := lc.SetStatus(ctx, "o1", StatusShipped, "admin")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, o.Status)

	q1, _ := ledger.GetVariant(ctx, "p1", "M", "Red")
	assert.Equal(t, 5, q1)
	stored, _ := store.FindByID(ctx, "o1")
	require.Len(t, stored.StatusHistory, 1)
}

func TestReactivateDeductsAgain(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	ledger.Seed("p1", "M", "Red", 2)
	ledger.Seed("p2", "L", "Blue", 1)
	store := newFakeStore(twoLineOrder(StatusCancelled))
	lc, _, _ := newLifecycle(store, ledger)

	o, err := lc.SetStatus(ctx, "o1", StatusConfirmed, "admin")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)

	q1, _ := ledger.GetVariant(ctx, "p1", "M", "Red")
	q2, _ := ledger.GetVariant(ctx, "p2", "L", "Blue")
	assert.Equal(t, 0, q1)
	assert.Equal(t, 0, q2)
}

// Kebijakan reaktivasi: stok sudah keburu kejual tidak memblokir status,
// deduct-nya di-clamp ke 0.
func TestReactivateClampsWhenStockWasResold(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	ledger.Seed("p1", "M", "Red", 1) // order butuh 2
	ledger.Seed("p2", "L", "Blue", 0)
	store := newFakeStore(twoLineOrder(StatusCancelled))
	lc, _, _ := newLifecycle(store, ledger)

	o, err := lc.SetStatus(ctx, "o1", StatusPending, "admin")
	require.NoError(t, err, "status tetap berubah walau stok kurang")
	assert.Equal(t, StatusPending, o.Status)

	q1, _ := ledger.GetVariant(ctx, "p1", "M", "Red")
	q2, _ := ledger.GetVariant(ctx, "p2", "L", "Blue")
	assert.Equal(t, 0, q1, "floor di 0, tidak pernah negatif")
	assert.Equal(t, 0, q2)
}

// Cancel lalu reaktivasi balik ke qty semula (tanpa penjualan di sela).
func TestCancelReactivateRoundTrip(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	ledger.Seed("p1", "M", "Red", 7)
	ledger.Seed("p2", "L", "Blue", 4)
	store := newFakeStore(twoLineOrder(StatusPending))
	lc, _, _ := newLifecycle(store, ledger)

	_, err := lc.SetStatus(ctx, "o1", StatusCancelled, "admin")
	require.NoError(t, err)
	_, err = lc.SetStatus(ctx, "o1", StatusPending, "admin")
	require.NoError(t, err)

	q1, _ := ledger.GetVariant(ctx, "p1", "M", "Red")
	q2, _ := ledger.GetVariant(ctx, "p2", "L", "Blue")
	assert.Equal(t, 7, q1)
	assert.Equal(t, 4, q2)

	stored, _ := store.FindByID(ctx, "o1")
	assert.Len(t, stored.StatusHistory, 2, "dua transisi, dua entry audit")
}

// Status yang gagal tersimpan = jalur gagal bebas mutasi: tidak ada
// restock, tidak ada event, order tetap di status lamanya. Retry cancel
// setelahnya tidak boleh jadi restock dobel.
func TestStatusWriteFailureTouchesNothing(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	ledger.Seed("p1", "M", "Red", 0)
	ledger.Seed("p2", "L", "Blue", 3)
	store := newFakeStore(twoLineOrder(StatusConfirmed))
	store.updateErr = errors.New("storage unavailable")
	lc, pc, pr := newLifecycle(store, ledger)

	_, err := lc.SetStatus(ctx, "o1", StatusCancelled, "admin")
	require.Error(t, err)

	q1, _ := ledger.GetVariant(ctx, "p1", "M", "Red")
	q2, _ := ledger.GetVariant(ctx, "p2", "L", "Blue")
	assert.Equal(t, 0, q1, "stok tidak tersentuh")
	assert.Equal(t, 3, q2)
	assert.Zero(t, pc.count(EventOrderCancelled))
	assert.Zero(t, pr.count(EventStockRestocked), "tidak ada event untuk transisi yang tidak durable")

	store.updateErr = nil
	stored, _ := store.FindByID(ctx, "o1")
	assert.Equal(t, StatusConfirmed, stored.Status)
	assert.Empty(t, stored.StatusHistory)

	// store pulih: cancel ulang me-restock tepat satu kali
	_, err = lc.SetStatus(ctx, "o1", StatusCancelled, "admin")
	require.NoError(t, err)
	q1, _ = ledger.GetVariant(ctx, "p1", "M", "Red")
	q2, _ = ledger.GetVariant(ctx, "p2", "L", "Blue")
	assert.Equal(t, 2, q1)
	assert.Equal(t, 4, q2)
	assert.Equal(t, 2, pr.count(EventStockRestocked))
}

func TestCancelByUserOnlyPending(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	ledger.Seed("p1", "M", "Red", 0)
	ledger.Seed("p2", "L", "Blue", 0)

	store := newFakeStore(twoLineOrder(StatusPending))
	lc, _, _ := newLifecycle(store, ledger)

	o, err := lc.CancelByUser(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, "user", o.StatusChangedBy)

	q1, _ := ledger.GetVariant(ctx, "p1", "M", "Red")
	assert.Equal(t, 2, q1)

	// sudah shipped: user tidak boleh cancel sendiri
	store2 := newFakeStore(twoLineOrder(StatusShipped))
	lc2, _, _ := newLifecycle(store2, ledger)
	_, err = lc2.CancelByUser(ctx, "o1")
	assert.ErrorIs(t, err, ErrNotCancellable)

	_, err = lc2.CancelByUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
