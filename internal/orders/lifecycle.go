package orders

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// ErrNotCancellable: user hanya boleh cancel order yang masih pending.
var ErrNotCancellable = errors.New("only pending orders can be cancelled")

type Store interface {
	FindByID(ctx context.Context, orderID string) (*Order, error)
	UpdateStatus(ctx context.Context, orderID string, to Status, changedBy string, at time.Time) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Lifecycle menjalankan state machine status order. Satu-satunya tempat
// yang boleh menyentuh Ledger setelah order dibuat.
type Lifecycle struct {
	Orders          Store
	Ledger          inventory.Ledger
	ProducerCancel  Publisher // shop.order.cancelled
	ProducerRestock Publisher // shop.stock.restocked
	ServiceName     string
}

// SetStatus: transisi admin. Status to sudah tervalidasi di handler.
// Status sama dengan sekarang = no-op total (tanpa history, tanpa stok).
func (lc *Lifecycle) SetStatus(ctx context.Context, orderID string, to Status, changedBy string) (*Order, error) {
	o, err := lc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == to {
		return o, nil
	}
	return lc.transition(ctx, o, to, changedBy)
}

// CancelByUser: self-service, hanya dari pending. Selalu restock.
func (lc *Lifecycle) CancelByUser(ctx context.Context, orderID string) (*Order, error) {
	o, err := lc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, ErrNotCancellable
	}
	return lc.transition(ctx, o, StatusCancelled, "user")
}

func (lc *Lifecycle) transition(ctx context.Context, o *Order, to Status, changedBy string) (*Order, error) {
	// Status dulu, baru stok. Status yang gagal tersimpan tidak boleh
	// meninggalkan mutasi ledger (atau event restock) tanpa kompensasi;
	// urutan ini membuat jalur gagalnya bebas mutasi sama sekali.
	now := time.Now().UTC()
	if err := lc.Orders.UpdateStatus(ctx, o.ID, to, changedBy, now); err != nil {
		return nil, err
	}

	switch TransitionEffect(o.Status, to) {
	case EffectRestock:
		lc.restockLines(ctx, o)
	case EffectDeduct:
		// Kebijakan reaktivasi: best-effort, clamped ke 0. Stok kurang
		// tidak memblokir perubahan status (tidak ada jalur retry buat
		// admin, beda dengan validasi saat checkout).
		for _, l := range o.Lines {
			if err := lc.Ledger.AdjustClamped(ctx, l.ProductID, l.Size, l.Color, -l.Qty); err != nil {
				log.Printf("reactivate deduct %s (%s/%s) x%d: %v", l.ProductID, l.Size, l.Color, l.Qty, err)
			}
		}
	}

	o.Status = to
	o.StatusChangedBy = changedBy
	o.StatusHistory = append(o.StatusHistory, HistoryEntry{Status: to, ChangedBy: changedBy, ChangedAt: now})
	o.UpdatedAt = now

	if to == StatusCancelled && lc.ProducerCancel != nil {
		lc.publish(lc.ProducerCancel, EventOrderCancelled, o.ID,
			OrderCancelledPayload{OrderID: o.ID, ChangedBy: changedBy})
	}
	return o, nil
}

// restockLines mengembalikan stok per line. Per-variant atomik tapi tidak
// atomik untuk seluruh order; kalau gagal di tengah, log cukup detail biar
// partial application kelihatan dan bisa di-retry.
func (lc *Lifecycle) restockLines(ctx context.Context, o *Order) {
	for _, l := range o.Lines {
		applied, err := lc.Ledger.Adjust(ctx, l.ProductID, l.Size, l.Color, l.Qty)
		if err != nil || !applied {
			log.Printf("restock order=%s product=%s (%s/%s) x%d: applied=%v err=%v",
				o.ID, l.ProductID, l.Size, l.Color, l.Qty, applied, err)
			continue
		}
		if lc.ProducerRestock != nil {
			lc.publishKey(lc.ProducerRestock, EventStockRestocked, o.ID, l.ProductID,
				StockRestockedPayload{ProductID: l.ProductID, Size: l.Size, Color: l.Color, Qty: l.Qty})
		}
	}
}

func (lc *Lifecycle) publish(p Publisher, eventType, orderID string, payload any) {
	lc.publishKey(p, eventType, orderID, orderID, payload)
}

func (lc *Lifecycle) publishKey(p Publisher, eventType, correlationID, key string, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      lc.ServiceName,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(key), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
