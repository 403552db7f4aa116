package inventory

import (
	"context"
	"sync"
)

type variantKey struct{ productID, size, color string }

// MemLedger menyimpan qty di memori dengan semantik conditional-update yang
// sama persis dengan PgLedger: setiap Adjust adalah satu operasi atomik.
// Dipakai di test (termasuk test race checkout) tanpa Postgres.
type MemLedger struct {
	mu       sync.Mutex
	products map[string]bool
	qty      map[variantKey]int
}

func NewMemLedger() *MemLedger {
	return &MemLedger{
		products: map[string]bool{},
		qty:      map[variantKey]int{},
	}
}

// Seed menanam stok awal; bukan bagian dari interface Ledger.
func (l *MemLedger) Seed(productID, size, color string, qty int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.products[productID] = true
	l.qty[variantKey{productID, size, color}] = qty
}

func (l *MemLedger) GetVariant(ctx context.Context, productID, size, color string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	q, ok := l.qty[variantKey{productID, size, color}]
	if !ok {
		return 0, l.notFoundLocked(productID)
	}
	return q, nil
}

func (l *MemLedger) Adjust(ctx context.Context, productID, size, color string, delta int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := variantKey{productID, size, color}
	q, ok := l.qty[k]
	if !ok {
		return false, l.notFoundLocked(productID)
	}
	if q+delta < 0 {
		return false, nil
	}
	l.qty[k] = q + delta
	return true, nil
}

func (l *MemLedger) AdjustClamped(ctx context.Context, productID, size, color string, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := variantKey{productID, size, color}
	q, ok := l.qty[k]
	if !ok {
		return l.notFoundLocked(productID)
	}
	if q += delta; q < 0 {
		q = 0
	}
	l.qty[k] = q
	return nil
}

func (l *MemLedger) notFoundLocked(productID string) error {
	if !l.products[productID] {
		return ErrProductNotFound
	}
	return ErrVariantNotFound
}
