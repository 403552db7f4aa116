// Package inventory memegang stok per variant (product, size, color).
// Semua mutasi stok lewat satu operasi conditional di storage; tidak
// boleh ada pola read-lalu-write terpisah untuk stok yang dishare.
package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
)

// Ledger adalah sumber kebenaran qty per variant.
type Ledger interface {
	// GetVariant: point read, snapshot (boleh stale).
	GetVariant(ctx context.Context, productID, size, color string) (int, error)

	// Adjust menerapkan delta (negatif = potong, positif = restock) dengan
	// guard "qty tersimpan + delta >= 0" di record variant itu sendiri.
	// applied=false artinya guard gagal (ada order lain yang ambil duluan),
	// bukan error.
	Adjust(ctx context.Context, productID, size, color string, delta int) (applied bool, err error)

	// AdjustClamped selalu diterapkan, hasilnya di-floor ke 0. Hanya dipakai
	// edge reaktivasi order (best-effort, tidak memblokir perubahan status).
	AdjustClamped(ctx context.Context, productID, size, color string, delta int) error
}

type PgLedger struct{ DB *pgxpool.Pool }

func (l *PgLedger) GetVariant(ctx context.Context, productID, size, color string) (int, error) {
	var qty int
	err := l.DB.QueryRow(ctx, `SELECT qty FROM product_variants
	                           WHERE product_id=$1 AND size=$2 AND color=$3`,
		productID, size, color).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, l.notFound(ctx, productID)
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}

func (l *PgLedger) Adjust(ctx context.Context, productID, size, color string, delta int) (bool, error) {
	// Satu statement conditional: compare qty sekarang + apply delta atomik
	// di record variant. Jangan pecah jadi SELECT lalu UPDATE.
	ct, err := l.DB.Exec(ctx, `UPDATE product_variants SET qty = qty + $4
	                           WHERE product_id=$1 AND size=$2 AND color=$3 AND qty + $4 >= 0`,
		productID, size, color, delta)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() == 1 {
		return true, nil
	}
	// 0 row: variant tidak ada, atau guard gagal. Bedakan.
	if err := l.exists(ctx, productID, size, color); err != nil {
		return false, err
	}
	return false, nil
}

func (l *PgLedger) AdjustClamped(ctx context.Context, productID, size, color string, delta int) error {
	ct, err := l.DB.Exec(ctx, `UPDATE product_variants SET qty = GREATEST(qty + $4, 0)
	                           WHERE product_id=$1 AND size=$2 AND color=$3`,
		productID, size, color, delta)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return l.notFound(ctx, productID)
	}
	return nil
}

func (l *PgLedger) exists(ctx context.Context, productID, size, color string) error {
	var n int
	err := l.DB.QueryRow(ctx, `SELECT 1 FROM product_variants
	                           WHERE product_id=$1 AND size=$2 AND color=$3`,
		productID, size, color).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return l.notFound(ctx, productID)
	}
	return err
}

// notFound: produk hilang vs variant hilang dibedakan di response.
func (l *PgLedger) notFound(ctx context.Context, productID string) error {
	var n int
	err := l.DB.QueryRow(ctx, `SELECT 1 FROM products WHERE id=$1`, productID).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return ErrVariantNotFound
}
