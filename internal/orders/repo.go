package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Repo struct{ DB *pgxpool.Pool }

type Filter struct {
	UserID string
	Status Status
}

func (r *Repo) Create(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	history, err := json.Marshal(o.StatusHistory)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, subtotal_cents, shipping_cents, total_cents,
		                   address, phone, payment_method, status, status_changed_by, status_history)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, o.ID, o.UserID, o.SubtotalCents, o.ShippingCents, o.TotalCents,
		o.Address, o.Phone, o.PaymentMethod, string(o.Status), o.StatusChangedBy, history)
	if err != nil {
		return err
	}

	for i, l := range o.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, ord, product_id, name, price_cents, qty, size, color, image_url)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			o.ID, i, l.ProductID, l.Name, l.PriceCents, l.Qty, l.Size, l.Color, l.ImageURL); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) FindByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	var status string
	var history []byte
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, subtotal_cents, shipping_cents, total_cents,
		       address, phone, payment_method, status, status_changed_by, status_history,
		       created_at, updated_at
		FROM orders WHERE id=$1`, orderID).Scan(
		&o.ID, &o.UserID, &o.SubtotalCents, &o.ShippingCents, &o.TotalCents,
		&o.Address, &o.Phone, &o.PaymentMethod, &status, &o.StatusChangedBy, &history,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &o.StatusHistory); err != nil {
			return nil, err
		}
	}
	if err := r.loadLines(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) loadLines(ctx context.Context, o *Order) error {
	rows, err := r.DB.Query(ctx, `SELECT product_id, name, price_cents, qty, size, color, image_url
	                              FROM order_lines WHERE order_id=$1 ORDER BY ord`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.PriceCents, &l.Qty, &l.Size, &l.Color, &l.ImageURL); err != nil {
			return err
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

// List: terbaru duluan. Filter kosong = semua order.
func (r *Repo) List(ctx context.Context, f Filter) ([]Order, error) {
	q := `SELECT id, user_id, subtotal_cents, shipping_cents, total_cents,
	             address, phone, payment_method, status, status_changed_by, status_history,
	             created_at, updated_at
	      FROM orders WHERE 1=1`
	args := []any{}
	if f.UserID != "" {
		args = append(args, f.UserID)
		q += ` AND user_id=$1`
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		if len(args) == 1 {
			q += ` AND status=$1`
		} else {
			q += ` AND status=$2`
		}
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var status string
		var history []byte
		if err := rows.Scan(&o.ID, &o.UserID, &o.SubtotalCents, &o.ShippingCents, &o.TotalCents,
			&o.Address, &o.Phone, &o.PaymentMethod, &status, &o.StatusChangedBy, &history,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		if len(history) > 0 {
			if err := json.Unmarshal(history, &o.StatusHistory); err != nil {
				return nil, err
			}
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadLines(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateStatus menyimpan status baru + append satu entry history.
// History hanya ditambah, tidak pernah ditulis ulang.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status, changedBy string, at time.Time) error {
	entry, err := json.Marshal([]HistoryEntry{{Status: to, ChangedBy: changedBy, ChangedAt: at}})
	if err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET status=$2, status_changed_by=$3,
		    status_history = coalesce(status_history, '[]'::jsonb) || $4::jsonb,
		    updated_at = now()
		WHERE id=$1`, orderID, string(to), changedBy, entry)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
