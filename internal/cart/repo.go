package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// Find mengembalikan (nil, nil) kalau user belum punya cart.
func (r *Repo) Find(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	err := r.DB.QueryRow(ctx, `SELECT user_id, created_at, updated_at FROM carts WHERE user_id=$1`,
		userID).Scan(&c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `SELECT product_id, name, price_cents, qty, size, color, image_url
	                              FROM cart_lines WHERE user_id=$1 ORDER BY ord`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.PriceCents, &l.Qty, &l.Size, &l.Color, &l.ImageURL); err != nil {
			return nil, err
		}
		c.Lines = append(c.Lines, l)
	}
	return &c, rows.Err()
}

// Save menulis ulang seluruh isi cart (replace lines) dalam satu tx.
func (r *Repo) Save(ctx context.Context, c *Cart) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `INSERT INTO carts(user_id) VALUES ($1)
	                           ON CONFLICT (user_id) DO UPDATE SET updated_at = now()`, c.UserID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1`, c.UserID); err != nil {
		return err
	}
	for i, l := range c.Lines {
		if _, err := tx.Exec(ctx, `INSERT INTO cart_lines(user_id, ord, product_id, name, price_cents, qty, size, color, image_url)
		                           VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			c.UserID, i, l.ProductID, l.Name, l.PriceCents, l.Qty, l.Size, l.Color, l.ImageURL); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Clear mengosongkan isi cart tapi membiarkan row cart-nya (perilaku
// storefront lama). Idempotent: cart tidak ada = no-op, bukan error.
func (r *Repo) Clear(ctx context.Context, userID string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE user_id=$1`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
