package notify

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Request: permintaan "kabari saya kalau stoknya balik" untuk satu variant.
type Request struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	ProductID  string     `json:"productId"`
	Size       string     `json:"size"`
	Color      string     `json:"color"`
	CreatedAt  time.Time  `json:"createdAt"`
	NotifiedAt *time.Time `json:"notifiedAt,omitempty"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, req *Request) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO notify_requests(id, user_id, product_id, size, color)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id, product_id, size, color) DO NOTHING
	`, req.ID, req.UserID, req.ProductID, req.Size, req.Color)
	return err
}

// FindOpen: request yang belum dinotifikasi untuk variant tsb.
func (r *Repo) FindOpen(ctx context.Context, productID, size, color string) ([]Request, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, product_id, size, color, created_at
		FROM notify_requests
		WHERE product_id=$1 AND size=$2 AND color=$3 AND notified_at IS NULL
	`, productID, size, color)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var q Request
		if err := rows.Scan(&q.ID, &q.UserID, &q.ProductID, &q.Size, &q.Color, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *Repo) MarkNotified(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.DB.Exec(ctx, `UPDATE notify_requests SET notified_at = now()
	                          WHERE id = ANY($1) AND notified_at IS NULL`, ids)
	return err
}
