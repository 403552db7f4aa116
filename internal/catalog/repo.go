package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

type Filter struct {
	Search        string
	Category      string
	Featured      bool
	MaxPriceCents int // 0 = tanpa batas
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Product, error) {
	return r.findOne(ctx, `SELECT id, name, price_cents, category, images, featured, created_at, updated_at
	                       FROM products WHERE id=$1`, id)
}

// FindByName hanya untuk payload legacy yang tidak membawa product id.
func (r *Repo) FindByName(ctx context.Context, name string) (*Product, error) {
	return r.findOne(ctx, `SELECT id, name, price_cents, category, images, featured, created_at, updated_at
	                       FROM products WHERE name=$1 ORDER BY created_at DESC LIMIT 1`, name)
}

func (r *Repo) findOne(ctx context.Context, q string, arg any) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, q, arg).Scan(
		&p.ID, &p.Name, &p.PriceCents, &p.Category, &p.Images, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadVariants(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) loadVariants(ctx context.Context, p *Product) error {
	rows, err := r.DB.Query(ctx, `SELECT size, color, qty FROM product_variants
	                              WHERE product_id=$1 ORDER BY ord`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.Size, &v.Color, &v.Qty); err != nil {
			return err
		}
		p.Variants = append(p.Variants, v)
	}
	return rows.Err()
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Product, error) {
	q := `SELECT id, name, price_cents, category, images, featured, created_at, updated_at
	      FROM products WHERE 1=1`
	args := []any{}
	if f.Category != "" {
		args = append(args, f.Category)
		q += ` AND category=$` + itoa(len(args))
	}
	if f.Featured {
		q += ` AND featured`
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		q += ` AND name ILIKE $` + itoa(len(args))
	}
	if f.MaxPriceCents > 0 {
		args = append(args, f.MaxPriceCents)
		q += ` AND price_cents <= $` + itoa(len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Category, &p.Images, &p.Featured, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadVariants(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
