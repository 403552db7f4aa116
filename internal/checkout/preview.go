package checkout

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/catalog"
	"github.com/ariefcatur/go-storefront-orders.git/internal/inventory"
)

type EnrichedLine struct {
	cart.Line
	AvailableQty int  `json:"availableQty"`
	IsOutOfStock bool `json:"isOutOfStock"`
}

type EnrichedCart struct {
	UserID string         `json:"userId"`
	Items  []EnrichedLine `json:"items"`
}

type Totals struct {
	SubtotalCents int `json:"subtotal"`
}

type Preview struct {
	UserID           string         `json:"userId"`
	PurchasableItems []EnrichedLine `json:"purchasableItems"`
	SoldOutItems     []EnrichedLine `json:"soldOutItems"`
	Totals           Totals         `json:"totals"`
}

// CartAvailability: isi cart + availableQty/isOutOfStock per line, untuk
// tampilan cart. Cart kosong/tidak ada bukan error.
func (s *Service) CartAvailability(ctx context.Context, userID string) (*EnrichedCart, error) {
	c, err := s.Carts.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &EnrichedCart{UserID: userID, Items: []EnrichedLine{}}
	if c == nil {
		return out, nil
	}
	for _, l := range c.Lines {
		el, err := s.enrich(ctx, l)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, el)
	}
	return out, nil
}

// Preview membagi isi cart jadi purchasable vs sold-out untuk halaman
// checkout. Line purchasable di-clamp ke stok tersedia; subtotal cuma
// menghitung set purchasable dengan qty yang sudah di-clamp.
func (s *Service) Preview(ctx context.Context, userID string) (*Preview, error) {
	ec, err := s.CartAvailability(ctx, userID)
	if err != nil {
		return nil, err
	}
	pv := &Preview{UserID: userID, PurchasableItems: []EnrichedLine{}, SoldOutItems: []EnrichedLine{}}
	for _, el := range ec.Items {
		if el.IsOutOfStock {
			pv.SoldOutItems = append(pv.SoldOutItems, el)
			continue
		}
		el.Qty = inventory.Clamp(el.Qty, el.AvailableQty)
		pv.PurchasableItems = append(pv.PurchasableItems, el)
		pv.Totals.SubtotalCents += el.PriceCents * el.Qty
	}
	return pv, nil
}

// enrich melengkapi line dengan data produk terkini (nama/harga/gambar
// fallback kalau snapshot di cart kosong) + availability variant.
func (s *Service) enrich(ctx context.Context, l cart.Line) (EnrichedLine, error) {
	var p *catalog.Product
	var err error
	if l.ProductID != "" {
		p, err = s.Products.FindByID(ctx, l.ProductID)
	} else if l.Name != "" {
		p, err = s.Products.FindByName(ctx, l.Name)
	}
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return EnrichedLine{}, err
	}
	if p != nil {
		if l.Name == "" {
			l.Name = p.Name
		}
		if l.PriceCents == 0 {
			l.PriceCents = p.PriceCents
		}
		if l.ImageURL == "" {
			l.ImageURL = p.FirstImage()
		}
	}
	avail := inventory.Availability(p, l.Size, l.Color)
	return EnrichedLine{Line: l, AvailableQty: avail, IsOutOfStock: avail <= 0}, nil
}
