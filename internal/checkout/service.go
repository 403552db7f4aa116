// Package checkout menjalankan protokol commit stok dua fase saat order
// dibuat: validasi optimistis dulu, lalu commit lewat guarded adjust di
// Ledger. Fase 2 satu-satunya yang dipercaya untuk correctness.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/catalog"
	"github.com/ariefcatur/go-storefront-orders.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type LineRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"` // fallback lookup untuk payload legacy tanpa id
	Size      string `json:"size"`
	Color     string `json:"color"`
	Qty       int    `json:"qty"`
}

type Request struct {
	UserID        string        `json:"userId"`
	Lines         []LineRequest `json:"items"`
	Address       string        `json:"address"`
	Phone         string        `json:"phone"`
	PaymentMethod string        `json:"paymentMethod"`
	ShippingCents int           `json:"shipping"`
}

type ProductStore interface {
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
	FindByName(ctx context.Context, name string) (*catalog.Product, error)
}

type CartStore interface {
	Find(ctx context.Context, userID string) (*cart.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type OrderStore interface {
	Create(ctx context.Context, o *orders.Order) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Products    ProductStore
	Carts       CartStore
	Orders      OrderStore
	Ledger      inventory.Ledger
	Producer    Publisher // shop.order.created
	ServiceName string
}

// validated: hasil fase 1 per line, snapshot dari produk, bukan dari client.
type validated struct {
	req  LineRequest
	line orders.Line
}

// Checkout menjalankan kedua fase lalu membuat order pending.
// Error mungkin: ErrBadRequest, *ValidationError, *StockChangedError,
// atau error internal storage (semua deduct yang sudah jalan dikompensasi
// dulu sebelum error keluar).
func (s *Service) Checkout(ctx context.Context, req Request) (*orders.Order, error) {
	if req.UserID == "" || len(req.Lines) == 0 {
		return nil, ErrBadRequest
	}
	for _, l := range req.Lines {
		if (l.ProductID == "" && l.Name == "") || l.Size == "" || l.Color == "" || l.Qty <= 0 {
			return nil, ErrBadRequest
		}
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "COD"
	}
	if req.ShippingCents < 0 {
		return nil, ErrBadRequest
	}

	lines, err := s.validate(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, lines); err != nil {
		return nil, err
	}

	o := buildOrder(req, lines)
	if err := s.Orders.Create(ctx, o); err != nil {
		// Order gagal tersimpan: stok yang sudah dipotong wajib balik,
		// jangan ada deduct nyangkut untuk order yang tidak pernah ada.
		s.compensate(ctx, lines)
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Side action best-effort: kosongkan cart. Gagal di sini tidak
	// membatalkan order yang sudah jadi.
	if err := s.Carts.Clear(ctx, req.UserID); err != nil {
		log.Printf("clear cart user=%s: %v", req.UserID, err)
	}

	if s.Producer != nil {
		s.publishCreated(o)
	}
	return o, nil
}

// validate = fase 1. Murni baca: resolve produk + variant, cek qty saat
// ini. Hasilnya rejection cepat dan informatif untuk kasus tanpa
// kontensi. Bukan jaminan; fase 2 yang pegang kebenaran.
func (s *Service) validate(ctx context.Context, reqs []LineRequest) ([]validated, error) {
	out := make([]validated, 0, len(reqs))
	var failures []LineFailure

	for _, lr := range reqs {
		p, err := s.resolveProduct(ctx, lr)
		if errors.Is(err, catalog.ErrNotFound) {
			failures = append(failures, LineFailure{Line: lr, Reason: "Product not found"})
			continue
		}
		if err != nil {
			return nil, err
		}
		v, ok := p.FindVariant(lr.Size, lr.Color)
		if !ok {
			failures = append(failures, LineFailure{Line: lr, Reason: "Variant not found"})
			continue
		}
		if v.Qty < lr.Qty {
			failures = append(failures, LineFailure{Line: lr, Reason: fmt.Sprintf("Only %d left", v.Qty)})
			continue
		}
		lr.ProductID = p.ID
		out = append(out, validated{
			req: lr,
			line: orders.Line{
				ProductID:  p.ID,
				Name:       p.Name,
				PriceCents: p.PriceCents,
				Qty:        lr.Qty,
				Size:       lr.Size,
				Color:      lr.Color,
				ImageURL:   p.FirstImage(),
			},
		})
	}
	if len(failures) > 0 {
		return nil, &ValidationError{Failures: failures}
	}
	return out, nil
}

func (s *Service) resolveProduct(ctx context.Context, lr LineRequest) (*catalog.Product, error) {
	if lr.ProductID != "" {
		return s.Products.FindByID(ctx, lr.ProductID)
	}
	return s.Products.FindByName(ctx, lr.Name)
}

// commit = fase 2. Guarded deduct per line lewat Ledger; guard-nya "qty
// tersimpan >= qty diminta" di record variant, bukan hasil baca fase 1.
// Gagal di line ke-N: line 1..N-1 dikompensasi exact sebelum return.
func (s *Service) commit(ctx context.Context, lines []validated) error {
	committed := make([]validated, 0, len(lines))
	for _, vl := range lines {
		applied, err := s.Ledger.Adjust(ctx, vl.line.ProductID, vl.line.Size, vl.line.Color, -vl.line.Qty)
		if err != nil {
			s.compensate(ctx, committed)
			return fmt.Errorf("deduct %s (%s/%s): %w", vl.line.ProductID, vl.line.Size, vl.line.Color, err)
		}
		if !applied {
			// Order lain menghabiskan stok di antara fase 1 dan fase 2.
			s.compensate(ctx, committed)
			return &StockChangedError{Line: vl.req}
		}
		committed = append(committed, vl)
	}
	return nil
}

// compensate mengembalikan deduct yang sudah jalan (unwind, urutan bebas
// karena variant independen). Restock hasil kompensasi TIDAK dipublish
// sebagai event restock karena ordernya tidak pernah ada.
func (s *Service) compensate(ctx context.Context, committed []validated) {
	for _, vl := range committed {
		applied, err := s.Ledger.Adjust(ctx, vl.line.ProductID, vl.line.Size, vl.line.Color, vl.line.Qty)
		if err != nil || !applied {
			// Tidak boleh senyap: ini satu-satunya jejak kalau ledger
			// sempat tidak balik exact.
			log.Printf("COMPENSATION FAILED product=%s (%s/%s) x%d: applied=%v err=%v",
				vl.line.ProductID, vl.line.Size, vl.line.Color, vl.line.Qty, applied, err)
		}
	}
}

func buildOrder(req Request, lines []validated) *orders.Order {
	now := time.Now().UTC()
	o := &orders.Order{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		Address:         req.Address,
		Phone:           req.Phone,
		PaymentMethod:   req.PaymentMethod,
		ShippingCents:   req.ShippingCents,
		Status:          orders.StatusPending,
		StatusChangedBy: "system",
		StatusHistory:   []orders.HistoryEntry{{Status: orders.StatusPending, ChangedBy: "system", ChangedAt: now}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, vl := range lines {
		o.Lines = append(o.Lines, vl.line)
		// subtotal dihitung sekali dari snapshot harga, bukan dari client
		o.SubtotalCents += vl.line.PriceCents * vl.line.Qty
	}
	o.TotalCents = o.SubtotalCents + o.ShippingCents
	return o
}

func (s *Service) publishCreated(o *orders.Order) {
	payload := orders.OrderCreatedPayload{OrderID: o.ID, UserID: o.UserID, TotalCents: o.TotalCents}
	for _, l := range o.Lines {
		payload.Lines = append(payload.Lines, orders.LineQty{ProductID: l.ProductID, Size: l.Size, Color: l.Color, Qty: l.Qty})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: o.ID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
