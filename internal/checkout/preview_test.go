package checkout

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/catalog"
	"github.com/ariefcatur/go-storefront-orders.git/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAvailabilityEnrichesLines(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	svc, carts, _, _ := newService(catalogOf(ledger, shirt()), ledger)
	carts.carts = map[string]*cart.Cart{
		"u1": {UserID: "u1", Lines: []cart.Line{
			// snapshot kosong: name/price/image dilengkapi dari katalog
			{ProductID: "p1", Size: "M", Color: "Red", Qty: 1},
			{Name: "Tidak Ada", Size: "M", Color: "Red", Qty: 1},
		}},
	}

	ec, err := svc.CartAvailability(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ec.Items, 2)

	assert.Equal(t, "Kaos Polos", ec.Items[0].Name)
	assert.Equal(t, 5000, ec.Items[0].PriceCents)
	assert.Equal(t, "https://img/kaos.jpg", ec.Items[0].ImageURL)
	assert.Equal(t, 2, ec.Items[0].AvailableQty)
	assert.False(t, ec.Items[0].IsOutOfStock)

	// produk tidak ketemu = availableQty 0, out of stock
	assert.Equal(t, 0, ec.Items[1].AvailableQty)
	assert.True(t, ec.Items[1].IsOutOfStock)
}

func TestCartAvailabilityMissingCart(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	svc, _, _, _ := newService(catalogOf(ledger, shirt()), ledger)

	ec, err := svc.CartAvailability(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ec.Items)
}

// Line dengan stok sebagian bukan sold-out: qty di-clamp, tetap masuk
// purchasable, dan subtotal cuma menghitung qty hasil clamp.
func TestPreviewClampsPartialStock(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	svc, carts, _, _ := newService(catalogOf(ledger, shirt(), pants()), ledger)
	// shirt M/Red: tersedia 2; pants 32/Black: tersedia 3
	carts.carts = map[string]*cart.Cart{
		"u1": {UserID: "u1", Lines: []cart.Line{
			{ProductID: "p1", Name: "Kaos Polos", PriceCents: 5000, Size: "M", Color: "Red", Qty: 3},
			{ProductID: "p2", Name: "Celana Chino", PriceCents: 12000, Size: "32", Color: "Black", Qty: 1},
		}},
	}

	pv, err := svc.Preview(ctx, "u1")
	require.NoError(t, err)

	require.Len(t, pv.PurchasableItems, 2)
	assert.Empty(t, pv.SoldOutItems)
	assert.Equal(t, 2, pv.PurchasableItems[0].Qty, "3 diminta, 2 tersedia -> clamp ke 2")
	assert.Equal(t, 1, pv.PurchasableItems[1].Qty)
	assert.Equal(t, 2*5000+12000, pv.Totals.SubtotalCents)
}

func TestPreviewSplitsSoldOut(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewMemLedger()
	p := shirt()
	p.Variants = append(p.Variants, catalog.Variant{Size: "S", Color: "White", Qty: 0})
	svc, carts, _, _ := newService(catalogOf(ledger, p), ledger)
	carts.carts = map[string]*cart.Cart{
		"u1": {UserID: "u1", Lines: []cart.Line{
			{ProductID: "p1", Name: "Kaos Polos", PriceCents: 5000, Size: "S", Color: "White", Qty: 2},
			{ProductID: "p1", Name: "Kaos Polos", PriceCents: 5000, Size: "L", Color: "Blue", Qty: 1},
		}},
	}

	pv, err := svc.Preview(ctx, "u1")
	require.NoError(t, err)

	require.Len(t, pv.SoldOutItems, 1)
	assert.Equal(t, "S", pv.SoldOutItems[0].Size)
	require.Len(t, pv.PurchasableItems, 1)
	assert.Equal(t, 5000, pv.Totals.SubtotalCents, "sold-out tidak menyumbang subtotal")
}
