package inventory

import "github.com/ariefcatur/go-storefront-orders.git/internal/catalog"

// Availability menghitung qty tersedia untuk satu line permintaan.
// size+color kosong dua-duanya = unscoped: jumlahkan seluruh variant
// (dipakai query "produk ini masih ada stok nggak" tanpa pilih variant).
// Produk nil (tidak ketemu) = 0.
func Availability(p *catalog.Product, size, color string) int {
	if p == nil {
		return 0
	}
	if size == "" && color == "" {
		return p.TotalQty()
	}
	if v, ok := p.FindVariant(size, color); ok {
		return v.Qty
	}
	return 0
}

// Clamp: qty yang boleh dibeli = min(diminta, tersedia), tidak negatif.
func Clamp(requested, available int) int {
	if requested < 0 {
		return 0
	}
	if requested > available {
		return available
	}
	return requested
}
