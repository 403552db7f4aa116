package catalog

import "time"

// Variant adalah satu kombinasi warna+ukuran dengan stoknya sendiri.
// Stok di level variant adalah sumber kebenaran inventori.
type Variant struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Qty   int    `json:"qty"`
}

type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price"`
	Category   string    `json:"category"`
	Images     []string  `json:"images"`
	Featured   bool      `json:"featured"`
	Variants   []Variant `json:"variants"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FindVariant mencari variant dengan (size, color) persis.
func (p *Product) FindVariant(size, color string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Size == size && v.Color == color {
			return v, true
		}
	}
	return Variant{}, false
}

// TotalQty menjumlahkan stok seluruh variant.
func (p *Product) TotalQty() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Qty
	}
	return total
}

// FirstImage dipakai untuk snapshot imageUrl di cart/order line.
func (p *Product) FirstImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

type SizeQty struct {
	Size string `json:"size"`
	Qty  int    `json:"qty"`
}

type ColorQty struct {
	Color string `json:"color"`
	Qty   int    `json:"qty"`
}

// Summary adalah bentuk produk untuk listing UI: total stok plus
// agregat size/color yang masih tersedia (qty > 0).
type Summary struct {
	Product
	TotalQty        int        `json:"totalQty"`
	AvailableSizes  []SizeQty  `json:"availableSizes"`
	AvailableColors []ColorQty `json:"availableColors"`
}

// Summarize menghitung agregat ketersediaan; urutan mengikuti urutan variant.
func Summarize(p Product) Summary {
	s := Summary{Product: p, TotalQty: p.TotalQty()}
	sizeIdx := map[string]int{}
	colorIdx := map[string]int{}
	for _, v := range p.Variants {
		if v.Qty <= 0 {
			continue
		}
		if i, ok := sizeIdx[v.Size]; ok {
			s.AvailableSizes[i].Qty += v.Qty
		} else {
			sizeIdx[v.Size] = len(s.AvailableSizes)
			s.AvailableSizes = append(s.AvailableSizes, SizeQty{Size: v.Size, Qty: v.Qty})
		}
		if i, ok := colorIdx[v.Color]; ok {
			s.AvailableColors[i].Qty += v.Qty
		} else {
			colorIdx[v.Color] = len(s.AvailableColors)
			s.AvailableColors = append(s.AvailableColors, ColorQty{Color: v.Color, Qty: v.Qty})
		}
	}
	return s
}
