package cart

import "time"

// Line adalah permintaan, bukan reservasi: tidak ada klaim stok sampai
// checkout benar-benar commit.
type Line struct {
	ProductID  string `json:"productId,omitempty"`
	Name       string `json:"name"`
	PriceCents int    `json:"price"`
	Qty        int    `json:"qty"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	ImageURL   string `json:"imageUrl"`
}

type Cart struct {
	UserID    string    `json:"userId"`
	Lines     []Line    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Upsert: line dengan name+size+color sama di-merge (qty dijumlah),
// selain itu di-append di belakang.
func (c *Cart) Upsert(l Line) {
	if l.Qty <= 0 {
		l.Qty = 1
	}
	for i := range c.Lines {
		if sameLine(c.Lines[i], l) {
			c.Lines[i].Qty += l.Qty
			return
		}
	}
	c.Lines = append(c.Lines, l)
}

// SetQty mengubah qty line; qty <= 0 menghapus line.
// Return false kalau line tidak ketemu.
func (c *Cart) SetQty(name, size, color string, qty int) bool {
	for i := range c.Lines {
		if c.Lines[i].Name == name && c.Lines[i].Size == size && c.Lines[i].Color == color {
			if qty <= 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			} else {
				c.Lines[i].Qty = qty
			}
			return true
		}
	}
	return false
}

// Merge melipat cart guest ke cart user. Line tanpa name diabaikan.
func (c *Cart) Merge(lines []Line) {
	for _, l := range lines {
		if l.Name == "" {
			continue
		}
		c.Upsert(l)
	}
}

func sameLine(a, b Line) bool {
	return a.Name == b.Name && a.Size == b.Size && a.Color == b.Color
}
