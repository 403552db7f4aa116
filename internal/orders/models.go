package orders

import "time"

// Line adalah snapshot beku saat order dibuat: name/price/image tidak
// pernah dibaca ulang dari Product setelah ini.
type Line struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	PriceCents int    `json:"price"`
	Qty        int    `json:"qty"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	ImageURL   string `json:"imageUrl"`
}

// HistoryEntry: audit log append-only, tidak pernah ditulis ulang.
type HistoryEntry struct {
	Status    Status    `json:"status"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// Order immutable setelah dibuat kecuali status + history-nya.
// Cancel = status, bukan delete.
type Order struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	Lines           []Line         `json:"items"`
	SubtotalCents   int            `json:"subtotal"`
	ShippingCents   int            `json:"shipping"`
	TotalCents      int            `json:"total"`
	Address         string         `json:"address"`
	Phone           string         `json:"phone"`
	PaymentMethod   string         `json:"paymentMethod"`
	Status          Status         `json:"status"`
	StatusChangedBy string         `json:"statusChangedBy"`
	StatusHistory   []HistoryEntry `json:"statusHistory"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}
