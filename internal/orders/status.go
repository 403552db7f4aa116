package orders

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var allStatuses = map[Status]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// ParseStatus menolak nilai di luar set fixed sebelum menyentuh state machine.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, allStatuses[st]
}

// StockEffect: apa yang harus dilakukan Ledger saat transisi status.
type StockEffect int

const (
	EffectNone StockEffect = iota
	EffectRestock
	EffectDeduct
)

// Tabel efek stok per edge (from -> to). Hanya dua jenis edge yang
// menyentuh Ledger: masuk cancelled (restock) dan keluar cancelled
// (potong lagi, clamped). Edge lain murni ganti label.
var stockEffect = map[Status]map[Status]StockEffect{
	StatusPending:   {StatusCancelled: EffectRestock},
	StatusConfirmed: {StatusCancelled: EffectRestock},
	StatusShipped:   {StatusCancelled: EffectRestock},
	StatusDelivered: {StatusCancelled: EffectRestock},
	StatusCancelled: {
		StatusPending:   EffectDeduct,
		StatusConfirmed: EffectDeduct,
		StatusShipped:   EffectDeduct,
		StatusDelivered: EffectDeduct,
	},
}

// TransitionEffect: self-transition selalu no-op.
func TransitionEffect(from, to Status) StockEffect {
	if from == to {
		return EffectNone
	}
	return stockEffect[from][to]
}
