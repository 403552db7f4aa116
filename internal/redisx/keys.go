package redisx

import "time"

const (
	// Cache status order: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Cache ringkasan ketersediaan produk: availability:{product_id}
	KeyAvailability = "availability:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache  = 5 * time.Minute
	TTLAvailability = 30 * time.Second
	TTLDedup        = 48 * time.Hour
)
