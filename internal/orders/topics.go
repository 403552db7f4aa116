package orders

const (
	TopicOrderCreated   = "shop.order.created"
	TopicOrderCancelled = "shop.order.cancelled"
	TopicStockRestocked = "shop.stock.restocked"
)

// Partition key = order_id (restock pakai product_id), supaya event
// untuk satu entitas maintain urutan.
func PartitionKey(id string) []byte { return []byte(id) }
