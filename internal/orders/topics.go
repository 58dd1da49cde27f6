package orders

const (
	TopicOrderPlaced        = "order.placed"
	TopicOrderStatusChanged = "order.status.changed"
)

// PartitionKey: semua event satu order masuk partisi yang sama, jadi urutan
// placed -> accepted -> ... tetap terjaga.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
