package redisx

import "time"

const (
	// order_status:{order_id} -> hash {v: updated_at unix micro, data: StatusEntry JSON}
	KeyOrderStatus = "order_status:%s"

	// dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Cart: hash cart:{customer_id} food_item_id -> qty
	KeyCart = "cart:%s"

	// Restaurant pemilik cart: cart:{customer_id}:restaurant -> restaurant_id
	KeyCartRestaurant = "cart:%s:restaurant"
)

var (
	TTLStatusCache = 10 * time.Minute
	TTLDedup       = 48 * time.Hour
	TTLCart        = 7 * 24 * time.Hour
)
