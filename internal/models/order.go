package models

import "time"

// Order statuses. The status is set once when the order is created; this
// service never advances it.
const (
	OrderStatusPlaced     = "placed"
	OrderStatusDispatched = "dispatched"
	OrderStatusDelivered  = "delivered"
)

// OrderLine is a snapshot of one ordered item at placement time.
type OrderLine struct {
	ItemID   string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"` // unit price at the time of order
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

// Order is an immutable record of a completed checkout. Orders are
// append-only: once written to the user's order list they are never
// mutated or removed.
type Order struct {
	ID           string      `json:"order_id"`
	Items        []OrderLine `json:"items"`
	TotalAmount  float64     `json:"total_amount"`
	Status       string      `json:"status"`
	PlacedAt     time.Time   `json:"placed_at"`
	DispatchDate time.Time   `json:"dispatch_date"`
	DeliveryDate time.Time   `json:"delivery_date"`
}

// OrderList is a user's order history, persisted as a JSON column on the
// user row.
type OrderList []Order
