package domain

import "time"

// Order represents a persisted customer order
type Order struct {
	ID              int64       `db:"id"               json:"id"`
	CustomerName    string      `db:"customer_name"    json:"customer_name"`
	CustomerEmail   string      `db:"customer_email"   json:"customer_email"`
	CustomerAddress string      `db:"customer_address" json:"customer_address"`
	TotalAmount     float64     `db:"total_amount"     json:"total_amount"`
	Status          OrderStatus `db:"status"           json:"status"`
	CreatedAt       time.Time   `db:"created_at"       json:"created_at"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderItem is one purchased line of an order
type OrderItem struct {
	ID        int64   `db:"id"         json:"id"`
	OrderID   int64   `db:"order_id"   json:"order_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Quantity  int     `db:"quantity"   json:"quantity"`
	Price     float64 `db:"price"      json:"price"`
}

// OrderLine is an incoming order line before persistence, carrying the
// product snapshot the customer checked out with.
type OrderLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
