package domain

import "time"

// Product is an immutable catalog snapshot. Cart and order code never
// mutate it; stock decrements go through the repository.
type Product struct {
	ID            int64     `db:"id"            json:"id"`
	Name          string    `db:"name"          json:"name"`
	Description   string    `db:"description"   json:"description"`
	Price         float64   `db:"price"         json:"price"`
	ImageURL      string    `db:"image_url"     json:"image_url"`
	StockQuantity int       `db:"stock_quantity" json:"stock_quantity"`
	CreatedAt     time.Time `db:"created_at"    json:"created_at"`
}
