package catalog

import (
	"time"

	"github.com/vietddude/storefront/internal/core/domain"
)

// SampleProducts is the fixed product set served while the backing
// store is unprovisioned, so the storefront stays browsable.
func SampleProducts() []domain.Product {
	now := time.Now().UTC()
	return []domain.Product{
		{ID: 1, Name: "Wireless Headphones", Description: "High-quality wireless headphones with noise cancellation", Price: 99.99, ImageURL: "/placeholder.svg?text=Wireless+Headphones", StockQuantity: 25, CreatedAt: now},
		{ID: 2, Name: "Smartphone Case", Description: "Durable protective case for smartphones", Price: 19.99, ImageURL: "/placeholder.svg?text=Smartphone+Case", StockQuantity: 50, CreatedAt: now},
		{ID: 3, Name: "Bluetooth Speaker", Description: "Portable Bluetooth speaker with excellent sound quality", Price: 79.99, ImageURL: "/placeholder.svg?text=Bluetooth+Speaker", StockQuantity: 30, CreatedAt: now},
		{ID: 4, Name: "Laptop Stand", Description: "Adjustable aluminum laptop stand for better ergonomics", Price: 49.99, ImageURL: "/placeholder.svg?text=Laptop+Stand", StockQuantity: 20, CreatedAt: now},
		{ID: 5, Name: "USB-C Cable", Description: "Fast charging USB-C cable 6ft length", Price: 14.99, ImageURL: "/placeholder.svg?text=USB-C+Cable", StockQuantity: 100, CreatedAt: now},
		{ID: 6, Name: "Wireless Mouse", Description: "Ergonomic wireless mouse with precision tracking", Price: 34.99, ImageURL: "/placeholder.svg?text=Wireless+Mouse", StockQuantity: 40, CreatedAt: now},
		{ID: 7, Name: "Phone Charger", Description: "Fast wireless charging pad for smartphones", Price: 29.99, ImageURL: "/placeholder.svg?text=Phone+Charger", StockQuantity: 35, CreatedAt: now},
		{ID: 8, Name: "Tablet Holder", Description: "Adjustable tablet holder for desk or bedside use", Price: 24.99, ImageURL: "/placeholder.svg?text=Tablet+Holder", StockQuantity: 15, CreatedAt: now},
		{ID: 9, Name: "Keyboard Cover", Description: "Silicone keyboard cover for laptop protection", Price: 12.99, ImageURL: "/placeholder.svg?text=Keyboard+Cover", StockQuantity: 60, CreatedAt: now},
		{ID: 10, Name: "Screen Cleaner", Description: "Professional screen cleaning kit for all devices", Price: 9.99, ImageURL: "/placeholder.svg?text=Screen+Cleaner", StockQuantity: 80, CreatedAt: now},
	}
}
