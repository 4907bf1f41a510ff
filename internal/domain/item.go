package domain

import "github.com/shopspring/decimal"

// Item is a purchasable catalog entry. Items never change after seeding.
type Item struct {
	ID    uint            `gorm:"primaryKey" json:"id"`
	Name  string          `gorm:"size:128;not null" json:"name"`
	Price decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
}

// DefaultCatalog returns the items seeded at startup.
func DefaultCatalog() []Item {
	return []Item{
		{ID: 1, Name: "The Great Gatsby (Book)", Price: decimal.RequireFromString("50.00")},
		{ID: 2, Name: "Coffee Mug", Price: decimal.RequireFromString("25.50")},
		{ID: 3, Name: "Notebook (Premium)", Price: decimal.RequireFromString("10.00")},
		{ID: 4, Name: "Mystery Box (Low Risk)", Price: decimal.RequireFromString("49.99")},
		{ID: 5, Name: "Pen Set (Ballpoint)", Price: decimal.RequireFromString("15.00")},
	}
}
