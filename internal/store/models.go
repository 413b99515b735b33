package store

import "time"

// Product is the upserted product identity. Identity is exact name
// match: identical title strings are the same product across scrapes,
// a one-character drift spawns a new row. No canonicalization.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:512;uniqueIndex" json:"name"`
	Brand     string    `gorm:"size:128" json:"brand"`
	Category  string    `gorm:"size:64" json:"category"`
	ImageURL  string    `gorm:"size:1024" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// PriceEntry is one append-only price observation in home currency.
type PriceEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `gorm:"index" json:"product_id"`
	PriceINR    float64   `json:"price_inr"`
	SiteName    string    `gorm:"size:64" json:"site_name"`
	ProductLink string    `gorm:"size:1024" json:"product_link"`
	ScrapedAt   time.Time `gorm:"autoCreateTime;index" json:"scraped_at"`
}
