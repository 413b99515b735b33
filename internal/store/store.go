package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/guarzo/priceatlas/internal/model"
)

// Store is the persistence gateway. Callers treat every failure as
// "no history available" rather than fatal, so all methods surface
// plain errors and never panic.
type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&Product{}, &PriceEntry{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing gorm handle. Used by tests.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SaveObservation upserts the product identity by exact name and
// appends one price row in home currency. Returns the product id.
func (s *Store) SaveObservation(rec model.ProductRecord, homePrice float64) (uint, error) {
	var product Product
	err := s.db.Where("name = ?", rec.Title).First(&product).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		product = Product{
			Name:     rec.Title,
			Brand:    brandFor(rec),
			Category: categoryFor(rec),
			ImageURL: rec.Image,
		}
		if err := s.db.Create(&product).Error; err != nil {
			return 0, fmt.Errorf("insert product: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("lookup product: %w", err)
	}

	entry := PriceEntry{
		ProductID:   product.ID,
		PriceINR:    homePrice,
		SiteName:    rec.Source,
		ProductLink: rec.URL,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("insert price entry: %w", err)
	}

	return product.ID, nil
}

// History returns the product's price observations, newest first.
func (s *Store) History(productID uint) ([]model.PricePoint, error) {
	var entries []PriceEntry
	err := s.db.
		Where("product_id = ?", productID).
		Order("scraped_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load price history: %w", err)
	}

	points := make([]model.PricePoint, len(entries))
	for i, e := range entries {
		points[i] = model.PricePoint{Price: e.PriceINR, ObservedAt: e.ScrapedAt}
	}
	return points, nil
}

// RecentProductNames lists the most recently observed product names,
// used by the scheduler to decide what to re-scrape.
func (s *Store) RecentProductNames(limit int) ([]string, error) {
	var names []string
	err := s.db.Model(&PriceEntry{}).
		Distinct("products.name").
		Joins("JOIN products ON products.id = price_entries.product_id").
		Order("products.name").
		Limit(limit).
		Pluck("products.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("list recent products: %w", err)
	}
	return names, nil
}

// brandFor extracts a brand: the scraped one if present, else the first
// word of the title.
func brandFor(rec model.ProductRecord) string {
	if rec.Brand != "" {
		return rec.Brand
	}
	if fields := strings.Fields(rec.Title); len(fields) > 0 {
		return fields[0]
	}
	return "Unknown"
}

func categoryFor(rec model.ProductRecord) string {
	if rec.Category != "" {
		return rec.Category
	}
	return "general"
}
