// Package database owns the store handle: it opens the configured database
// and runs the idempotent schema migration. The resulting *gorm.DB is passed
// to repositories explicitly; nothing here is global.
package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"lavka/internal/models"
	"lavka/internal/repositories"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the configured database. driver is "sqlite" (default) or
// "postgres". TranslateError is enabled so unique-constraint violations
// surface as gorm.ErrDuplicatedKey on both drivers.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		if !isMemoryDSN(dsn) {
			if dir := sqliteDir(dsn); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
				}
			}
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates the users, products and reviews tables if they are
// missing. Safe to run on every process start.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Review{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// isMemoryDSN reports whether the DSN names an in-memory database. A plain
// file: prefix is not enough; file-backed URI DSNs still need their
// directory created.
func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// sqliteDir extracts the directory of a file-backed SQLite DSN, stripping
// the file: prefix and any query parameters.
func sqliteDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return filepath.Dir(path)
}

// EnsureSeedProducts inserts the starter catalog on first start. Products
// are created out-of-band of the API surface, so an already-populated table
// is left untouched.
func EnsureSeedProducts(repo repositories.ProductRepository) error {
	count, err := repo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{
			Name:        "Office Chair",
			Description: "Ergonomic swivel chair with lumbar support",
			Category:    "furniture",
			Image:       "/static/img/office-chair.jpg",
			Price:       124900,
			Specs:       models.SpecMap{"color": "black", "legs": 5, "adjustable": true},
		},
		{
			Name:        "Oak Desk",
			Description: "Solid oak writing desk, 140x70cm",
			Category:    "furniture",
			Image:       "/static/img/oak-desk.jpg",
			Price:       349900,
			Specs:       models.SpecMap{"color": "natural", "legs": 4, "material": "oak"},
		},
		{
			Name:        "Desk Lamp",
			Description: "LED desk lamp with adjustable arm",
			Category:    "lighting",
			Image:       "/static/img/desk-lamp.jpg",
			Price:       45900,
			Specs:       models.SpecMap{"color": "white", "power_w": 9},
		},
	}

	for i := range products {
		products[i].Stock = "in stock"
		if err := products[i].EncodeSpecs(); err != nil {
			return err
		}
		if err := repo.Create(&products[i]); err != nil {
			return err
		}
		log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
	}
	return nil
}
