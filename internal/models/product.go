package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SpecMap holds free-form product attributes keyed by name, e.g.
// {"color": "red", "legs": 4}. Values are arbitrary JSON-compatible data.
type SpecMap map[string]interface{}

// Product represents an item in the catalog. Products are seeded at startup
// and read-only through the API.
//
// Specs is stored as a JSON blob in the specs column; repositories only move
// the raw blob, EncodeSpecs/DecodeSpecs translate at the service boundary.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Description string    `json:"description" gorm:"type:text" validate:"required,max=500"`
	Category    string    `json:"category" gorm:"index;type:varchar(100)" validate:"required"`
	Image       string    `json:"image" gorm:"type:varchar(255)" validate:"required"`
	Price       int64     `json:"price" validate:"required,gt=0"` // minor currency units
	SpecsRaw    string    `json:"-" gorm:"column:specs;type:text"`
	Specs       SpecMap   `json:"specs" gorm:"-"`
	Stock       string    `json:"stock" gorm:"type:varchar(100);default:'in stock'"`
	CreatedAt   time.Time `json:"created_at"`
}

// EncodeSpecs serializes the Specs map into the stored blob.
func (p *Product) EncodeSpecs() error {
	if p.Specs == nil {
		p.SpecsRaw = "{}"
		return nil
	}
	raw, err := json.Marshal(p.Specs)
	if err != nil {
		return fmt.Errorf("failed to encode specs for product %s: %w", p.ID, err)
	}
	p.SpecsRaw = string(raw)
	return nil
}

// DecodeSpecs parses the stored blob back into the Specs map. A corrupt blob
// is reported as ErrMalformedSpecs rather than silently treated as empty.
func (p *Product) DecodeSpecs() error {
	if p.SpecsRaw == "" {
		p.Specs = SpecMap{}
		return nil
	}
	if err := json.Unmarshal([]byte(p.SpecsRaw), &p.Specs); err != nil {
		return fmt.Errorf("%w: product %s: %v", ErrMalformedSpecs, p.ID, err)
	}
	return nil
}
