package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is an item registered by an organization.
type Product struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	OrganizationID uint           `gorm:"index;not null" json:"organization_id"`
	Slug           string         `gorm:"uniqueIndex;not null" json:"slug"`
	Name           string         `gorm:"not null" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	Category       string         `json:"category"`
	Images         StringArray    `gorm:"type:text" json:"images"`
	Attributes     JSON           `gorm:"type:text" json:"attributes"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}

// JourneyStep is one append-only provenance entry of a product.
// Rows are never updated or deleted once written.
type JourneyStep struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ProductID  uint      `gorm:"index;not null" json:"product_id"`
	Title      string    `gorm:"not null" json:"title"`
	Details    string    `gorm:"type:text" json:"details"`
	Location   string    `json:"location"`
	OccurredAt time.Time `gorm:"index;not null" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName sets the table name.
func (JourneyStep) TableName() string {
	return "journey_steps"
}
