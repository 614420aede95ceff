package models

import (
	"time"

	"gorm.io/gorm"
)

// WarrantyClaim is a consumer's warranty request against a product.
type WarrantyClaim struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	OrganizationID uint           `gorm:"index;not null" json:"organization_id"`
	ProductID      uint           `gorm:"index;not null" json:"product_id"`
	UserID         uint           `gorm:"index;not null" json:"user_id"`
	Subject        string         `gorm:"not null" json:"subject"`
	Description    string         `gorm:"type:text" json:"description"`
	PurchaseProof  string         `json:"purchase_proof"`
	Status         string         `gorm:"index;not null;default:open" json:"status"`
	Resolution     string         `gorm:"type:text" json:"resolution"`
	RespondedAt    *time.Time     `json:"responded_at"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (WarrantyClaim) TableName() string {
	return "warranty_claims"
}
