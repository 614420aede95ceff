package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Organization is a producer tenant.
type Organization struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	Slug         string          `gorm:"uniqueIndex;not null" json:"slug"`
	Name         string          `gorm:"not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Website      string          `json:"website"`
	Country      string          `json:"country"`
	IsVerified   bool            `gorm:"not null;default:false" json:"is_verified"`
	TrustScore   decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"trust_score"`
	StatusLevel  string          `gorm:"not null;default:C" json:"status_level"`
	TelegramChat string          `json:"-"`
	ContactEmail string          `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Organization) TableName() string {
	return "organizations"
}

// OrganizationMember binds a user to an organization with a role.
type OrganizationMember struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	OrganizationID uint      `gorm:"uniqueIndex:idx_org_member;not null" json:"organization_id"`
	UserID         uint      `gorm:"uniqueIndex:idx_org_member;index;not null" json:"user_id"`
	Role           string    `gorm:"not null" json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (OrganizationMember) TableName() string {
	return "organization_members"
}
