package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubscriptionPlan is a platform-defined tier assignable to organizations.
type SubscriptionPlan struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	Code         string          `gorm:"uniqueIndex;not null" json:"code"`
	Name         string          `gorm:"not null" json:"name"`
	MonthlyPrice decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"monthly_price"`
	MaxProducts  int             `gorm:"not null;default:0" json:"max_products"`
	MaxQRCodes   int             `gorm:"not null;default:0" json:"max_qr_codes"`
	IsActive     bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// OrgSubscription assigns a plan to an organization for a period.
type OrgSubscription struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	OrganizationID uint      `gorm:"index;not null" json:"organization_id"`
	PlanID         uint      `gorm:"index;not null" json:"plan_id"`
	Status         string    `gorm:"not null;default:active" json:"status"`
	StartsAt       time.Time `gorm:"not null" json:"starts_at"`
	EndsAt         time.Time `gorm:"index;not null" json:"ends_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (OrgSubscription) TableName() string {
	return "org_subscriptions"
}
