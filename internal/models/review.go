package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is a consumer review of a product, moderated before publication.
type Review struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	OrganizationID uint           `gorm:"index;not null" json:"organization_id"`
	ProductID      uint           `gorm:"index;not null" json:"product_id"`
	UserID         uint           `gorm:"index;not null" json:"user_id"`
	Rating         int            `gorm:"not null" json:"rating"`
	Body           string         `gorm:"type:text" json:"body"`
	Photos         StringArray    `gorm:"type:text" json:"photos"`
	Status         string         `gorm:"index;not null;default:pending" json:"status"`
	OrgReply       string         `gorm:"type:text" json:"org_reply"`
	RepliedAt      *time.Time     `json:"replied_at"`
	ModeratedBy    uint           `json:"-"`
	ModeratedAt    *time.Time     `json:"moderated_at"`
	RejectReason   string         `json:"reject_reason,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Review) TableName() string {
	return "reviews"
}

// Follow subscribes a user to an organization's updates.
type Follow struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	UserID         uint      `gorm:"uniqueIndex:idx_follow;not null" json:"user_id"`
	OrganizationID uint      `gorm:"uniqueIndex:idx_follow;index;not null" json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName sets the table name.
func (Follow) TableName() string {
	return "follows"
}
