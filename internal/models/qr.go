package models

import (
	"time"

	"gorm.io/gorm"
)

// QRCode identifies a printed code. The slug is embedded in printed material
// and never changes; destinations move underneath it.
type QRCode struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	OrganizationID uint           `gorm:"index;not null" json:"organization_id"`
	ProductID      uint           `gorm:"index" json:"product_id"`
	Slug           string         `gorm:"uniqueIndex;not null" json:"slug"`
	Label          string         `json:"label"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (QRCode) TableName() string {
	return "qr_codes"
}

// QRUrlVersion is one destination in a code's append-only URL history.
// Exactly one row per code has IsCurrent set; superseding never deletes.
type QRUrlVersion struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	QRCodeID  uint      `gorm:"index;not null" json:"qr_code_id"`
	URL       string    `gorm:"not null" json:"url"`
	Comment   string    `json:"comment"`
	IsCurrent bool      `gorm:"index;not null;default:false" json:"is_current"`
	HitCount  int64     `gorm:"not null;default:0" json:"hit_count"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (QRUrlVersion) TableName() string {
	return "qr_url_versions"
}

// QRCampaign is a scheduled destination override for the window
// [StartsAt, EndsAt). Closed windows keep their rows; only the status
// flag may change afterwards.
type QRCampaign struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	QRCodeID  uint      `gorm:"index;not null" json:"qr_code_id"`
	Name      string    `gorm:"not null" json:"name"`
	URL       string    `gorm:"not null" json:"url"`
	StartsAt  time.Time `gorm:"index;not null" json:"starts_at"`
	EndsAt    time.Time `gorm:"index;not null" json:"ends_at"`
	Status    string    `gorm:"not null;default:active" json:"status"`
	HitCount  int64     `gorm:"not null;default:0" json:"hit_count"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (QRCampaign) TableName() string {
	return "qr_campaigns"
}

// QRABTest is a traffic-split experiment over a code's destination.
// Variants are fixed at creation; only counters mutate during the run.
type QRABTest struct {
	ID        uint          `gorm:"primarykey" json:"id"`
	QRCodeID  uint          `gorm:"index;not null" json:"qr_code_id"`
	Name      string        `gorm:"not null" json:"name"`
	Status    string        `gorm:"index;not null;default:draft" json:"status"`
	Variants  []QRABVariant `gorm:"foreignKey:ABTestID" json:"variants"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// TableName sets the table name.
func (QRABTest) TableName() string {
	return "qr_ab_tests"
}

// QRABVariant is one destination arm with a percent traffic weight.
type QRABVariant struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ABTestID  uint      `gorm:"index;not null" json:"ab_test_id"`
	Name      string    `gorm:"not null" json:"name"`
	URL       string    `gorm:"not null" json:"url"`
	Weight    int       `gorm:"not null" json:"weight"`
	Position  int       `gorm:"not null" json:"position"`
	HitCount  int64     `gorm:"not null;default:0" json:"hit_count"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the table name.
func (QRABVariant) TableName() string {
	return "qr_ab_variants"
}

// ScanEvent is an append-only record of one resolved scan.
type ScanEvent struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	QRCodeID   uint      `gorm:"index;not null" json:"qr_code_id"`
	SourceKind string    `gorm:"not null" json:"source_kind"`
	SourceID   uint      `gorm:"not null" json:"source_id"`
	VisitorKey string    `gorm:"index" json:"visitor_key"`
	IP         string    `json:"ip"`
	Country    string    `gorm:"index" json:"country"`
	City       string    `json:"city"`
	UserAgent  string    `json:"user_agent"`
	ScannedAt  time.Time `gorm:"index;not null" json:"scanned_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName sets the table name.
func (ScanEvent) TableName() string {
	return "scan_events"
}
