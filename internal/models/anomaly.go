package models

import "time"

// AnomalyAlert flags a suspicious scan pattern on a QR code.
type AnomalyAlert struct {
	ID                 uint       `gorm:"primarykey" json:"id"`
	OrganizationID     uint       `gorm:"index;not null" json:"organization_id"`
	QRCodeID           uint       `gorm:"index;not null" json:"qr_code_id"`
	Kind               string     `gorm:"index;not null" json:"kind"`
	Details            JSON       `gorm:"type:text" json:"details"`
	Status             string     `gorm:"index;not null;default:open" json:"status"`
	AcknowledgedBy     uint       `json:"-"`
	AcknowledgedByKind string     `json:"acknowledged_by_kind"`
	AcknowledgedAt     *time.Time `json:"acknowledged_at"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName sets the table name.
func (AnomalyAlert) TableName() string {
	return "anomaly_alerts"
}
