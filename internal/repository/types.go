package repository

import "time"

// OrganizationListFilter filters the organization list.
type OrganizationListFilter struct {
	Page         int
	PageSize     int
	Search       string
	Country      string
	StatusLevel  string
	OnlyVerified bool
}

// UserListFilter filters the user list.
type UserListFilter struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

// ProductListFilter filters the product list.
type ProductListFilter struct {
	Page           int
	PageSize       int
	OrganizationID uint
	Search         string
	OnlyActive     bool
}

// QRCodeListFilter filters the QR code list.
type QRCodeListFilter struct {
	Page           int
	PageSize       int
	OrganizationID uint
	ProductID      uint
	Search         string
	OnlyActive     bool
}

// ScanEventListFilter filters scan events.
type ScanEventListFilter struct {
	Page           int
	PageSize       int
	QRCodeID       uint
	OrganizationID uint
	SourceKind     string
	Country        string
	ScannedFrom    *time.Time
	ScannedTo      *time.Time
}

// ReviewListFilter filters reviews.
type ReviewListFilter struct {
	Page           int
	PageSize       int
	OrganizationID uint
	ProductID      uint
	UserID         uint
	Status         string
	MinRating      int
}

// RewardTxListFilter filters reward transactions.
type RewardTxListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Kind     string
}

// WarrantyListFilter filters warranty claims.
type WarrantyListFilter struct {
	Page           int
	PageSize       int
	OrganizationID uint
	UserID         uint
	Status         string
}

// AnomalyListFilter filters anomaly alerts.
type AnomalyListFilter struct {
	Page           int
	PageSize       int
	OrganizationID uint
	QRCodeID       uint
	Kind           string
	Status         string
}
