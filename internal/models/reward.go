package models

import "time"

// RewardAccount holds a user's point balance.
type RewardAccount struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (RewardAccount) TableName() string {
	return "reward_accounts"
}

// RewardTransaction is one point accrual or adjustment.
type RewardTransaction struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Kind      string    `gorm:"not null" json:"kind"`
	Points    int64     `gorm:"not null" json:"points"`
	RefID     uint      `json:"ref_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (RewardTransaction) TableName() string {
	return "reward_transactions"
}
