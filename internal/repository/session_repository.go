package repository

import (
	"errors"
	"time"

	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// SessionRepository is the consumer session data access interface.
type SessionRepository interface {
	GetByToken(token string) (*models.Session, error)
	Create(session *models.Session) error
	DeleteByToken(token string) error
	DeleteByUser(userID uint) error
	DeleteExpired(before time.Time) (int64, error)
}

// GormSessionRepository is the GORM implementation.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates the session repository.
func NewSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// GetByToken fetches a session by its token.
func (r *GormSessionRepository) GetByToken(token string) (*models.Session, error) {
	var session models.Session
	if err := r.db.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Create inserts a session.
func (r *GormSessionRepository) Create(session *models.Session) error {
	return r.db.Create(session).Error
}

// DeleteByToken removes one session.
func (r *GormSessionRepository) DeleteByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.Session{}).Error
}

// DeleteByUser removes every session of a user.
func (r *GormSessionRepository) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

// DeleteExpired purges sessions that expired before the given time.
func (r *GormSessionRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", before).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
