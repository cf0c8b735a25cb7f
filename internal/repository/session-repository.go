package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/meowls-gov/visa-portal/internal/domain"
)

type SessionRepository interface {
	CreateSession(session *domain.Session) error
	FindByTokenHash(hash string) (*domain.Session, error)
	DeleteByTokenHash(hash string) error
	DeleteExpired(now time.Time) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) CreateSession(session *domain.Session) error {
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindByTokenHash(hash string) (*domain.Session, error) {
	session := &domain.Session{}
	if err := r.db.First(session, "token_hash = ?", hash).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *sessionRepository) DeleteByTokenHash(hash string) error {
	return r.db.Where("token_hash = ?", hash).Delete(&domain.Session{}).Error
}

func (r *sessionRepository) DeleteExpired(now time.Time) error {
	return r.db.Where("expires_at < ?", now).Delete(&domain.Session{}).Error
}
