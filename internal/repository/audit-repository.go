package repository

import (
	"gorm.io/gorm"

	"github.com/meowls-gov/visa-portal/internal/domain"
)

type AuditRepository interface {
	Create(entry *domain.AuditLog) error
	ListRecent(limit int) ([]domain.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(entry *domain.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *auditRepository) ListRecent(limit int) ([]domain.AuditLog, error) {
	var entries []domain.AuditLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
