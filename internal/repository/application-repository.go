package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/meowls-gov/visa-portal/internal/domain"
)

type ApplicationRepository interface {
	Create(app *domain.VisaApplication) (*domain.VisaApplication, error)
	FindByApplicationID(appID string) (*domain.VisaApplication, error)
	ListByUser(userID string) ([]domain.VisaApplication, error)
	ListAll() ([]domain.VisaApplication, error)
	Save(app *domain.VisaApplication) error
	UpsertDocument(doc *domain.ApplicationDocument) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(app *domain.VisaApplication) (*domain.VisaApplication, error) {
	if app == nil {
		return nil, errors.New("nil application")
	}
	if err := r.db.Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

func (r *applicationRepository) FindByApplicationID(appID string) (*domain.VisaApplication, error) {
	app := &domain.VisaApplication{}
	err := r.db.
		Preload("Documents").
		First(app, "application_id = ?", appID).Error
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *applicationRepository) ListByUser(userID string) ([]domain.VisaApplication, error) {
	var apps []domain.VisaApplication
	err := r.db.
		Preload("Documents").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepository) ListAll() ([]domain.VisaApplication, error) {
	var apps []domain.VisaApplication
	err := r.db.
		Preload("Documents").
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepository) Save(app *domain.VisaApplication) error {
	if app == nil {
		return errors.New("nil application")
	}
	return r.db.Save(app).Error
}

// UpsertDocument replaces any previous upload for the same slot, so repeating
// a wizard step never produces duplicate document rows.
func (r *applicationRepository) UpsertDocument(doc *domain.ApplicationDocument) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		existing := &domain.ApplicationDocument{}
		err := tx.First(existing, "application_id = ? AND doc_type = ?", doc.ApplicationID, doc.DocType).Error
		if err == nil {
			doc.ID = existing.ID
			doc.CreatedAt = existing.CreatedAt
			return tx.Save(doc).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(doc).Error
	})
}
