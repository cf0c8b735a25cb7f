package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/meowls-gov/visa-portal/internal/domain"
	"github.com/meowls-gov/visa-portal/internal/dto"
	"github.com/meowls-gov/visa-portal/internal/helper/utils"
	"github.com/meowls-gov/visa-portal/internal/interfaces"
	"github.com/meowls-gov/visa-portal/internal/metrics"
	"github.com/meowls-gov/visa-portal/internal/repository"
)

const documentFolder = "meowls/visa_documents"

type ApplicationService interface {
	Create(userID string, input dto.ApplicationCreate) (*domain.VisaApplication, error)
	ListByUser(userID string) ([]domain.VisaApplication, error)
	Get(appID string, requester *domain.User) (*domain.VisaApplication, error)
	Update(appID, userID string, input dto.ApplicationCreate) (*domain.VisaApplication, error)
	UploadDocument(ctx context.Context, appID, userID, docType, filename string, mimeType string, size int64, data []byte) (*domain.ApplicationDocument, error)
	Submit(appID, userID string) (*domain.VisaApplication, error)
}

type applicationService struct {
	repo     repository.ApplicationRepository
	uploader interfaces.Uploader
	producer interfaces.ProducerHandler
}

func NewApplicationService(
	repo repository.ApplicationRepository,
	uploader interfaces.Uploader,
	producer interfaces.ProducerHandler,
) ApplicationService {
	return &applicationService{
		repo:     repo,
		uploader: uploader,
		producer: producer,
	}
}

// Create assigns the application_id; the id is minted exactly once and never
// changes afterwards.
func (s *applicationService) Create(userID string, input dto.ApplicationCreate) (*domain.VisaApplication, error) {
	visaType, err := domain.ParseVisaType(input.VisaType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !input.PersonalInfo.Complete() {
		return nil, fmt.Errorf("%w: personal info is incomplete", ErrValidation)
	}
	if !input.TravelDetails.Complete() {
		return nil, fmt.Errorf("%w: travel details are incomplete", ErrValidation)
	}

	app := &domain.VisaApplication{
		ApplicationID: utils.NewApplicationID(),
		UserID:        userID,
		VisaType:      visaType,
		Status:        domain.StatusDraft,
		PersonalInfo:  input.PersonalInfo,
		TravelDetails: input.TravelDetails,
	}
	if _, err := s.repo.Create(app); err != nil {
		return nil, err
	}

	metrics.ApplicationsCreated.Inc()
	s.publishEvent(dto.ApplicationEvent{
		Type:          dto.EventApplicationCreated,
		ApplicationID: app.ApplicationID,
		ActorID:       userID,
		Status:        string(app.Status),
	})

	return app, nil
}

func (s *applicationService) ListByUser(userID string) ([]domain.VisaApplication, error) {
	return s.repo.ListByUser(userID)
}

// Get serves the applicant detail view, the tracking view, and admin review;
// owners and admins see the same record shape.
func (s *applicationService) Get(appID string, requester *domain.User) (*domain.VisaApplication, error) {
	app, err := s.repo.FindByApplicationID(appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if app.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, ErrForbidden
	}
	return app, nil
}

func (s *applicationService) Update(appID, userID string, input dto.ApplicationCreate) (*domain.VisaApplication, error) {
	app, err := s.ownedApplication(appID, userID)
	if err != nil {
		return nil, err
	}
	if !app.Editable() {
		return nil, ErrNotEditable
	}

	visaType, err := domain.ParseVisaType(input.VisaType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	app.VisaType = visaType
	app.PersonalInfo = input.PersonalInfo
	app.TravelDetails = input.TravelDetails
	if err := s.repo.Save(app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationService) UploadDocument(
	ctx context.Context,
	appID, userID, docType, filename string,
	mimeType string,
	size int64,
	data []byte,
) (*domain.ApplicationDocument, error) {
	parsedType, err := domain.ParseDocumentType(docType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	app, err := s.ownedApplication(appID, userID)
	if err != nil {
		return nil, err
	}
	if !app.Editable() {
		return nil, ErrNotEditable
	}

	url, err := s.uploader.UploadBytes(ctx, documentFolder,
		fmt.Sprintf("%s_%s", app.ApplicationID, parsedType), data)
	if err != nil {
		return nil, fmt.Errorf("document upload failed: %w", err)
	}

	doc := &domain.ApplicationDocument{
		ApplicationID: app.ApplicationID,
		DocType:       parsedType,
		FileURL:       url,
		FileName:      filename,
		MimeType:      &mimeType,
		FileSize:      &size,
	}
	if err := s.repo.UpsertDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Submit performs the single applicant-triggered transition, draft -> submitted.
func (s *applicationService) Submit(appID, userID string) (*domain.VisaApplication, error) {
	app, err := s.ownedApplication(appID, userID)
	if err != nil {
		return nil, err
	}
	if !app.CanSubmit() {
		return nil, ErrAlreadySubmitted
	}

	app.Status = domain.StatusSubmitted
	if err := s.repo.Save(app); err != nil {
		return nil, err
	}

	metrics.ApplicationsSubmitted.Inc()
	s.publishEvent(dto.ApplicationEvent{
		Type:          dto.EventApplicationSubmitted,
		ApplicationID: app.ApplicationID,
		ActorID:       userID,
		Status:        string(app.Status),
	})

	return app, nil
}

func (s *applicationService) ownedApplication(appID, userID string) (*domain.VisaApplication, error) {
	app, err := s.repo.FindByApplicationID(appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if app.UserID != userID {
		return nil, ErrForbidden
	}
	return app, nil
}

func (s *applicationService) publishEvent(event dto.ApplicationEvent) {
	if s.producer == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal event error: %v", err)
		return
	}
	if err := s.producer.PublishMessage([]byte(event.Type), payload); err != nil {
		log.Printf("publish %s event error: %v", event.Type, err)
	}
}
