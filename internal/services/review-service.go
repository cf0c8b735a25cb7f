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
	"github.com/meowls-gov/visa-portal/internal/interfaces"
	"github.com/meowls-gov/visa-portal/internal/metrics"
	"github.com/meowls-gov/visa-portal/internal/repository"
)

type ReviewService interface {
	ListAll() ([]domain.VisaApplication, error)

	// UpdateStatus applies an admin transition and returns whether the
	// decision email actually went out.
	UpdateStatus(ctx context.Context, appID string, admin *domain.User, input dto.StatusUpdate) (*domain.VisaApplication, bool, error)
}

type reviewService struct {
	repo     repository.ApplicationRepository
	mailer   interfaces.Mailer
	producer interfaces.ProducerHandler
}

func NewReviewService(
	repo repository.ApplicationRepository,
	mailer interfaces.Mailer,
	producer interfaces.ProducerHandler,
) ReviewService {
	return &reviewService{
		repo:     repo,
		mailer:   mailer,
		producer: producer,
	}
}

func (s *reviewService) ListAll() ([]domain.VisaApplication, error) {
	return s.repo.ListAll()
}

func (s *reviewService) UpdateStatus(
	ctx context.Context,
	appID string,
	admin *domain.User,
	input dto.StatusUpdate,
) (*domain.VisaApplication, bool, error) {
	target, err := domain.ParseApplicationStatus(input.Status)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	// admins move applications between the four review states; draft is only
	// ever entered at creation
	if !target.AdminAssignable() {
		return nil, false, fmt.Errorf("%w: status %q cannot be assigned", ErrValidation, target)
	}

	app, err := s.repo.FindByApplicationID(appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	// mirrors the disabled update control in the review UI
	if app.Status == target {
		return nil, false, ErrSameStatus
	}

	app.Status = target
	if input.Notes != "" {
		notes := input.Notes
		app.AdminNotes = &notes
	}
	if err := s.repo.Save(app); err != nil {
		return nil, false, err
	}

	metrics.StatusTransitions.WithLabelValues(string(target)).Inc()
	s.publishEvent(dto.ApplicationEvent{
		Type:          dto.EventStatusChanged,
		ApplicationID: app.ApplicationID,
		ActorID:       admin.UserID,
		Status:        string(target),
		Note:          input.Notes,
	})

	emailSent := s.notify(ctx, app, target, input.Notes)
	return app, emailSent, nil
}

// notify sends the decision email for terminal transitions. A failed send is
// logged and reported as email_sent=false; the status change itself stands.
func (s *reviewService) notify(ctx context.Context, app *domain.VisaApplication, target domain.ApplicationStatus, notes string) bool {
	if s.mailer == nil || !target.Terminal() {
		return false
	}

	var err error
	switch target {
	case domain.StatusApproved:
		err = s.mailer.SendApprovalEmail(ctx, app)
	case domain.StatusRejected:
		err = s.mailer.SendRejectionEmail(ctx, app, notes)
	}

	if err != nil {
		log.Printf("decision email for %s failed: %v", app.ApplicationID, err)
		metrics.NotificationEmails.WithLabelValues("error").Inc()
		return false
	}
	metrics.NotificationEmails.WithLabelValues("sent").Inc()
	return true
}

func (s *reviewService) publishEvent(event dto.ApplicationEvent) {
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
