package services

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/meowls-gov/visa-portal/internal/domain"
	"github.com/meowls-gov/visa-portal/internal/dto"
	"github.com/meowls-gov/visa-portal/internal/repository"
)

// AuditService consumes application lifecycle events off the broker and keeps
// a queryable trail of who did what.
type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Recent returns the newest trail entries for the admin dashboard.
func (s *AuditService) Recent(limit int) ([]domain.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.ListRecent(limit)
}

func (s *AuditService) HandleMessage(message string) error {
	var event dto.ApplicationEvent
	if err := json.Unmarshal([]byte(message), &event); err != nil {
		log.Printf("invalid event payload: %s", message)
		return err
	}
	if event.Type == "" || event.ApplicationID == "" {
		return fmt.Errorf("event missing type or application id")
	}

	entry := &domain.AuditLog{
		ActorID:  event.ActorID,
		Action:   event.Type,
		Entity:   "application",
		EntityID: event.ApplicationID,
	}
	if event.Note != "" {
		note := event.Note
		entry.Note = &note
	}
	return s.repo.Create(entry)
}
