package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/meowls-gov/visa-portal/internal/domain"
	"github.com/meowls-gov/visa-portal/internal/dto"
	"github.com/meowls-gov/visa-portal/internal/helper/utils"
	"github.com/meowls-gov/visa-portal/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite test database: %v", err)
	}

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.VisaApplication{},
		&domain.ApplicationDocument{},
		&domain.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, role domain.Role) *domain.User {
	t.Helper()

	user := &domain.User{
		UserID: utils.NewUserID(),
		Email:  fmt.Sprintf("%s@example.com", utils.NewUserID()),
		Name:   "Test User",
		Role:   role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func validCreateInput() dto.ApplicationCreate {
	return dto.ApplicationCreate{
		VisaType: "tourist",
		PersonalInfo: domain.PersonalInfo{
			FullName:       "A B",
			DateOfBirth:    "1990-05-04",
			Nationality:    "Catland",
			PassportNumber: "P1234567",
			PassportExpiry: "2030-05-04",
			Email:          "applicant@example.com",
			Phone:          "+15550100",
			Address:        "1 Main St",
		},
		TravelDetails: domain.TravelDetails{
			Purpose:              "Tourism",
			ArrivalDate:          "2026-09-01",
			DepartureDate:        "2026-09-14",
			AccommodationAddress: "Hotel Meow, Meowls City",
		},
	}
}

// fakeProducer records published events.
type fakeProducer struct {
	mu       sync.Mutex
	keys     []string
	payloads [][]byte
}

func (p *fakeProducer) PublishMessage(key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, string(key))
	p.payloads = append(p.payloads, value)
	return nil
}

func (p *fakeProducer) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

// fakeUploader counts calls and returns a deterministic URL.
type fakeUploader struct {
	calls int
	fail  bool
}

func (u *fakeUploader) UploadBytes(_ context.Context, folder, filename string, _ []byte) (string, error) {
	u.calls++
	if u.fail {
		return "", errors.New("upload failed")
	}
	return fmt.Sprintf("https://cdn.example.com/%s/%s", folder, filename), nil
}

// fakeMailer reports success unless told to fail.
type fakeMailer struct {
	fail       bool
	approvals  int
	rejections int
	lastNotes  string
}

func (m *fakeMailer) SendApprovalEmail(_ context.Context, _ *domain.VisaApplication) error {
	m.approvals++
	if m.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (m *fakeMailer) SendRejectionEmail(_ context.Context, _ *domain.VisaApplication, notes string) error {
	m.rejections++
	m.lastNotes = notes
	if m.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func newApplicationService(t *testing.T, db *gorm.DB, uploader *fakeUploader, producer *fakeProducer) ApplicationService {
	t.Helper()
	return NewApplicationService(repository.NewApplicationRepository(db), uploader, producer)
}
