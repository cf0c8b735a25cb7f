package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meowls-gov/visa-portal/internal/domain"
)

func testApplication() *domain.VisaApplication {
	return &domain.VisaApplication{
		ApplicationID: "app_abc123def456",
		UserID:        "user_abc123def456",
		VisaType:      domain.VisaTourist,
		Status:        domain.StatusApproved,
		PersonalInfo: domain.PersonalInfo{
			FullName: "Mittens Whiskerton",
			Email:    "mittens@example.com",
		},
		TravelDetails: domain.TravelDetails{
			ArrivalDate:   "2026-09-01",
			DepartureDate: "2026-09-14",
		},
	}
}

func newTestMailer(t *testing.T) *SMTPMailer {
	t.Helper()
	m, err := New("localhost", "2525", "", "", "visa@meowls.gov", "Meowls Immigration")
	if err != nil {
		t.Fatalf("failed to build mailer: %v", err)
	}
	return m
}

func TestRenderApprovalEmail(t *testing.T) {
	m := newTestMailer(t)
	data := m.buildData(testApplication(), "")

	letter, err := m.render("approval-letter.txt", data)
	assert.NoError(t, err)
	assert.Contains(t, letter, "REPUBLIC OF MEOWLS")
	assert.Contains(t, letter, "app_abc123def456")
	assert.Contains(t, letter, "Tourist visa application has been APPROVED")

	data.Letter = letter
	body, err := m.render("approval-email.html", data)
	assert.NoError(t, err)
	assert.Contains(t, body, "Mittens Whiskerton")
	assert.Contains(t, body, "2026-09-01")
	assert.Contains(t, body, "VISA APPROVAL NOTICE")
}

func TestRenderRejectionEmail(t *testing.T) {
	m := newTestMailer(t)

	data := m.buildData(testApplication(), "Passport expired.")
	body, err := m.render("rejection-email.html", data)
	assert.NoError(t, err)
	assert.Contains(t, body, "Mittens Whiskerton")
	assert.Contains(t, body, "app_abc123def456")
	assert.Contains(t, body, "Passport expired.")

	// without notes the reason block is omitted entirely
	data = m.buildData(testApplication(), "")
	body, err = m.render("rejection-email.html", data)
	assert.NoError(t, err)
	assert.NotContains(t, body, "Reason:")
}

func TestBuildData(t *testing.T) {
	m := newTestMailer(t)
	data := m.buildData(testApplication(), "note")

	assert.Equal(t, "Tourist", data.VisaType, "visa type is title-cased for display")
	assert.Equal(t, "note", data.Notes)
	assert.NotEmpty(t, data.IssueDate)
}

func TestSendRequiresRecipient(t *testing.T) {
	m := newTestMailer(t)
	app := testApplication()
	app.PersonalInfo.Email = ""

	err := m.SendApprovalEmail(context.Background(), app)
	assert.Error(t, err)
}
