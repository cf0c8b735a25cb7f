package interfaces

import (
	"context"

	"github.com/meowls-gov/visa-portal/internal/domain"
)

// Mailer delivers decision notifications to the applicant. Implementations
// must return a non-nil error whenever the mail was not actually handed off,
// so callers can report email_sent truthfully.
type Mailer interface {
	SendApprovalEmail(ctx context.Context, app *domain.VisaApplication) error
	SendRejectionEmail(ctx context.Context, app *domain.VisaApplication, notes string) error
}
