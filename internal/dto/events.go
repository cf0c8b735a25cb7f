package dto

import "time"

const (
	EventApplicationCreated   = "application.created"
	EventApplicationSubmitted = "application.submitted"
	EventStatusChanged        = "application.status_changed"
)

// ApplicationEvent is the JSON payload published to the broker for every
// application lifecycle change and consumed into the audit log.
type ApplicationEvent struct {
	Type          string    `json:"type"`
	ApplicationID string    `json:"application_id"`
	ActorID       string    `json:"actor_id"`
	Status        string    `json:"status,omitempty"`
	Note          string    `json:"note,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
