package dto

import "github.com/meowls-gov/visa-portal/internal/domain"

// ApplicationCreate is shared by create and draft update; the wizard sends the
// full snapshot both times.
type ApplicationCreate struct {
	VisaType      string               `json:"visa_type" validate:"required"`
	PersonalInfo  domain.PersonalInfo  `json:"personal_info"`
	TravelDetails domain.TravelDetails `json:"travel_details"`
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes,omitempty"`
}

// StatusUpdateResponse is returned flat (no data envelope): the review UI reads
// email_sent off the top-level object to pick its confirmation message.
type StatusUpdateResponse struct {
	Message   string `json:"message"`
	EmailSent bool   `json:"email_sent"`
}

type DocumentUploadResponse struct {
	Message string `json:"message"`
	DocType string `json:"doc_type"`
	FileURL string `json:"file_url"`
}
