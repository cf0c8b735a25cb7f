package domain

import (
	"fmt"
	"time"
)

type ApplicationStatus string

const (
	StatusDraft       ApplicationStatus = "draft"
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under-review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
)

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch ApplicationStatus(s) {
	case StatusDraft:
		return StatusDraft, nil
	case StatusSubmitted:
		return StatusSubmitted, nil
	case StatusUnderReview:
		return StatusUnderReview, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("unknown application status %q", s)
	}
}

// Terminal reports whether no further applicant action is possible.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// AdminAssignable reports whether an administrator may set this status through
// the review workflow. Admins may move between these four states freely; draft
// is never an admin target.
func (s ApplicationStatus) AdminAssignable() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

type VisaType string

const (
	VisaTourist    VisaType = "tourist"
	VisaBusiness   VisaType = "business"
	VisaMedical    VisaType = "medical"
	VisaConference VisaType = "conference"
)

func ParseVisaType(s string) (VisaType, error) {
	switch VisaType(s) {
	case VisaTourist:
		return VisaTourist, nil
	case VisaBusiness:
		return VisaBusiness, nil
	case VisaMedical:
		return VisaMedical, nil
	case VisaConference:
		return VisaConference, nil
	default:
		return "", fmt.Errorf("unknown visa type %q", s)
	}
}

type DocumentType string

const (
	DocPassport DocumentType = "passport"
	DocPhoto    DocumentType = "photo"
)

func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocPassport:
		return DocPassport, nil
	case DocPhoto:
		return DocPhoto, nil
	default:
		return "", fmt.Errorf("unknown document type %q", s)
	}
}

type PersonalInfo struct {
	FullName       string `json:"full_name"`
	DateOfBirth    string `json:"date_of_birth"`
	Nationality    string `json:"nationality"`
	PassportNumber string `json:"passport_number"`
	PassportExpiry string `json:"passport_expiry"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
}

func (p PersonalInfo) Complete() bool {
	return p.FullName != "" && p.DateOfBirth != "" && p.Nationality != "" &&
		p.PassportNumber != "" && p.PassportExpiry != "" && p.Email != "" &&
		p.Phone != "" && p.Address != ""
}

type TravelDetails struct {
	Purpose              string `json:"purpose"`
	ArrivalDate          string `json:"arrival_date"`
	DepartureDate        string `json:"departure_date"`
	AccommodationAddress string `json:"accommodation_address"`
}

func (t TravelDetails) Complete() bool {
	return t.Purpose != "" && t.ArrivalDate != "" && t.DepartureDate != "" &&
		t.AccommodationAddress != ""
}

type VisaApplication struct {
	ID            uint              `gorm:"primaryKey" json:"-"`
	ApplicationID string            `gorm:"type:varchar(40);uniqueIndex;not null" json:"application_id"`
	UserID        string            `gorm:"type:varchar(40);not null;index" json:"user_id"`
	VisaType      VisaType          `gorm:"type:varchar(20);not null" json:"visa_type"`
	Status        ApplicationStatus `gorm:"type:varchar(20);not null;default:draft" json:"status"`

	PersonalInfo  PersonalInfo  `gorm:"embedded;embeddedPrefix:personal_" json:"personal_info"`
	TravelDetails TravelDetails `gorm:"embedded;embeddedPrefix:travel_" json:"travel_details"`

	Documents []ApplicationDocument `gorm:"foreignKey:ApplicationID;references:ApplicationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"documents,omitempty"`

	AdminNotes *string `gorm:"type:text" json:"admin_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Editable reports whether the owner may still modify the record. Once the
// application leaves draft the applicant side is read-only.
func (a *VisaApplication) Editable() bool {
	return a.Status == StatusDraft
}

// CanSubmit reports whether the owner may trigger draft -> submitted. The
// submit action is valid exactly once.
func (a *VisaApplication) CanSubmit() bool {
	return a.Status == StatusDraft
}

type ApplicationDocument struct {
	ID            uint         `gorm:"primaryKey" json:"-"`
	ApplicationID string       `gorm:"type:varchar(40);not null;index:idx_app_doc_type,unique" json:"application_id"`
	DocType       DocumentType `gorm:"type:varchar(20);not null;index:idx_app_doc_type,unique" json:"doc_type"`
	FileURL       string       `gorm:"type:text;not null" json:"file_url"`
	FileName      string       `gorm:"type:varchar(255)" json:"file_name"`
	MimeType      *string      `gorm:"type:varchar(100)" json:"mime_type,omitempty"`
	FileSize      *int64       `json:"file_size,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
