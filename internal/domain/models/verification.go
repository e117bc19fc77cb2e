package models

import (
	"encoding/json"
	"time"

	"klaimportal/internal/domain"
)

// Verification is a document pre-check request. ID is generated at submission
// (VER-<unix ms>-<suffix>). PreCheckResults holds the applicant's self-check
// output verbatim; it is informational only, never authoritative.
type Verification struct {
	ID              string                    `json:"id"`
	UserID          int64                     `json:"user_id,omitempty"`
	FullName        string                    `json:"full_name"`
	NIK             string                    `json:"nik"`
	Phone           string                    `json:"phone"`
	Email           string                    `json:"email,omitempty"`
	PreCheckResults json.RawMessage           `json:"pre_check_results,omitempty"`
	Status          domain.VerificationStatus `json:"status"`
	SubmittedAt     time.Time                 `json:"submitted_at"`
	ReviewedAt      *time.Time                `json:"reviewed_at"`
	ReviewedBy      string                    `json:"reviewed_by,omitempty"`
	AdminNotes      string                    `json:"admin_notes,omitempty"`
	Documents       []VerificationDocument    `json:"documents,omitempty"`
}

type VerificationDocument struct {
	ID             int64     `json:"id"`
	VerificationID string    `json:"verification_id"`
	DocType        string    `json:"doc_type"`
	FileName       string    `json:"file_name"`
	Size           int64     `json:"size"`
	Path           string    `json:"path"`
	UploadedAt     time.Time `json:"uploaded_at"`
}
