package models

import (
	"time"

	"klaimportal/internal/domain"
)

// Claim is a submitted compensation claim. ID is the human-readable claim
// number (KLM-<year>-<suffix>) generated at submission.
type Claim struct {
	ID                   string             `json:"id"`
	UserID               int64              `json:"user_id,omitempty"`
	FullName             string             `json:"full_name"`
	NIK                  string             `json:"nik"`
	Phone                string             `json:"phone"`
	Address              string             `json:"address"`
	IncidentDate         string             `json:"incident_date"`
	IncidentTime         string             `json:"incident_time"`
	IncidentLocation     string             `json:"incident_location"`
	IncidentDescription  string             `json:"incident_description"`
	VehicleType          string             `json:"vehicle_type,omitempty"`
	VehicleNumber        string             `json:"vehicle_number,omitempty"`
	HospitalName         string             `json:"hospital_name,omitempty"`
	TreatmentDescription string             `json:"treatment_description,omitempty"`
	EstimatedCost        int64              `json:"estimated_cost,omitempty"`
	BankName             string             `json:"bank_name,omitempty"`
	BankBranch           string             `json:"bank_branch,omitempty"`
	AccountNumber        string             `json:"account_number,omitempty"`
	AccountHolder        string             `json:"account_holder,omitempty"`
	Status               domain.ClaimStatus `json:"status"`
	StatusLabel          string             `json:"status_label,omitempty"`
	AdminNotes           string             `json:"admin_notes,omitempty"`
	TransferProofPath    string             `json:"transfer_proof_path,omitempty"`
	TransferProofName    string             `json:"transfer_proof_name,omitempty"`
	TransferAmount       int64              `json:"transfer_amount,omitempty"`
	TransferDate         string             `json:"transfer_date,omitempty"`
	TransferNotes        string             `json:"transfer_notes,omitempty"`
	SubmittedAt          time.Time          `json:"submitted_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
	Documents            []ClaimDocument    `json:"documents,omitempty"`
	Timeline             []TimelineEntry    `json:"timeline,omitempty"`
}

// ClaimDocument is an uploaded supporting file attached to a claim. Files are
// referenced by storage path, never embedded.
type ClaimDocument struct {
	ID         int64     `json:"id"`
	ClaimID    string    `json:"claim_id"`
	DocType    string    `json:"doc_type"`
	FileName   string    `json:"file_name"`
	Size       int64     `json:"size"`
	Path       string    `json:"path"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// TimelineEntry is one append-only audit record on a claim. Date is nil while
// the step has not been reached yet.
type TimelineEntry struct {
	ID          int64   `json:"-"`
	ClaimID     string  `json:"-"`
	Status      string  `json:"status"`
	Date        *string `json:"date"`
	Description string  `json:"description"`
}
