package domain

// ClaimStatus is the canonical status enumeration for a claim. All label,
// color, timeline and notification mappings derive from this package so views
// never re-declare their own switch tables.
type ClaimStatus string

const (
	ClaimPending    ClaimStatus = "pending"
	ClaimVerified   ClaimStatus = "verified"
	ClaimProcessing ClaimStatus = "processing"
	ClaimApproved   ClaimStatus = "approved"
	ClaimCompleted  ClaimStatus = "completed"
	ClaimRejected   ClaimStatus = "rejected"
)

// claimTransitions is the single source of truth for admin-triggered status
// changes. approved -> completed is intentionally absent here: that edge only
// exists through the transfer-proof upload, never a bare status set.
// verified -> rejected is not a legal edge.
var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimPending:    {ClaimVerified, ClaimRejected},
	ClaimVerified:   {ClaimProcessing},
	ClaimProcessing: {ClaimApproved, ClaimRejected},
	ClaimApproved:   {},
	ClaimCompleted:  {},
	ClaimRejected:   {},
}

func ParseClaimStatus(s string) (ClaimStatus, error) {
	st := ClaimStatus(s)
	if !st.Valid() {
		return "", ValidationError{Field: "status", Msg: "status '" + s + "' tidak dikenal"}
	}
	return st, nil
}

func (s ClaimStatus) Valid() bool {
	_, ok := claimTransitions[s]
	return ok
}

func (s ClaimStatus) Terminal() bool {
	return s == ClaimCompleted || s == ClaimRejected
}

// CanTransitionTo reports whether target is a legal bare status change from s.
func (s ClaimStatus) CanTransitionTo(target ClaimStatus) bool {
	for _, next := range claimTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// AllowedNext returns the legal bare status changes from s, in table order.
func (s ClaimStatus) AllowedNext() []ClaimStatus {
	next := claimTransitions[s]
	out := make([]ClaimStatus, len(next))
	copy(out, next)
	return out
}

// ClaimStatusMeta carries the presentation and side-effect data tied to a
// status: badge label/color, the timeline entry written when the status is
// entered, and the applicant notification emitted on the transition.
type ClaimStatusMeta struct {
	Label         string
	Color         string
	TimelineLabel string
	TimelineDesc  string
	NotifType     string
	NotifTitle    string
	NotifMessage  string
}

var claimStatusMeta = map[ClaimStatus]ClaimStatusMeta{
	ClaimPending: {
		Label:         "Diajukan",
		Color:         "yellow",
		TimelineLabel: "Pengajuan diterima",
		TimelineDesc:  "Klaim berhasil diajukan dan menunggu verifikasi dokumen",
		NotifType:     "claim_submitted",
		NotifTitle:    "Klaim Diajukan",
		NotifMessage:  "Klaim %s berhasil diajukan dan menunggu verifikasi dokumen",
	},
	ClaimVerified: {
		Label:         "Diverifikasi",
		Color:         "blue",
		TimelineLabel: "Verifikasi dokumen",
		TimelineDesc:  "Dokumen telah diverifikasi",
		NotifType:     "claim_verified",
		NotifTitle:    "Dokumen Terverifikasi",
		NotifMessage:  "Dokumen klaim %s telah diverifikasi",
	},
	ClaimProcessing: {
		Label:         "Diproses",
		Color:         "purple",
		TimelineLabel: "Dalam proses",
		TimelineDesc:  "Klaim sedang diproses tim",
		NotifType:     "claim_processing",
		NotifTitle:    "Klaim Diproses",
		NotifMessage:  "Klaim %s sedang diproses tim",
	},
	ClaimApproved: {
		Label:         "Disetujui",
		Color:         "green",
		TimelineLabel: "Disetujui",
		TimelineDesc:  "Klaim disetujui untuk pencairan",
		NotifType:     "claim_approved",
		NotifTitle:    "Klaim Disetujui",
		NotifMessage:  "Klaim %s disetujui untuk pencairan dana santunan",
	},
	ClaimCompleted: {
		Label:         "Selesai",
		Color:         "gray",
		TimelineLabel: "Selesai",
		TimelineDesc:  "Dana santunan telah ditransfer",
		NotifType:     "claim_completed",
		NotifTitle:    "Dana Ditransfer",
		NotifMessage:  "Dana santunan klaim %s telah ditransfer",
	},
	ClaimRejected: {
		Label:         "Ditolak",
		Color:         "red",
		TimelineLabel: "Ditolak",
		TimelineDesc:  "Klaim ditolak",
		NotifType:     "claim_rejected",
		NotifTitle:    "Klaim Ditolak",
		NotifMessage:  "Klaim %s ditolak",
	},
}

func (s ClaimStatus) Meta() ClaimStatusMeta {
	return claimStatusMeta[s]
}

func (s ClaimStatus) Label() string {
	return claimStatusMeta[s].Label
}

// VerificationStatus is the status enumeration for a document pre-check
// request. pending is the only non-terminal status.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch VerificationStatus(s) {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return VerificationStatus(s), nil
	}
	return "", ValidationError{Field: "status", Msg: "status '" + s + "' tidak dikenal"}
}

// ValidDecision reports whether s is an acceptable admin decision.
func (s VerificationStatus) ValidDecision() bool {
	return s == VerificationApproved || s == VerificationRejected
}

type VerificationStatusMeta struct {
	Label        string
	Color        string
	NotifType    string
	NotifTitle   string
	NotifMessage string
}

var verificationStatusMeta = map[VerificationStatus]VerificationStatusMeta{
	VerificationPending: {
		Label: "Menunggu Review",
		Color: "yellow",
	},
	VerificationApproved: {
		Label:        "Disetujui",
		Color:        "green",
		NotifType:    "verification_approved",
		NotifTitle:   "Verifikasi Disetujui",
		NotifMessage: "Verifikasi dokumen %s disetujui",
	},
	VerificationRejected: {
		Label:        "Ditolak",
		Color:        "red",
		NotifType:    "verification_rejected",
		NotifTitle:   "Verifikasi Ditolak",
		NotifMessage: "Verifikasi dokumen %s ditolak",
	},
}

func (s VerificationStatus) Meta() VerificationStatusMeta {
	return verificationStatusMeta[s]
}

func (s VerificationStatus) Label() string {
	return verificationStatusMeta[s].Label
}
