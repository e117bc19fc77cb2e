package services

import (
	"klaimportal/internal/domain"
	"klaimportal/internal/repositories"
)

// StatsService merangkum jumlah klaim dan verifikasi per status untuk landing
// page publik dan dashboard admin.
type StatsService struct {
	ClaimRepo        repositories.ClaimRepository
	VerificationRepo repositories.VerificationRepository
	RequestID        string
}

// PublicStats is the aggregate shown on the landing page. It never exposes
// applicant data, only counts.
type PublicStats struct {
	TotalClaims        int `json:"total_claims"`
	ClaimsCompleted    int `json:"claims_completed"`
	ClaimsInProcess    int `json:"claims_in_process"`
	TotalVerifications int `json:"total_verifications"`
}

// DashboardStats is the admin breakdown per status plus the backlog size.
type DashboardStats struct {
	Claims             map[string]int `json:"claims"`
	Verifications      map[string]int `json:"verifications"`
	TotalClaims        int            `json:"total_claims"`
	TotalVerifications int            `json:"total_verifications"`
	PendingActions     int            `json:"pending_actions"`
}

func (s StatsService) Public() (PublicStats, error) {
	claims, err := s.ClaimRepo.CountByStatus()
	if err != nil {
		return PublicStats{}, err
	}
	verifications, err := s.VerificationRepo.CountByStatus()
	if err != nil {
		return PublicStats{}, err
	}

	out := PublicStats{
		ClaimsCompleted: claims[string(domain.ClaimCompleted)],
		ClaimsInProcess: claims[string(domain.ClaimVerified)] +
			claims[string(domain.ClaimProcessing)] +
			claims[string(domain.ClaimApproved)],
	}
	for _, n := range claims {
		out.TotalClaims += n
	}
	for _, n := range verifications {
		out.TotalVerifications += n
	}
	return out, nil
}

func (s StatsService) Dashboard() (DashboardStats, error) {
	claims, err := s.ClaimRepo.CountByStatus()
	if err != nil {
		return DashboardStats{}, err
	}
	verifications, err := s.VerificationRepo.CountByStatus()
	if err != nil {
		return DashboardStats{}, err
	}

	out := DashboardStats{Claims: claims, Verifications: verifications}
	for _, n := range claims {
		out.TotalClaims += n
	}
	for _, n := range verifications {
		out.TotalVerifications += n
	}
	// backlog: semua yang menunggu aksi admin
	out.PendingActions = claims[string(domain.ClaimPending)] +
		claims[string(domain.ClaimProcessing)] +
		claims[string(domain.ClaimApproved)] +
		verifications[string(domain.VerificationPending)]
	return out, nil
}
