package services

import (
	"fmt"
	"sort"
	"time"

	"klaimportal/internal/domain"
	"klaimportal/internal/domain/models"
	"klaimportal/internal/repositories"
	"klaimportal/internal/utils"
)

// NotificationService melayani notifikasi tersimpan milik pemohon dan feed
// turunan untuk lonceng admin.
type NotificationService struct {
	Repo             repositories.NotificationRepository
	ClaimRepo        repositories.ClaimRepository
	VerificationRepo repositories.VerificationRepository
	RequestID        string
}

func (s NotificationService) ListByUser(userID int64) ([]models.Notification, error) {
	return s.Repo.ListByUser(userID)
}

func (s NotificationService) MarkRead(id, userID int64) error {
	affected, err := s.Repo.MarkRead(id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: "notifikasi"}
	}
	return nil
}

func (s NotificationService) MarkAllRead(userID int64) error {
	return s.Repo.MarkAllRead(userID)
}

func (s NotificationService) Delete(id, userID int64) error {
	affected, err := s.Repo.Delete(id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: "notifikasi"}
	}
	return nil
}

// AdminFeed synthesizes the admin bell from the live collections: nothing is
// stored, so the feed always reflects the current backlog.
func (s NotificationService) AdminFeed() ([]models.FeedItem, error) {
	pendingClaims, err := s.ClaimRepo.ListAll(string(domain.ClaimPending))
	if err != nil {
		return nil, err
	}
	processingClaims, err := s.ClaimRepo.ListAll(string(domain.ClaimProcessing))
	if err != nil {
		return nil, err
	}
	approvedClaims, err := s.ClaimRepo.ListAll(string(domain.ClaimApproved))
	if err != nil {
		return nil, err
	}
	pendingVerifications, err := s.VerificationRepo.ListAll(string(domain.VerificationPending))
	if err != nil {
		return nil, err
	}

	feed := BuildAdminFeed(pendingClaims, processingClaims, approvedClaims, pendingVerifications)
	SortFeed(feed)
	return feed, nil
}

// BuildAdminFeed maps backlog entities to feed items. IDs are stable per
// (kind, entity) so client-side read tracking survives refreshes.
func BuildAdminFeed(pendingClaims, processingClaims, approvedClaims []models.Claim, pendingVerifications []models.Verification) []models.FeedItem {
	feed := []models.FeedItem{}

	for _, c := range pendingClaims {
		feed = append(feed, models.FeedItem{
			ID:          "claim_new-" + c.ID,
			Type:        "claim_new",
			Title:       "Klaim Baru Masuk",
			Message:     fmt.Sprintf("Klaim %s dari %s menunggu verifikasi", c.ID, c.FullName),
			ReferenceID: c.ID,
			Time:        feedTime(c.SubmittedAt),
			Color:       "blue",
		})
	}
	for _, v := range pendingVerifications {
		feed = append(feed, models.FeedItem{
			ID:          "verification_new-" + v.ID,
			Type:        "verification_new",
			Title:       "Verifikasi Dokumen Baru",
			Message:     fmt.Sprintf("Pengajuan verifikasi %s dari %s menunggu review", v.ID, v.FullName),
			ReferenceID: v.ID,
			Time:        feedTime(v.SubmittedAt),
			Color:       "emerald",
		})
	}
	for _, c := range processingClaims {
		feed = append(feed, models.FeedItem{
			ID:          "claim_processing-" + c.ID,
			Type:        "claim_processing",
			Title:       "Klaim Dalam Proses",
			Message:     fmt.Sprintf("Klaim %s sedang diproses", c.ID),
			ReferenceID: c.ID,
			Time:        feedTime(c.UpdatedAt),
			Color:       "amber",
		})
	}
	for _, c := range approvedClaims {
		feed = append(feed, models.FeedItem{
			ID:          "claim_transfer-" + c.ID,
			Type:        "claim_transfer",
			Title:       "Menunggu Transfer",
			Message:     fmt.Sprintf("Klaim %s disetujui, menunggu upload bukti transfer", c.ID),
			ReferenceID: c.ID,
			Time:        feedTime(c.UpdatedAt),
			Color:       "purple",
		})
	}

	return feed
}

// SortFeed orders items newest first. Items with an empty or unparseable
// timestamp sink to the end; the stable sort keeps their relative order.
func SortFeed(feed []models.FeedItem) {
	sort.SliceStable(feed, func(i, j int) bool {
		ti, okI := utils.ParseTimestamp(feed[i].Time)
		tj, okJ := utils.ParseTimestamp(feed[j].Time)
		if !okI {
			return false
		}
		if !okJ {
			return true
		}
		return ti.After(tj)
	})
}

func feedTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return utils.FormatDateTime(t)
}
