package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"klaimportal/internal/domain"
	"klaimportal/internal/domain/models"
	"klaimportal/internal/repositories"
	"klaimportal/internal/storage"
	"klaimportal/internal/utils"
)

// VerificationService menangani pre-check dokumen: pengajuan, keputusan
// admin, dan penghapusan arsip.
type VerificationService struct {
	Repo      repositories.VerificationRepository
	NotifRepo repositories.NotificationRepository
	Files     storage.FileStore
	RequestID string

	// test seams
	Now               func() time.Time
	FetchVerification func(id string) (models.Verification, error)
}

type VerificationInput struct {
	UserID          int64
	FullName        string
	NIK             string
	Phone           string
	Email           string
	PreCheckResults string
}

func (s VerificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s VerificationService) fetch(id string) (models.Verification, error) {
	if s.FetchVerification != nil {
		return s.FetchVerification(id)
	}
	return s.Repo.GetByID(id)
}

// Create persists a new verification request as pending together with the
// uploaded documents. preCheckResults, when present, must be valid JSON; it is
// stored as-is and echoed back untouched.
func (s VerificationService) Create(in VerificationInput, uploads []DocumentUpload) (models.Verification, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return models.Verification{}, domain.ValidationError{Field: "full_name", Msg: "nama lengkap wajib diisi"}
	}
	if !nikPattern.MatchString(strings.TrimSpace(in.NIK)) {
		return models.Verification{}, domain.ValidationError{Field: "nik", Msg: "NIK harus 16 digit angka"}
	}
	if len(uploads) == 0 {
		return models.Verification{}, domain.ValidationError{Field: "documents", Msg: "dokumen wajib diunggah"}
	}

	preCheck := strings.TrimSpace(in.PreCheckResults)
	if preCheck != "" && !json.Valid([]byte(preCheck)) {
		return models.Verification{}, domain.ValidationError{Field: "pre_check_results", Msg: "preCheckResults bukan JSON yang valid"}
	}

	now := s.now()
	savedPaths := []string{}
	docs := []models.VerificationDocument{}
	for _, up := range uploads {
		if up.File == nil {
			continue
		}
		path, err := s.Files.Save(up.File, "verifications")
		if err != nil {
			s.removeFiles(savedPaths)
			return models.Verification{}, err
		}
		savedPaths = append(savedPaths, path)
		docs = append(docs, models.VerificationDocument{
			DocType:    up.DocType,
			FileName:   up.File.Filename,
			Size:       up.File.Size,
			Path:       path,
			UploadedAt: now,
		})
	}
	if len(docs) == 0 {
		s.removeFiles(savedPaths)
		return models.Verification{}, domain.ValidationError{Field: "documents", Msg: "dokumen wajib diunggah"}
	}

	v := models.Verification{
		ID:          utils.NewVerificationID(now),
		UserID:      in.UserID,
		FullName:    utils.NormalizeSpace(in.FullName),
		NIK:         strings.TrimSpace(in.NIK),
		Phone:       strings.TrimSpace(in.Phone),
		Email:       strings.TrimSpace(in.Email),
		Status:      domain.VerificationPending,
		SubmittedAt: now,
	}
	if preCheck != "" {
		v.PreCheckResults = []byte(preCheck)
	}

	if err := s.Repo.Insert(v, docs); err != nil {
		s.removeFiles(savedPaths)
		return models.Verification{}, err
	}

	utils.LogEvent(s.RequestID, "verification", "create", "verification_id="+v.ID)
	v.Documents = docs
	return v, nil
}

// Decide applies the admin decision on a pending verification. Rejections
// require non-blank notes so the applicant always learns why.
func (s VerificationService) Decide(id, decision, adminNotes, reviewer string) (models.Verification, error) {
	status, err := domain.ParseVerificationStatus(decision)
	if err != nil {
		return models.Verification{}, err
	}
	if !status.ValidDecision() {
		return models.Verification{}, domain.ValidationError{Field: "status", Msg: "keputusan harus approved atau rejected"}
	}

	adminNotes = strings.TrimSpace(adminNotes)
	if status == domain.VerificationRejected && adminNotes == "" {
		return models.Verification{}, domain.ValidationError{Field: "admin_notes", Msg: "lengkapi catatan penolakan"}
	}

	v, err := s.fetch(id)
	if err != nil {
		return models.Verification{}, err
	}
	if v.Status != domain.VerificationPending {
		return models.Verification{}, domain.InvalidStateError{Resource: "verifikasi", Current: string(v.Status), Msg: "verifikasi sudah direview"}
	}

	now := s.now()
	meta := status.Meta()
	message := fmt.Sprintf(meta.NotifMessage, v.ID)
	if status == domain.VerificationRejected {
		message += ": " + adminNotes
	}
	var notif *models.Notification
	if v.UserID > 0 {
		notif = &models.Notification{
			UserID:      v.UserID,
			Type:        meta.NotifType,
			Title:       meta.NotifTitle,
			Message:     message,
			ReferenceID: v.ID,
			CreatedAt:   now,
		}
	}

	if err := s.Repo.ApplyDecision(v.ID, status, adminNotes, reviewer, now, notif); err != nil {
		return models.Verification{}, err
	}

	utils.LogEvent(s.RequestID, "verification", "decide", "verification_id="+v.ID+" decision="+string(status))
	return s.Detail(v.ID)
}

// Delete removes a reviewed verification and its files. Pending requests
// cannot be deleted; they must be decided first.
func (s VerificationService) Delete(id string) error {
	v, err := s.fetch(id)
	if err != nil {
		return err
	}
	if v.Status == domain.VerificationPending {
		return domain.InvalidStateError{Resource: "verifikasi", Current: string(v.Status), Msg: "verifikasi yang masih pending tidak bisa dihapus"}
	}

	docs, err := s.Repo.LoadDocuments(v.ID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(v.ID); err != nil {
		return err
	}

	for _, d := range docs {
		if err := s.Files.Remove(d.Path); err != nil {
			utils.LogEvent(s.RequestID, "verification", "delete", "gagal hapus file "+d.Path+": "+err.Error())
		}
	}

	utils.LogEvent(s.RequestID, "verification", "delete", "verification_id="+v.ID)
	return nil
}

// Detail returns a verification with its documents attached.
func (s VerificationService) Detail(id string) (models.Verification, error) {
	v, err := s.fetch(id)
	if err != nil {
		return models.Verification{}, err
	}
	docs, err := s.Repo.LoadDocuments(v.ID)
	if err != nil {
		return models.Verification{}, err
	}
	v.Documents = docs
	return v, nil
}

// Search resolves by exact verification ID first, then lists by NIK.
func (s VerificationService) Search(query string) ([]models.Verification, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ValidationError{Field: "query", Msg: "masukkan ID verifikasi atau NIK"}
	}

	v, err := s.Repo.GetByID(query)
	if err == nil {
		return []models.Verification{v}, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	out, err := s.Repo.ListByNIK(query)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.NotFoundError{Resource: "verifikasi"}
	}
	return out, nil
}

// List returns all verifications, optionally filtered by status.
func (s VerificationService) List(status string) ([]models.Verification, error) {
	status = strings.TrimSpace(status)
	if status != "" {
		if _, err := domain.ParseVerificationStatus(status); err != nil {
			return nil, err
		}
	}
	return s.Repo.ListAll(status)
}

func (s VerificationService) removeFiles(paths []string) {
	for _, p := range paths {
		if err := s.Files.Remove(p); err != nil {
			utils.LogEvent(s.RequestID, "verification", "cleanup", "gagal hapus file "+p+": "+err.Error())
		}
	}
}
