package services

import (
	"fmt"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	"klaimportal/internal/domain"
	"klaimportal/internal/domain/models"
	"klaimportal/internal/repositories"
	"klaimportal/internal/storage"
	"klaimportal/internal/utils"
)

// ClaimService menangani siklus hidup klaim: pengajuan, transisi status oleh
// admin, dan upload bukti transfer.
type ClaimService struct {
	Repo      repositories.ClaimRepository
	NotifRepo repositories.NotificationRepository
	Files     storage.FileStore
	RequestID string

	// test seams
	Now        func() time.Time
	FetchClaim func(id string) (models.Claim, error)
}

type ClaimInput struct {
	UserID               int64
	FullName             string
	NIK                  string
	Phone                string
	Address              string
	IncidentDate         string
	IncidentTime         string
	IncidentLocation     string
	IncidentDescription  string
	VehicleType          string
	VehicleNumber        string
	HospitalName         string
	TreatmentDescription string
	EstimatedCost        int64
	BankName             string
	BankBranch           string
	AccountNumber        string
	AccountHolder        string
}

type DocumentUpload struct {
	DocType string
	File    *multipart.FileHeader
}

var nikPattern = regexp.MustCompile(`^[0-9]{16}$`)

func (s ClaimService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s ClaimService) fetch(id string) (models.Claim, error) {
	if s.FetchClaim != nil {
		return s.FetchClaim(id)
	}
	return s.Repo.GetByID(id)
}

// Create persists a new claim as pending with its supporting documents and
// the seed timeline entry. Uploaded files and the claim row land together:
// when the insert fails the stored files are removed again.
func (s ClaimService) Create(in ClaimInput, uploads []DocumentUpload) (models.Claim, error) {
	if err := validateClaimInput(in); err != nil {
		return models.Claim{}, err
	}
	if len(uploads) == 0 {
		return models.Claim{}, domain.ValidationError{Field: "documents", Msg: "dokumen pendukung wajib diunggah"}
	}

	now := s.now()
	savedPaths := []string{}
	docs := []models.ClaimDocument{}
	for _, up := range uploads {
		if up.File == nil {
			continue
		}
		path, err := s.Files.Save(up.File, "claims")
		if err != nil {
			s.removeFiles(savedPaths)
			return models.Claim{}, err
		}
		savedPaths = append(savedPaths, path)
		docs = append(docs, models.ClaimDocument{
			DocType:    up.DocType,
			FileName:   up.File.Filename,
			Size:       up.File.Size,
			Path:       path,
			UploadedAt: now,
		})
	}
	if len(docs) == 0 {
		return models.Claim{}, domain.ValidationError{Field: "documents", Msg: "dokumen pendukung wajib diunggah"}
	}

	claim := models.Claim{
		UserID:               in.UserID,
		FullName:             utils.NormalizeSpace(in.FullName),
		NIK:                  strings.TrimSpace(in.NIK),
		Phone:                strings.TrimSpace(in.Phone),
		Address:              strings.TrimSpace(in.Address),
		IncidentDate:         strings.TrimSpace(in.IncidentDate),
		IncidentTime:         strings.TrimSpace(in.IncidentTime),
		IncidentLocation:     strings.TrimSpace(in.IncidentLocation),
		IncidentDescription:  strings.TrimSpace(in.IncidentDescription),
		VehicleType:          strings.TrimSpace(in.VehicleType),
		VehicleNumber:        strings.TrimSpace(in.VehicleNumber),
		HospitalName:         strings.TrimSpace(in.HospitalName),
		TreatmentDescription: strings.TrimSpace(in.TreatmentDescription),
		EstimatedCost:        in.EstimatedCost,
		BankName:             strings.TrimSpace(in.BankName),
		BankBranch:           strings.TrimSpace(in.BankBranch),
		AccountNumber:        strings.TrimSpace(in.AccountNumber),
		AccountHolder:        strings.TrimSpace(in.AccountHolder),
		Status:               domain.ClaimPending,
		SubmittedAt:          now,
		UpdatedAt:            now,
	}

	meta := domain.ClaimPending.Meta()
	date := utils.FormatDate(now)
	entry := models.TimelineEntry{
		Status:      meta.TimelineLabel,
		Date:        &date,
		Description: meta.TimelineDesc,
	}

	// nomor klaim bisa tabrakan dalam satu tahun; coba ulang beberapa kali
	var insertErr error
	for attempt := 0; attempt < 5; attempt++ {
		claim.ID = utils.NewClaimNumber(now)
		insertErr = s.Repo.Insert(claim, docs, entry)
		if insertErr == nil {
			break
		}
		if !domain.IsConflict(insertErr) {
			break
		}
	}
	if insertErr != nil {
		s.removeFiles(savedPaths)
		return models.Claim{}, insertErr
	}

	if claim.UserID > 0 {
		notif := models.Notification{
			UserID:      claim.UserID,
			Type:        meta.NotifType,
			Title:       meta.NotifTitle,
			Message:     fmt.Sprintf(meta.NotifMessage, claim.ID),
			ReferenceID: claim.ID,
			CreatedAt:   now,
		}
		if err := s.NotifRepo.Insert(notif); err != nil {
			utils.LogEvent(s.RequestID, "claim", "create", "notifikasi gagal disimpan: "+err.Error())
		}
	}

	utils.LogEvent(s.RequestID, "claim", "create", "claim_id="+claim.ID)
	claim.Documents = docs
	claim.Timeline = []models.TimelineEntry{entry}
	claim.StatusLabel = claim.Status.Label()
	return claim, nil
}

// RequestTransition applies an admin status change after checking the
// transition table. approved -> completed never goes through here; that edge
// only exists via UploadTransferProof. nonce makes retries idempotent: a
// replayed (claim, target, nonce) does not append a second timeline entry.
func (s ClaimService) RequestTransition(claimID, targetStatus, adminNotes, nonce string) (models.Claim, error) {
	target, err := domain.ParseClaimStatus(targetStatus)
	if err != nil {
		return models.Claim{}, err
	}

	claim, err := s.fetch(claimID)
	if err != nil {
		return models.Claim{}, err
	}

	if target == domain.ClaimCompleted {
		return models.Claim{}, domain.InvalidTransitionError{From: string(claim.Status), To: string(target)}
	}
	if !claim.Status.CanTransitionTo(target) {
		return models.Claim{}, domain.InvalidTransitionError{From: string(claim.Status), To: string(target)}
	}

	adminNotes = strings.TrimSpace(adminNotes)
	if target == domain.ClaimRejected && adminNotes == "" {
		return models.Claim{}, domain.ValidationError{Field: "admin_notes", Msg: "lengkapi catatan penolakan"}
	}

	now := s.now()
	meta := target.Meta()
	date := utils.FormatDate(now)
	entry := models.TimelineEntry{
		Status:      meta.TimelineLabel,
		Date:        &date,
		Description: meta.TimelineDesc,
	}

	message := fmt.Sprintf(meta.NotifMessage, claim.ID)
	if target == domain.ClaimRejected && adminNotes != "" {
		message += ": " + adminNotes
	}
	var notif *models.Notification
	if claim.UserID > 0 {
		notif = &models.Notification{
			UserID:      claim.UserID,
			Type:        meta.NotifType,
			Title:       meta.NotifTitle,
			Message:     message,
			ReferenceID: claim.ID,
			CreatedAt:   now,
		}
	}

	applied, err := s.Repo.ApplyTransition(claim.ID, target, adminNotes, entry, nonce, notif)
	if err != nil {
		return models.Claim{}, err
	}
	if !applied {
		// idempotent replay; report the stored state without a new entry
		utils.LogEvent(s.RequestID, "claim", "transition", "replay diabaikan claim_id="+claim.ID+" target="+string(target))
		return s.Detail(claim.ID)
	}

	utils.LogEvent(s.RequestID, "claim", "transition", "claim_id="+claim.ID+" "+string(claim.Status)+"->"+string(target))
	return s.Detail(claim.ID)
}

// UploadTransferProof stores the proof of payout and completes the claim.
// Either the file reference and the status change both persist, or neither
// does: a failed transaction removes the stored file again.
func (s ClaimService) UploadTransferProof(claimID string, proof *multipart.FileHeader, amount int64, transferDate, notes string) (models.Claim, error) {
	claim, err := s.fetch(claimID)
	if err != nil {
		return models.Claim{}, err
	}
	if claim.Status != domain.ClaimApproved {
		return models.Claim{}, domain.InvalidStateError{
			Resource: "klaim",
			Current:  string(claim.Status),
			Msg:      "bukti transfer hanya bisa diupload saat klaim berstatus approved",
		}
	}
	if proof == nil {
		return models.Claim{}, domain.ValidationError{Field: "transfer_proof", Msg: "pilih file bukti transfer"}
	}
	if amount <= 0 {
		return models.Claim{}, domain.ValidationError{Field: "transfer_amount", Msg: "jumlah transfer harus lebih dari 0"}
	}

	now := s.now()
	transferDate = strings.TrimSpace(transferDate)
	if transferDate == "" {
		transferDate = utils.FormatDate(now)
	} else if _, err := utils.ParseDate(transferDate); err != nil {
		return models.Claim{}, domain.ValidationError{Field: "transfer_date", Msg: "tanggal transfer tidak valid (YYYY-MM-DD)"}
	}

	path, err := s.Files.Save(proof, "transfer-proofs")
	if err != nil {
		return models.Claim{}, err
	}

	meta := domain.ClaimCompleted.Meta()
	date := utils.FormatDate(now)
	entry := models.TimelineEntry{
		Status:      meta.TimelineLabel,
		Date:        &date,
		Description: meta.TimelineDesc,
	}
	var notif *models.Notification
	if claim.UserID > 0 {
		notif = &models.Notification{
			UserID:      claim.UserID,
			Type:        meta.NotifType,
			Title:       meta.NotifTitle,
			Message:     fmt.Sprintf(meta.NotifMessage, claim.ID),
			ReferenceID: claim.ID,
			CreatedAt:   now,
		}
	}

	if err := s.Repo.CompleteWithTransfer(claim.ID, path, proof.Filename, amount, transferDate, strings.TrimSpace(notes), entry, notif); err != nil {
		if rmErr := s.Files.Remove(path); rmErr != nil {
			utils.LogEvent(s.RequestID, "claim", "transfer_proof", "gagal menghapus file yatim: "+rmErr.Error())
		}
		return models.Claim{}, err
	}

	utils.LogEvent(s.RequestID, "claim", "transfer_proof", "claim_id="+claim.ID+" amount="+fmt.Sprint(amount))
	return s.Detail(claim.ID)
}

// Search resolves a claim by exact claim number first, then falls back to NIK
// (returning the most recently submitted claim for that NIK).
func (s ClaimService) Search(query string) (models.Claim, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.Claim{}, domain.ValidationError{Field: "query", Msg: "masukkan nomor klaim atau NIK"}
	}

	claim, err := s.Repo.GetByID(query)
	if err == nil {
		return s.withDetail(claim)
	}
	if !domain.IsNotFound(err) {
		return models.Claim{}, err
	}

	claim, err = s.Repo.GetByNIKLatest(query)
	if err != nil {
		return models.Claim{}, err
	}
	return s.withDetail(claim)
}

// Detail returns a claim with its documents and timeline attached.
func (s ClaimService) Detail(claimID string) (models.Claim, error) {
	claim, err := s.fetch(claimID)
	if err != nil {
		return models.Claim{}, err
	}
	return s.withDetail(claim)
}

func (s ClaimService) withDetail(claim models.Claim) (models.Claim, error) {
	docs, err := s.Repo.LoadDocuments(claim.ID)
	if err != nil {
		return models.Claim{}, err
	}
	timeline, err := s.Repo.LoadTimeline(claim.ID)
	if err != nil {
		return models.Claim{}, err
	}
	claim.Documents = docs
	claim.Timeline = timeline
	claim.StatusLabel = claim.Status.Label()
	return claim, nil
}

// List returns all claims, optionally filtered by status.
func (s ClaimService) List(status string) ([]models.Claim, error) {
	status = strings.TrimSpace(status)
	if status != "" {
		if _, err := domain.ParseClaimStatus(status); err != nil {
			return nil, err
		}
	}
	return s.Repo.ListAll(status)
}

func (s ClaimService) ListMine(userID int64) ([]models.Claim, error) {
	return s.Repo.ListByUser(userID)
}

// Delete is the admin override: it removes the record, its documents and the
// stored files. It is not part of the status lifecycle.
func (s ClaimService) Delete(claimID string) error {
	claim, err := s.fetch(claimID)
	if err != nil {
		return err
	}
	docs, err := s.Repo.LoadDocuments(claim.ID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(claim.ID); err != nil {
		return err
	}

	for _, d := range docs {
		if err := s.Files.Remove(d.Path); err != nil {
			utils.LogEvent(s.RequestID, "claim", "delete", "gagal hapus file "+d.Path+": "+err.Error())
		}
	}
	if claim.TransferProofPath != "" {
		if err := s.Files.Remove(claim.TransferProofPath); err != nil {
			utils.LogEvent(s.RequestID, "claim", "delete", "gagal hapus bukti transfer: "+err.Error())
		}
	}

	utils.LogEvent(s.RequestID, "claim", "delete", "claim_id="+claim.ID)
	return nil
}

func (s ClaimService) removeFiles(paths []string) {
	for _, p := range paths {
		if err := s.Files.Remove(p); err != nil {
			utils.LogEvent(s.RequestID, "claim", "cleanup", "gagal hapus file "+p+": "+err.Error())
		}
	}
}

func validateClaimInput(in ClaimInput) error {
	if strings.TrimSpace(in.FullName) == "" {
		return domain.ValidationError{Field: "full_name", Msg: "nama lengkap wajib diisi"}
	}
	if !nikPattern.MatchString(strings.TrimSpace(in.NIK)) {
		return domain.ValidationError{Field: "nik", Msg: "NIK harus 16 digit angka"}
	}
	if strings.TrimSpace(in.Phone) == "" {
		return domain.ValidationError{Field: "phone", Msg: "nomor telepon wajib diisi"}
	}
	if strings.TrimSpace(in.Address) == "" {
		return domain.ValidationError{Field: "address", Msg: "alamat wajib diisi"}
	}
	if _, err := utils.ParseDate(in.IncidentDate); err != nil {
		return domain.ValidationError{Field: "incident_date", Msg: "tanggal kejadian tidak valid (YYYY-MM-DD)"}
	}
	if strings.TrimSpace(in.IncidentLocation) == "" {
		return domain.ValidationError{Field: "incident_location", Msg: "lokasi kejadian wajib diisi"}
	}
	if strings.TrimSpace(in.IncidentDescription) == "" {
		return domain.ValidationError{Field: "incident_description", Msg: "kronologi kejadian wajib diisi"}
	}
	if in.EstimatedCost < 0 {
		return domain.ValidationError{Field: "estimated_cost", Msg: "estimasi biaya tidak boleh negatif"}
	}
	return nil
}
