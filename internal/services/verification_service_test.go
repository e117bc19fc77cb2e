package services

import (
	"strings"
	"testing"
	"time"

	"klaimportal/internal/domain"
	"klaimportal/internal/domain/models"
	"klaimportal/internal/repositories"
	"klaimportal/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCreateVerificationValidation(t *testing.T) {
	svc := VerificationService{}

	in := VerificationInput{FullName: "Budi", NIK: "3201012345678901"}
	if _, err := svc.Create(in, nil); !domain.IsValidation(err) {
		t.Fatalf("tanpa dokumen harus ValidationError, got %v", err)
	}

	in.NIK = "abc"
	if _, err := svc.Create(in, []DocumentUpload{{DocType: "ktp"}}); !domain.IsValidation(err) {
		t.Fatalf("NIK non-digit harus ValidationError, got %v", err)
	}

	in.NIK = "3201012345678901"
	in.PreCheckResults = "{bukan json"
	uploads := []DocumentUpload{{DocType: "ktp", File: makeFileHeader(t, "ktpFile", "ktp.png", "isi")}}
	if _, err := svc.Create(in, uploads); !domain.IsValidation(err) {
		t.Fatalf("preCheckResults rusak harus ValidationError, got %v", err)
	}
}

func TestCreateVerificationHappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO verifications").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO verification_documents").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.Local)
	svc := VerificationService{
		Repo:  repositories.VerificationRepository{DB: db},
		Files: storage.FileStore{BaseDir: t.TempDir()},
		Now:   func() time.Time { return now },
	}

	in := VerificationInput{
		FullName:        "Budi Santoso",
		NIK:             "3201012345678901",
		PreCheckResults: `{"ktp":"ok"}`,
	}
	uploads := []DocumentUpload{{DocType: "ktp", File: makeFileHeader(t, "ktpFile", "ktp.png", "isi")}}

	v, err := svc.Create(in, uploads)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if !strings.HasPrefix(v.ID, "VER-") {
		t.Errorf("ID verifikasi salah format: %s", v.ID)
	}
	if v.Status != domain.VerificationPending {
		t.Errorf("verifikasi baru harus pending, got %s", v.Status)
	}
	if string(v.PreCheckResults) != `{"ktp":"ok"}` {
		t.Errorf("preCheckResults harus tersimpan apa adanya, got %s", v.PreCheckResults)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecideRejectRequiresNotes(t *testing.T) {
	svc := VerificationService{
		FetchVerification: func(id string) (models.Verification, error) {
			return models.Verification{ID: id, Status: domain.VerificationPending}, nil
		},
	}

	if _, err := svc.Decide("VER-1", "rejected", "   ", "Admin"); !domain.IsValidation(err) {
		t.Fatalf("reject tanpa catatan harus ValidationError, got %v", err)
	}
	if _, err := svc.Decide("VER-1", "pending", "", "Admin"); !domain.IsValidation(err) {
		t.Fatalf("pending bukan keputusan, got %v", err)
	}
	if _, err := svc.Decide("VER-1", "verified", "", "Admin"); !domain.IsValidation(err) {
		t.Fatalf("status asing harus ValidationError, got %v", err)
	}
}

func TestDecideOnlyPending(t *testing.T) {
	for _, status := range []domain.VerificationStatus{domain.VerificationApproved, domain.VerificationRejected} {
		svc := VerificationService{
			FetchVerification: func(id string) (models.Verification, error) {
				return models.Verification{ID: id, Status: status}, nil
			},
		}
		if _, err := svc.Decide("VER-1", "approved", "", "Admin"); !domain.IsInvalidState(err) {
			t.Errorf("decide pada status %s harus InvalidState, got %v", status, err)
		}
	}
}

func TestDecideApproveHappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	reviewedAt := time.Date(2026, 8, 20, 14, 0, 0, 0, time.Local)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE verifications SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	// Detail reload
	mock.ExpectQuery("FROM verification_documents").
		WillReturnRows(sqlmock.NewRows([]string{"id", "verification_id", "doc_type", "file_name", "size", "path", "uploaded_at"}))

	calls := 0
	svc := VerificationService{
		Repo: repositories.VerificationRepository{DB: db},
		Now:  func() time.Time { return reviewedAt },
		FetchVerification: func(id string) (models.Verification, error) {
			calls++
			v := models.Verification{ID: id, UserID: 9, Status: domain.VerificationPending}
			if calls > 1 {
				v.Status = domain.VerificationApproved
				v.ReviewedAt = &reviewedAt
				v.ReviewedBy = "Admin Satu"
			}
			return v, nil
		},
	}

	v, err := svc.Decide("VER-123", "approved", "dokumen lengkap", "Admin Satu")
	if err != nil {
		t.Fatalf("decide error: %v", err)
	}
	if v.Status != domain.VerificationApproved {
		t.Errorf("status harus approved, got %s", v.Status)
	}
	if v.ReviewedAt == nil || !v.ReviewedAt.Equal(reviewedAt) {
		t.Errorf("reviewedAt harus terisi, got %v", v.ReviewedAt)
	}
	if v.ReviewedBy != "Admin Satu" {
		t.Errorf("reviewedBy salah: %s", v.ReviewedBy)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVerificationLifecycleEndToEnd(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO verifications").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO verification_documents").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO verification_documents").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	submittedAt := time.Date(2026, 8, 15, 10, 0, 0, 0, time.Local)
	reviewedAt := time.Date(2026, 8, 16, 14, 0, 0, 0, time.Local)
	clock := submittedAt

	var cur models.Verification
	svc := VerificationService{
		Repo:  repositories.VerificationRepository{DB: db},
		Files: storage.FileStore{BaseDir: t.TempDir()},
		Now:   func() time.Time { return clock },
		FetchVerification: func(id string) (models.Verification, error) {
			if cur.ID != id {
				return models.Verification{}, domain.NotFoundError{Resource: "verifikasi"}
			}
			return cur, nil
		},
	}

	in := VerificationInput{
		UserID:          7,
		FullName:        "Siti Aminah",
		NIK:             "3201019876543210",
		Phone:           "081298765432",
		PreCheckResults: `{"ktp":"ok","stnk":"ok"}`,
	}
	uploads := []DocumentUpload{
		{DocType: "ktp", File: makeFileHeader(t, "ktpFile", "ktp.png", "isi ktp")},
		{DocType: "stnk", File: makeFileHeader(t, "stnkFile", "stnk.png", "isi stnk")},
	}
	v, err := svc.Create(in, uploads)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if v.Status != domain.VerificationPending {
		t.Fatalf("verifikasi baru harus pending, got %s", v.Status)
	}
	cur = v

	clock = reviewedAt
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE verifications SET status").
		WithArgs("approved", reviewedAt, "Admin Satu", "dokumen lengkap", v.ID, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM verification_documents").
		WillReturnRows(sqlmock.NewRows([]string{"id", "verification_id", "doc_type", "file_name", "size", "path", "uploaded_at"}).
			AddRow(1, v.ID, "ktp", "ktp.png", 7, "verifications/a.png", submittedAt).
			AddRow(2, v.ID, "stnk", "stnk.png", 8, "verifications/b.png", submittedAt))

	decided, err := svc.Decide(v.ID, "approved", "dokumen lengkap", "Admin Satu")
	if err != nil {
		t.Fatalf("decide error: %v", err)
	}
	if len(decided.Documents) != 2 {
		t.Errorf("verifikasi harus punya 2 dokumen, got %d", len(decided.Documents))
	}

	// keputusan kedua ditolak: status sudah bukan pending
	cur.Status = domain.VerificationApproved
	if _, err := svc.Decide(v.ID, "rejected", "coba ubah", "Admin Dua"); !domain.IsInvalidState(err) {
		t.Fatalf("keputusan kedua harus InvalidState, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteVerificationPendingRefused(t *testing.T) {
	svc := VerificationService{
		FetchVerification: func(id string) (models.Verification, error) {
			return models.Verification{ID: id, Status: domain.VerificationPending}, nil
		},
	}
	if err := svc.Delete("VER-1"); !domain.IsInvalidState(err) {
		t.Fatalf("hapus verifikasi pending harus InvalidState, got %v", err)
	}
}

func TestDeleteVerificationReviewed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM verification_documents").
		WillReturnRows(sqlmock.NewRows([]string{"id", "verification_id", "doc_type", "file_name", "size", "path", "uploaded_at"}))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM verifications").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM verification_documents").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	svc := VerificationService{
		Repo:  repositories.VerificationRepository{DB: db},
		Files: storage.FileStore{BaseDir: t.TempDir()},
		FetchVerification: func(id string) (models.Verification, error) {
			return models.Verification{ID: id, Status: domain.VerificationRejected}, nil
		},
	}
	if err := svc.Delete("VER-1"); err != nil {
		t.Fatalf("delete error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
