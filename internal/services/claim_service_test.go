package services

import (
	"bytes"
	"database/sql"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"klaimportal/internal/domain"
	"klaimportal/internal/domain/models"
	"klaimportal/internal/repositories"
	"klaimportal/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
)

func makeFileHeader(t *testing.T, field, name, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = w.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, fh, err := req.FormFile(field)
	if err != nil {
		t.Fatalf("parse form file: %v", err)
	}
	return fh
}

func validClaimInput() ClaimInput {
	return ClaimInput{
		FullName:            "Budi Santoso",
		NIK:                 "3201012345678901",
		Phone:               "081234567890",
		Address:             "Jl. Merdeka 1",
		IncidentDate:        "2026-08-01",
		IncidentLocation:    "Jl. Sudirman",
		IncidentDescription: "Kecelakaan tunggal",
		EstimatedCost:       1500000,
	}
}

func TestCreateClaimValidation(t *testing.T) {
	svc := ClaimService{}

	in := validClaimInput()
	in.NIK = "12345"
	if _, err := svc.Create(in, []DocumentUpload{{DocType: "ktp"}}); !domain.IsValidation(err) {
		t.Fatalf("NIK pendek harus ValidationError, got %v", err)
	}

	in = validClaimInput()
	in.IncidentDate = "01-08-2026"
	if _, err := svc.Create(in, []DocumentUpload{{DocType: "ktp"}}); !domain.IsValidation(err) {
		t.Fatalf("tanggal salah format harus ValidationError, got %v", err)
	}

	if _, err := svc.Create(validClaimInput(), nil); !domain.IsValidation(err) {
		t.Fatalf("tanpa dokumen harus ValidationError, got %v", err)
	}
}

func TestCreateClaimHappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO claims").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO claim_documents").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO claim_timeline").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.Local)
	svc := ClaimService{
		Repo:  repositories.ClaimRepository{DB: db},
		Files: storage.FileStore{BaseDir: t.TempDir()},
		Now:   func() time.Time { return now },
	}

	uploads := []DocumentUpload{
		{DocType: "ktp", File: makeFileHeader(t, "ktpFile", "ktp.png", "isi ktp")},
	}
	claim, err := svc.Create(validClaimInput(), uploads)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	if !strings.HasPrefix(claim.ID, "KLM-2026-") {
		t.Errorf("nomor klaim salah format: %s", claim.ID)
	}
	if claim.Status != domain.ClaimPending {
		t.Errorf("klaim baru harus pending, got %s", claim.Status)
	}
	if len(claim.Timeline) != 1 {
		t.Fatalf("klaim baru harus punya 1 entri timeline, got %d", len(claim.Timeline))
	}
	if claim.Timeline[0].Date == nil || *claim.Timeline[0].Date != "2026-08-15" {
		t.Errorf("entri seed harus bertanggal hari pengajuan, got %v", claim.Timeline[0].Date)
	}
	if claim.Timeline[0].Status != "Pengajuan diterima" {
		t.Errorf("label entri seed salah: %s", claim.Timeline[0].Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRequestTransitionIllegalEdges(t *testing.T) {
	fetch := func(status domain.ClaimStatus) func(string) (models.Claim, error) {
		return func(id string) (models.Claim, error) {
			return models.Claim{ID: id, UserID: 3, Status: status}, nil
		}
	}

	svc := ClaimService{FetchClaim: fetch(domain.ClaimApproved)}
	if _, err := svc.RequestTransition("KLM-2026-0001", "completed", "", ""); !domain.IsInvalidTransition(err) {
		t.Fatalf("approved -> completed via status harus ditolak, got %v", err)
	}

	svc = ClaimService{FetchClaim: fetch(domain.ClaimPending)}
	if _, err := svc.RequestTransition("KLM-2026-0001", "approved", "", ""); !domain.IsInvalidTransition(err) {
		t.Fatalf("pending -> approved harus ditolak, got %v", err)
	}

	svc = ClaimService{FetchClaim: fetch(domain.ClaimVerified)}
	if _, err := svc.RequestTransition("KLM-2026-0001", "rejected", "catatan", ""); !domain.IsInvalidTransition(err) {
		t.Fatalf("verified -> rejected harus ditolak, got %v", err)
	}

	svc = ClaimService{FetchClaim: fetch(domain.ClaimPending)}
	if _, err := svc.RequestTransition("KLM-2026-0001", "rejected", "   ", ""); !domain.IsValidation(err) {
		t.Fatalf("rejected tanpa catatan harus ValidationError, got %v", err)
	}

	svc = ClaimService{FetchClaim: fetch(domain.ClaimPending)}
	if _, err := svc.RequestTransition("KLM-2026-0001", "selesai", "", ""); !domain.IsValidation(err) {
		t.Fatalf("status tidak dikenal harus ValidationError, got %v", err)
	}
}

func TestRequestTransitionAppendsTimeline(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	claim := models.Claim{ID: "KLM-2026-0007", UserID: 5, Status: domain.ClaimPending}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM claim_timeline").
		WithArgs(claim.ID, "nonce-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE claims SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO claim_timeline").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// Detail reload
	mock.ExpectQuery("FROM claim_documents").
		WillReturnRows(sqlmock.NewRows([]string{"id", "claim_id", "doc_type", "file_name", "size", "path", "uploaded_at"}))
	mock.ExpectQuery("FROM claim_timeline").
		WillReturnRows(sqlmock.NewRows([]string{"id", "claim_id", "status_label", "entry_date", "description"}).
			AddRow(1, claim.ID, "Pengajuan diterima", "2026-08-15", "Klaim berhasil diajukan dan menunggu verifikasi dokumen").
			AddRow(2, claim.ID, "Verifikasi dokumen", "2026-08-16", "Dokumen telah diverifikasi"))

	fetched := claim
	svc := ClaimService{
		Repo:       repositories.ClaimRepository{DB: db},
		NotifRepo:  repositories.NotificationRepository{DB: db},
		Now:        func() time.Time { return time.Date(2026, 8, 16, 9, 0, 0, 0, time.Local) },
		FetchClaim: func(id string) (models.Claim, error) { return fetched, nil },
	}

	updated, err := svc.RequestTransition(claim.ID, "verified", "", "nonce-1")
	if err != nil {
		t.Fatalf("transition error: %v", err)
	}
	if len(updated.Timeline) != 2 {
		t.Fatalf("timeline harus 2 entri setelah verified, got %d", len(updated.Timeline))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRequestTransitionNonceReplay(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	claim := models.Claim{ID: "KLM-2026-0008", UserID: 5, Status: domain.ClaimPending}

	// nonce sudah tercatat: tidak boleh ada UPDATE/INSERT lagi
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM claim_timeline").
		WithArgs(claim.ID, "nonce-x").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM claim_documents").
		WillReturnRows(sqlmock.NewRows([]string{"id", "claim_id", "doc_type", "file_name", "size", "path", "uploaded_at"}))
	mock.ExpectQuery("FROM claim_timeline").
		WillReturnRows(sqlmock.NewRows([]string{"id", "claim_id", "status_label", "entry_date", "description"}).
			AddRow(1, claim.ID, "Pengajuan diterima", "2026-08-15", "Klaim berhasil diajukan dan menunggu verifikasi dokumen").
			AddRow(2, claim.ID, "Verifikasi dokumen", "2026-08-16", "Dokumen telah diverifikasi"))

	svc := ClaimService{
		Repo:       repositories.ClaimRepository{DB: db},
		FetchClaim: func(id string) (models.Claim, error) { return claim, nil },
	}

	if _, err := svc.RequestTransition(claim.ID, "verified", "", "nonce-x"); err != nil {
		t.Fatalf("replay harus sukses tanpa efek, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUploadTransferProofStateGuard(t *testing.T) {
	for _, status := range []domain.ClaimStatus{
		domain.ClaimPending, domain.ClaimVerified, domain.ClaimProcessing,
		domain.ClaimCompleted, domain.ClaimRejected,
	} {
		svc := ClaimService{
			FetchClaim: func(id string) (models.Claim, error) {
				return models.Claim{ID: id, Status: status}, nil
			},
		}
		fh := makeFileHeader(t, "transferProof", "bukti.png", "bukti")
		if _, err := svc.UploadTransferProof("KLM-2026-0001", fh, 1000000, "", ""); !domain.IsInvalidState(err) {
			t.Errorf("upload bukti pada status %s harus InvalidState, got %v", status, err)
		}
	}
}

func TestUploadTransferProofValidation(t *testing.T) {
	svc := ClaimService{
		FetchClaim: func(id string) (models.Claim, error) {
			return models.Claim{ID: id, Status: domain.ClaimApproved}, nil
		},
	}

	if _, err := svc.UploadTransferProof("KLM-2026-0001", nil, 1000000, "", ""); !domain.IsValidation(err) {
		t.Fatalf("tanpa file harus ValidationError, got %v", err)
	}

	fh := makeFileHeader(t, "transferProof", "bukti.png", "bukti")
	if _, err := svc.UploadTransferProof("KLM-2026-0001", fh, 0, "", ""); !domain.IsValidation(err) {
		t.Fatalf("jumlah 0 harus ValidationError, got %v", err)
	}
	if _, err := svc.UploadTransferProof("KLM-2026-0001", fh, 500000, "15/08/2026", ""); !domain.IsValidation(err) {
		t.Fatalf("tanggal salah format harus ValidationError, got %v", err)
	}
}

func TestSearchFallsBackToNIK(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	claimRow := sqlmock.NewRows([]string{
		"id", "user_id", "full_name", "nik", "phone", "address",
		"incident_date", "incident_time", "incident_location", "incident_description",
		"vehicle_type", "vehicle_number", "hospital_name", "treatment_description", "estimated_cost",
		"bank_name", "bank_branch", "account_number", "account_holder",
		"status", "admin_notes", "transfer_proof_path", "transfer_proof_name",
		"transfer_amount", "transfer_date", "transfer_notes", "submitted_at", "updated_at",
	}).AddRow(
		"KLM-2026-0042", 0, "Budi", "3201012345678901", "0812", "Alamat",
		"2026-08-01", "", "Lokasi", "Kronologi",
		"", "", "", "", 0,
		"", "", "", "",
		"pending", "", "", "",
		0, "", "", now, now,
	)

	mock.ExpectQuery("FROM claims WHERE id=").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM claims WHERE nik=").WillReturnRows(claimRow)
	mock.ExpectQuery("FROM claim_documents").
		WillReturnRows(sqlmock.NewRows([]string{"id", "claim_id", "doc_type", "file_name", "size", "path", "uploaded_at"}))
	mock.ExpectQuery("FROM claim_timeline").
		WillReturnRows(sqlmock.NewRows([]string{"id", "claim_id", "status_label", "entry_date", "description"}))

	svc := ClaimService{Repo: repositories.ClaimRepository{DB: db}}

	claim, err := svc.Search("3201012345678901")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if claim.ID != "KLM-2026-0042" {
		t.Errorf("klaim salah: %s", claim.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestClaimLifecycleEndToEnd(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	claimID := "KLM-2026-0100"
	cur := models.Claim{ID: claimID, Status: domain.ClaimPending}

	entries := []struct{ label, date, desc string }{
		{"Pengajuan diterima", "2026-08-15", "Klaim berhasil diajukan dan menunggu verifikasi dokumen"},
		{"Verifikasi dokumen", "2026-08-16", "Dokumen telah diverifikasi"},
		{"Dalam proses", "2026-08-17", "Klaim sedang diproses"},
		{"Disetujui", "2026-08-18", "Klaim disetujui, menunggu transfer santunan"},
		{"Selesai", "2026-08-20", "Santunan telah ditransfer"},
	}
	timelineRows := func(n int) *sqlmock.Rows {
		rows := sqlmock.NewRows([]string{"id", "claim_id", "status_label", "entry_date", "description"})
		for i := 0; i < n; i++ {
			rows.AddRow(i+1, claimID, entries[i].label, entries[i].date, entries[i].desc)
		}
		return rows
	}
	emptyDocs := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "claim_id", "doc_type", "file_name", "size", "path", "uploaded_at"})
	}

	svc := ClaimService{
		Repo:       repositories.ClaimRepository{DB: db},
		Files:      storage.FileStore{BaseDir: t.TempDir()},
		FetchClaim: func(id string) (models.Claim, error) { return cur, nil },
	}

	steps := []struct {
		target string
		nonce  string
		want   int
	}{
		{"verified", "n-1", 2},
		{"processing", "n-2", 3},
		{"approved", "n-3", 4},
	}
	for _, st := range steps {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM claim_timeline").
			WithArgs(claimID, st.nonce).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE claims SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO claim_timeline").WillReturnResult(sqlmock.NewResult(int64(st.want), 1))
		mock.ExpectCommit()
		mock.ExpectQuery("FROM claim_documents").WillReturnRows(emptyDocs())
		mock.ExpectQuery("FROM claim_timeline").WillReturnRows(timelineRows(st.want))

		updated, err := svc.RequestTransition(claimID, st.target, "", st.nonce)
		if err != nil {
			t.Fatalf("transisi ke %s gagal: %v", st.target, err)
		}
		if len(updated.Timeline) != st.want {
			t.Fatalf("setelah %s timeline harus %d entri, got %d", st.target, st.want, len(updated.Timeline))
		}
		// entri lama tidak pernah berubah
		for i := 0; i < st.want; i++ {
			if updated.Timeline[i].Status != entries[i].label {
				t.Fatalf("entri %d berubah: %s", i, updated.Timeline[i].Status)
			}
		}
		cur.Status = domain.ClaimStatus(st.target)
	}

	// penyelesaian hanya lewat upload bukti transfer
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE claims").
		WithArgs(sqlmock.AnyArg(), "bukti.png", int64(2500000), "2026-08-20", "pelunasan santunan",
			"completed", sqlmock.AnyArg(), claimID, "approved").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO claim_timeline").WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM claim_documents").WillReturnRows(emptyDocs())
	mock.ExpectQuery("FROM claim_timeline").WillReturnRows(timelineRows(5))

	proof := makeFileHeader(t, "transferProof", "bukti.png", "bukti transfer")
	final, err := svc.UploadTransferProof(claimID, proof, 2500000, "2026-08-20", "pelunasan santunan")
	if err != nil {
		t.Fatalf("upload bukti transfer gagal: %v", err)
	}
	if len(final.Timeline) != 5 {
		t.Fatalf("timeline akhir harus 5 entri, got %d", len(final.Timeline))
	}
	if final.Timeline[4].Status != "Selesai" {
		t.Errorf("entri terakhir harus Selesai, got %s", final.Timeline[4].Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := ClaimService{}
	if _, err := svc.Search("   "); !domain.IsValidation(err) {
		t.Fatalf("query kosong harus ValidationError, got %v", err)
	}
}
