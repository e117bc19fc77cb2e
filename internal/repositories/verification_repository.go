package repositories

import (
	"database/sql"
	"errors"
	"time"

	intconfig "klaimportal/internal/config"
	intdb "klaimportal/internal/db"
	"klaimportal/internal/domain"
	"klaimportal/internal/domain/models"
)

type VerificationRepository struct {
	DB *sql.DB
}

func (r VerificationRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const verificationColumns = `id,
       COALESCE(user_id,0),
       COALESCE(full_name,''),
       COALESCE(nik,''),
       COALESCE(phone,''),
       COALESCE(email,''),
       COALESCE(pre_check_results,''),
       COALESCE(status,'pending'),
       submitted_at,
       reviewed_at,
       COALESCE(reviewed_by,''),
       COALESCE(admin_notes,'')`

func scanVerification(row rowScanner) (models.Verification, error) {
	var v models.Verification
	var status, preCheck string
	var reviewedAt sql.NullTime
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.FullName,
		&v.NIK,
		&v.Phone,
		&v.Email,
		&preCheck,
		&status,
		&v.SubmittedAt,
		&reviewedAt,
		&v.ReviewedBy,
		&v.AdminNotes,
	)
	if err != nil {
		return models.Verification{}, err
	}
	v.Status = domain.VerificationStatus(status)
	if preCheck != "" {
		v.PreCheckResults = []byte(preCheck)
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		v.ReviewedAt = &t
	}
	return v, nil
}

// Insert stores a new verification with its documents in one transaction.
func (r VerificationRepository) Insert(v models.Verification, docs []models.VerificationDocument) error {
	tx, err := r.db().Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO verifications (id, user_id, full_name, nik, phone, email, pre_check_results, status, submitted_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		v.ID, v.UserID, v.FullName, v.NIK, v.Phone, v.Email,
		intdb.NullIfEmpty(string(v.PreCheckResults)), string(v.Status), v.SubmittedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ConflictError{Resource: "verifikasi", Msg: "id verifikasi sudah dipakai", Err: err}
		}
		return err
	}

	for _, d := range docs {
		if _, err := tx.Exec(`
			INSERT INTO verification_documents (verification_id, doc_type, file_name, size, path, uploaded_at)
			VALUES (?,?,?,?,?,?)`,
			v.ID, d.DocType, d.FileName, d.Size, d.Path, d.UploadedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r VerificationRepository) GetByID(id string) (models.Verification, error) {
	row := r.db().QueryRow(`SELECT `+verificationColumns+` FROM verifications WHERE id=? LIMIT 1`, id)
	v, err := scanVerification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Verification{}, domain.NotFoundError{Resource: "verifikasi", Err: err}
		}
		return models.Verification{}, err
	}
	return v, nil
}

// ListAll returns verifications newest first, optionally filtered by status.
func (r VerificationRepository) ListAll(status string) ([]models.Verification, error) {
	query := `SELECT ` + verificationColumns + ` FROM verifications ORDER BY submitted_at DESC`
	args := []any{}
	if status != "" {
		query = `SELECT ` + verificationColumns + ` FROM verifications WHERE status=? ORDER BY submitted_at DESC`
		args = append(args, status)
	}
	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Verification{}
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r VerificationRepository) ListByNIK(nik string) ([]models.Verification, error) {
	rows, err := r.db().Query(`SELECT `+verificationColumns+` FROM verifications WHERE nik=? ORDER BY submitted_at DESC`, nik)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Verification{}
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r VerificationRepository) LoadDocuments(verificationID string) ([]models.VerificationDocument, error) {
	rows, err := r.db().Query(`
		SELECT id, verification_id, doc_type, file_name, size, path, uploaded_at
		FROM verification_documents WHERE verification_id=? ORDER BY id`, verificationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.VerificationDocument{}
	for rows.Next() {
		var d models.VerificationDocument
		if err := rows.Scan(&d.ID, &d.VerificationID, &d.DocType, &d.FileName, &d.Size, &d.Path, &d.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ApplyDecision records the admin decision. The status guard keeps a racing
// second decision from overwriting the first; 0 rows touched means the
// verification was no longer pending.
func (r VerificationRepository) ApplyDecision(id string, decision domain.VerificationStatus, adminNotes, reviewer string, reviewedAt time.Time, notif *models.Notification) error {
	tx, err := r.db().Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		UPDATE verifications SET status=?, reviewed_at=?, reviewed_by=?, admin_notes=?
		WHERE id=? AND status=?`,
		string(decision), reviewedAt, reviewer, adminNotes,
		id, string(domain.VerificationPending),
	)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.InvalidStateError{Resource: "verifikasi", Msg: "verifikasi sudah direview"}
	}

	if notif != nil {
		if err := insertNotificationTx(tx, *notif); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes the verification and its documents.
func (r VerificationRepository) Delete(id string) error {
	tx, err := r.db().Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`DELETE FROM verifications WHERE id=?`, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFoundError{Resource: "verifikasi"}
	}
	if _, err := tx.Exec(`DELETE FROM verification_documents WHERE verification_id=?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// CountByStatus returns verification counts grouped by status.
func (r VerificationRepository) CountByStatus() (map[string]int, error) {
	rows, err := r.db().Query(`SELECT status, COUNT(*) FROM verifications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
