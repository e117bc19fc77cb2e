package repositories

import (
	"database/sql"
	"errors"
	"time"

	intconfig "klaimportal/internal/config"
	intdb "klaimportal/internal/db"
	"klaimportal/internal/domain"
	"klaimportal/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

type ClaimRepository struct {
	DB *sql.DB
}

func (r ClaimRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const claimColumns = `id,
       COALESCE(user_id,0),
       COALESCE(full_name,''),
       COALESCE(nik,''),
       COALESCE(phone,''),
       COALESCE(address,''),
       COALESCE(incident_date,''),
       COALESCE(incident_time,''),
       COALESCE(incident_location,''),
       COALESCE(incident_description,''),
       COALESCE(vehicle_type,''),
       COALESCE(vehicle_number,''),
       COALESCE(hospital_name,''),
       COALESCE(treatment_description,''),
       COALESCE(estimated_cost,0),
       COALESCE(bank_name,''),
       COALESCE(bank_branch,''),
       COALESCE(account_number,''),
       COALESCE(account_holder,''),
       COALESCE(status,'pending'),
       COALESCE(admin_notes,''),
       COALESCE(transfer_proof_path,''),
       COALESCE(transfer_proof_name,''),
       COALESCE(transfer_amount,0),
       COALESCE(transfer_date,''),
       COALESCE(transfer_notes,''),
       submitted_at,
       updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (models.Claim, error) {
	var c models.Claim
	var status string
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.FullName,
		&c.NIK,
		&c.Phone,
		&c.Address,
		&c.IncidentDate,
		&c.IncidentTime,
		&c.IncidentLocation,
		&c.IncidentDescription,
		&c.VehicleType,
		&c.VehicleNumber,
		&c.HospitalName,
		&c.TreatmentDescription,
		&c.EstimatedCost,
		&c.BankName,
		&c.BankBranch,
		&c.AccountNumber,
		&c.AccountHolder,
		&status,
		&c.AdminNotes,
		&c.TransferProofPath,
		&c.TransferProofName,
		&c.TransferAmount,
		&c.TransferDate,
		&c.TransferNotes,
		&c.SubmittedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return models.Claim{}, err
	}
	c.Status = domain.ClaimStatus(status)
	c.StatusLabel = c.Status.Label()
	return c, nil
}

// Insert stores a new claim together with its documents and the seed timeline
// entry in one transaction. A duplicate claim number surfaces as
// ConflictError so the caller can regenerate and retry.
func (r ClaimRepository) Insert(c models.Claim, docs []models.ClaimDocument, entry models.TimelineEntry) error {
	tx, err := r.db().Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO claims (id, user_id, full_name, nik, phone, address,
			incident_date, incident_time, incident_location, incident_description,
			vehicle_type, vehicle_number, hospital_name, treatment_description, estimated_cost,
			bank_name, bank_branch, account_number, account_holder,
			status, submitted_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.ID, c.UserID, c.FullName, c.NIK, c.Phone, c.Address,
		c.IncidentDate, c.IncidentTime, c.IncidentLocation, c.IncidentDescription,
		c.VehicleType, c.VehicleNumber, c.HospitalName, c.TreatmentDescription, c.EstimatedCost,
		c.BankName, c.BankBranch, c.AccountNumber, c.AccountHolder,
		string(c.Status), c.SubmittedAt, c.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ConflictError{Resource: "klaim", Msg: "nomor klaim sudah dipakai", Err: err}
		}
		return err
	}

	for _, d := range docs {
		if _, err := tx.Exec(`
			INSERT INTO claim_documents (claim_id, doc_type, file_name, size, path, uploaded_at)
			VALUES (?,?,?,?,?,?)`,
			c.ID, d.DocType, d.FileName, d.Size, d.Path, d.UploadedAt,
		); err != nil {
			return err
		}
	}

	if err := insertTimelineTx(tx, c.ID, entry, ""); err != nil {
		return err
	}

	return tx.Commit()
}

func (r ClaimRepository) GetByID(id string) (models.Claim, error) {
	row := r.db().QueryRow(`SELECT `+claimColumns+` FROM claims WHERE id=? LIMIT 1`, id)
	c, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Claim{}, domain.NotFoundError{Resource: "klaim", Err: err}
		}
		return models.Claim{}, err
	}
	return c, nil
}

// GetByNIKLatest returns the most recently submitted claim for a NIK.
func (r ClaimRepository) GetByNIKLatest(nik string) (models.Claim, error) {
	row := r.db().QueryRow(`SELECT `+claimColumns+` FROM claims WHERE nik=? ORDER BY submitted_at DESC, id DESC LIMIT 1`, nik)
	c, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Claim{}, domain.NotFoundError{Resource: "klaim", Err: err}
		}
		return models.Claim{}, err
	}
	return c, nil
}

// ListAll returns claims newest first, optionally filtered by status.
func (r ClaimRepository) ListAll(status string) ([]models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims ORDER BY submitted_at DESC`
	args := []any{}
	if status != "" {
		query = `SELECT ` + claimColumns + ` FROM claims WHERE status=? ORDER BY submitted_at DESC`
		args = append(args, status)
	}
	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Claim{}
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r ClaimRepository) ListByUser(userID int64) ([]models.Claim, error) {
	rows, err := r.db().Query(`SELECT `+claimColumns+` FROM claims WHERE user_id=? ORDER BY submitted_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Claim{}
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r ClaimRepository) LoadDocuments(claimID string) ([]models.ClaimDocument, error) {
	rows, err := r.db().Query(`
		SELECT id, claim_id, doc_type, file_name, size, path, uploaded_at
		FROM claim_documents WHERE claim_id=? ORDER BY id`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ClaimDocument{}
	for rows.Next() {
		var d models.ClaimDocument
		if err := rows.Scan(&d.ID, &d.ClaimID, &d.DocType, &d.FileName, &d.Size, &d.Path, &d.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r ClaimRepository) GetDocument(claimID string, docID int64) (models.ClaimDocument, error) {
	var d models.ClaimDocument
	err := r.db().QueryRow(`
		SELECT id, claim_id, doc_type, file_name, size, path, uploaded_at
		FROM claim_documents WHERE claim_id=? AND id=? LIMIT 1`, claimID, docID).
		Scan(&d.ID, &d.ClaimID, &d.DocType, &d.FileName, &d.Size, &d.Path, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ClaimDocument{}, domain.NotFoundError{Resource: "dokumen", Err: err}
		}
		return models.ClaimDocument{}, err
	}
	return d, nil
}

// LoadTimeline returns entries in append order.
func (r ClaimRepository) LoadTimeline(claimID string) ([]models.TimelineEntry, error) {
	rows, err := r.db().Query(`
		SELECT id, claim_id, status_label, entry_date, description
		FROM claim_timeline WHERE claim_id=? ORDER BY id`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TimelineEntry{}
	for rows.Next() {
		var e models.TimelineEntry
		var date sql.NullString
		if err := rows.Scan(&e.ID, &e.ClaimID, &e.Status, &date, &e.Description); err != nil {
			return nil, err
		}
		if date.Valid {
			d := date.String
			e.Date = &d
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ApplyTransition updates the claim status and appends the timeline entry
// atomically, queueing the applicant notification in the same transaction.
// When nonce was already recorded for this claim the call is a no-op and
// returns applied=false (idempotent retry).
func (r ClaimRepository) ApplyTransition(claimID string, target domain.ClaimStatus, adminNotes string, entry models.TimelineEntry, nonce string, notif *models.Notification) (bool, error) {
	conn := r.db()

	if nonce != "" {
		var n int
		if err := conn.QueryRow(`SELECT COUNT(*) FROM claim_timeline WHERE claim_id=? AND nonce=?`, claimID, nonce).Scan(&n); err == nil && n > 0 {
			return false, nil
		}
	}

	tx, err := conn.Begin()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`UPDATE claims SET status=?, admin_notes=?, updated_at=? WHERE id=?`,
		string(target), adminNotes, time.Now(), claimID)
	if err != nil {
		return false, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return false, domain.NotFoundError{Resource: "klaim"}
	}

	if err := insertTimelineTx(tx, claimID, entry, nonce); err != nil {
		if isDuplicateKey(err) {
			// nonce raced in between the check and the insert
			return false, nil
		}
		return false, err
	}

	if notif != nil {
		if err := insertNotificationTx(tx, *notif); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// CompleteWithTransfer stores the transfer proof reference and metadata,
// advances status to completed and appends the terminal timeline entry in one
// transaction. The status guard on the UPDATE keeps a racing second upload
// from double-completing the claim.
func (r ClaimRepository) CompleteWithTransfer(claimID, proofPath, proofName string, amount int64, date, notes string, entry models.TimelineEntry, notif *models.Notification) error {
	tx, err := r.db().Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		UPDATE claims
		SET transfer_proof_path=?, transfer_proof_name=?, transfer_amount=?, transfer_date=?, transfer_notes=?,
		    status=?, updated_at=?
		WHERE id=? AND status=?`,
		proofPath, proofName, amount, date, notes,
		string(domain.ClaimCompleted), time.Now(),
		claimID, string(domain.ClaimApproved),
	)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.InvalidStateError{Resource: "klaim", Msg: "klaim tidak lagi berstatus approved"}
	}

	if err := insertTimelineTx(tx, claimID, entry, ""); err != nil {
		return err
	}

	if notif != nil {
		if err := insertNotificationTx(tx, *notif); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes the claim with its documents, timeline and notifications.
func (r ClaimRepository) Delete(claimID string) error {
	tx, err := r.db().Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`DELETE FROM claims WHERE id=?`, claimID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFoundError{Resource: "klaim"}
	}
	if _, err := tx.Exec(`DELETE FROM claim_documents WHERE claim_id=?`, claimID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM claim_timeline WHERE claim_id=?`, claimID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM notifications WHERE reference_id=?`, claimID); err != nil {
		return err
	}

	return tx.Commit()
}

// CountByStatus returns claim counts grouped by status.
func (r ClaimRepository) CountByStatus() (map[string]int, error) {
	rows, err := r.db().Query(`SELECT status, COUNT(*) FROM claims GROUP BY status`)
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

func insertTimelineTx(e execer, claimID string, entry models.TimelineEntry, nonce string) error {
	_, err := e.Exec(`
		INSERT INTO claim_timeline (claim_id, status_label, entry_date, description, nonce, created_at)
		VALUES (?,?,?,?,?,?)`,
		claimID, entry.Status, timelineDate(entry), entry.Description, intdb.NullIfEmpty(nonce), time.Now(),
	)
	return err
}

func timelineDate(entry models.TimelineEntry) any {
	if entry.Date == nil {
		return nil
	}
	return *entry.Date
}

func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
