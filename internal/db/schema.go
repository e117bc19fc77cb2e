package db

import (
	"database/sql"
	"fmt"
)

// schemaDDL creates the portal tables. Statements are idempotent so startup
// can run them unconditionally on a fresh or existing database.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		email VARCHAR(150) NOT NULL UNIQUE,
		phone VARCHAR(30) NOT NULL DEFAULT '',
		password_hash VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS claims (
		id VARCHAR(32) PRIMARY KEY,
		user_id BIGINT NOT NULL DEFAULT 0,
		full_name VARCHAR(150) NOT NULL,
		nik VARCHAR(32) NOT NULL,
		phone VARCHAR(30) NOT NULL DEFAULT '',
		address VARCHAR(255) NOT NULL DEFAULT '',
		incident_date VARCHAR(20) NOT NULL DEFAULT '',
		incident_time VARCHAR(10) NOT NULL DEFAULT '',
		incident_location VARCHAR(255) NOT NULL DEFAULT '',
		incident_description TEXT,
		vehicle_type VARCHAR(30) NOT NULL DEFAULT '',
		vehicle_number VARCHAR(30) NOT NULL DEFAULT '',
		hospital_name VARCHAR(150) NOT NULL DEFAULT '',
		treatment_description TEXT,
		estimated_cost BIGINT NOT NULL DEFAULT 0,
		bank_name VARCHAR(100) NOT NULL DEFAULT '',
		bank_branch VARCHAR(100) NOT NULL DEFAULT '',
		account_number VARCHAR(50) NOT NULL DEFAULT '',
		account_holder VARCHAR(150) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		admin_notes TEXT,
		transfer_proof_path VARCHAR(255) NOT NULL DEFAULT '',
		transfer_proof_name VARCHAR(255) NOT NULL DEFAULT '',
		transfer_amount BIGINT NOT NULL DEFAULT 0,
		transfer_date VARCHAR(20) NOT NULL DEFAULT '',
		transfer_notes TEXT,
		submitted_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_claims_nik (nik),
		INDEX idx_claims_user (user_id),
		INDEX idx_claims_status (status)
	)`,
	`CREATE TABLE IF NOT EXISTS claim_documents (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		claim_id VARCHAR(32) NOT NULL,
		doc_type VARCHAR(40) NOT NULL,
		file_name VARCHAR(255) NOT NULL,
		size BIGINT NOT NULL DEFAULT 0,
		path VARCHAR(255) NOT NULL,
		uploaded_at DATETIME NOT NULL,
		INDEX idx_claim_documents_claim (claim_id)
	)`,
	`CREATE TABLE IF NOT EXISTS claim_timeline (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		claim_id VARCHAR(32) NOT NULL,
		status_label VARCHAR(60) NOT NULL,
		entry_date VARCHAR(20) NULL,
		description VARCHAR(255) NOT NULL DEFAULT '',
		nonce VARCHAR(64) NULL,
		created_at DATETIME NOT NULL,
		UNIQUE KEY uniq_claim_nonce (claim_id, nonce),
		INDEX idx_claim_timeline_claim (claim_id)
	)`,
	`CREATE TABLE IF NOT EXISTS verifications (
		id VARCHAR(40) PRIMARY KEY,
		user_id BIGINT NOT NULL DEFAULT 0,
		full_name VARCHAR(150) NOT NULL,
		nik VARCHAR(32) NOT NULL,
		phone VARCHAR(30) NOT NULL DEFAULT '',
		email VARCHAR(150) NOT NULL DEFAULT '',
		pre_check_results TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		submitted_at DATETIME NOT NULL,
		reviewed_at DATETIME NULL,
		reviewed_by VARCHAR(150) NOT NULL DEFAULT '',
		admin_notes TEXT,
		INDEX idx_verifications_nik (nik),
		INDEX idx_verifications_status (status)
	)`,
	`CREATE TABLE IF NOT EXISTS verification_documents (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		verification_id VARCHAR(40) NOT NULL,
		doc_type VARCHAR(40) NOT NULL,
		file_name VARCHAR(255) NOT NULL,
		size BIGINT NOT NULL DEFAULT 0,
		path VARCHAR(255) NOT NULL,
		uploaded_at DATETIME NOT NULL,
		INDEX idx_verification_documents_verification (verification_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		type VARCHAR(40) NOT NULL,
		title VARCHAR(150) NOT NULL,
		message VARCHAR(255) NOT NULL,
		reference_id VARCHAR(40) NOT NULL DEFAULT '',
		is_read TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		INDEX idx_notifications_user (user_id)
	)`,
}

// EnsureSchema creates any missing portal tables and patches columns added
// after the first release onto existing installs.
func EnsureSchema(conn *sql.DB) error {
	if conn == nil {
		return fmt.Errorf("database belum terhubung")
	}
	for _, ddl := range schemaDDL {
		if _, err := conn.Exec(ddl); err != nil {
			return fmt.Errorf("gagal membuat skema: %w", err)
		}
	}

	// kolom nonce menyusul belakangan; tabel lama perlu di-patch
	if HasTable(conn, "claim_timeline") && !HasColumn(conn, "claim_timeline", "nonce") {
		if _, err := conn.Exec(`ALTER TABLE claim_timeline
			ADD COLUMN nonce VARCHAR(64) NULL,
			ADD UNIQUE KEY uniq_claim_nonce (claim_id, nonce)`); err != nil {
			return fmt.Errorf("gagal menambah kolom nonce: %w", err)
		}
	}

	return nil
}
