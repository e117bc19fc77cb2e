package repositories

import (
	"database/sql"
	"errors"
	"time"

	intconfig "klaimportal/internal/config"
	"klaimportal/internal/domain"
	"klaimportal/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const userColumns = `id, name, email, COALESCE(phone,''), password_hash, role, status, created_at, updated_at`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r UserRepository) GetByEmail(email string) (models.User, error) {
	row := r.db().QueryRow(`SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, err
	}
	return u, nil
}

func (r UserRepository) GetByID(id int64) (models.User, error) {
	row := r.db().QueryRow(`SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, err
	}
	return u, nil
}

func (r UserRepository) EmailExists(email string) (bool, error) {
	var n int
	if err := r.db().QueryRow(`SELECT COUNT(*) FROM users WHERE email=?`, email).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r UserRepository) Insert(u models.User) (int64, error) {
	now := time.Now()
	res, err := r.db().Exec(`
		INSERT INTO users (name, email, phone, password_hash, role, status, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.Status, now, now,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "user", Msg: "email sudah terdaftar", Err: err}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r UserRepository) UpdateProfile(id int64, name, phone string) error {
	_, err := r.db().Exec(`UPDATE users SET name=?, phone=?, updated_at=? WHERE id=?`, name, phone, time.Now(), id)
	return err
}

func (r UserRepository) UpdatePassword(id int64, passwordHash string) error {
	_, err := r.db().Exec(`UPDATE users SET password_hash=?, updated_at=? WHERE id=?`, passwordHash, time.Now(), id)
	return err
}
