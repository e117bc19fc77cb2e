package repositories

import (
	"database/sql"
	"time"

	intconfig "klaimportal/internal/config"
	"klaimportal/internal/domain/models"
)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type NotificationRepository struct {
	DB *sql.DB
}

func (r NotificationRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r NotificationRepository) Insert(n models.Notification) error {
	return insertNotificationTx(r.db(), n)
}

// ListByUser returns the user's notifications newest first.
func (r NotificationRepository) ListByUser(userID int64) ([]models.Notification, error) {
	rows, err := r.db().Query(`
		SELECT id, user_id, type, title, message, COALESCE(reference_id,''), is_read, created_at
		FROM notifications WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.ReferenceID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flips is_read for one notification owned by userID. Returns the
// number of rows touched so callers can distinguish "not yours / not found".
func (r NotificationRepository) MarkRead(id, userID int64) (int64, error) {
	res, err := r.db().Exec(`UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r NotificationRepository) MarkAllRead(userID int64) error {
	_, err := r.db().Exec(`UPDATE notifications SET is_read=1 WHERE user_id=? AND is_read=0`, userID)
	return err
}

func (r NotificationRepository) Delete(id, userID int64) (int64, error) {
	res, err := r.db().Exec(`DELETE FROM notifications WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insertNotificationTx writes a notification row with any execer (tx or db)
// so lifecycle repositories can queue notifications inside their own
// transactions. Rows without an owner are skipped silently; not every
// submission channel carries an authenticated user.
func insertNotificationTx(e execer, n models.Notification) error {
	if n.UserID <= 0 {
		return nil
	}
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := e.Exec(`
		INSERT INTO notifications (user_id, type, title, message, reference_id, is_read, created_at)
		VALUES (?,?,?,?,?,0,?)`,
		n.UserID, n.Type, n.Title, n.Message, n.ReferenceID, createdAt,
	)
	return err
}
