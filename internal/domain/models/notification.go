package models

import "time"

// Notification is a persisted per-user notification emitted when a claim or
// verification transitions. Read state lives on the row, so it is per viewer.
type Notification struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	ReferenceID string    `json:"reference_id"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// FeedItem is a derived notification for the admin bell, synthesized from the
// current claim/verification collections rather than stored rows. ID is
// stable per (kind, entity) so client-side read tracking keeps working across
// refreshes. Time carries the raw timestamp string; it may be empty or
// unparseable for legacy rows, and the feed sort pushes those entries last.
type FeedItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	ReferenceID string `json:"reference_id"`
	Time        string `json:"time"`
	Color       string `json:"color"`
}
