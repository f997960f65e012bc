package models

import "time"

// Status is an ephemeral media post visible to every user.
type Status struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	MediaURL  string    `db:"media_url" json:"media_url"`
	MediaType string    `db:"media_type" json:"media_type"`
	Caption   string    `db:"caption" json:"caption,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Viewers   []int64   `json:"viewers,omitempty"`
}

// Notification is a persisted entry in a user's notification center.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
