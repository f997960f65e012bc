package models

import "time"

// ScheduledMessage is a message written ahead of time and materialized
// into a real Message by the dispatcher once it is due.
type ScheduledMessage struct {
	ID           int64     `db:"id" json:"id"`
	SenderID     int64     `db:"sender_id" json:"sender_id"`
	ReceiverID   int64     `db:"receiver_id" json:"receiver_id"`
	Text         string    `db:"text" json:"text,omitempty"`
	Image        string    `db:"image" json:"image,omitempty"`
	ScheduledFor time.Time `db:"scheduled_for" json:"scheduled_for"`
	IsSent       bool      `db:"is_sent" json:"is_sent"`
}

// Reminder notifies its owner once due. Editing a reminder resets
// IsSent so it can fire again.
type Reminder struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Text         string    `db:"text" json:"text"`
	ScheduledFor time.Time `db:"scheduled_for" json:"scheduled_for"`
	IsSent       bool      `db:"is_sent" json:"is_sent"`
}
