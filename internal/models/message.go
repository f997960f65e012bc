package models

import "time"

// Message represents a chat message addressed to either a single user
// or a group, never both.
type Message struct {
	ID         int64     `db:"id" json:"id"`
	SenderID   int64     `db:"sender_id" json:"sender_id"`
	ReceiverID *int64    `db:"receiver_id" json:"receiver_id,omitempty"`
	GroupID    *int64    `db:"group_id" json:"group_id,omitempty"`
	Text       string    `db:"text" json:"text,omitempty"`
	Image      string    `db:"image" json:"image,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// IsGroupMessage reports whether the message is addressed to a group.
func (m Message) IsGroupMessage() bool {
	return m.GroupID != nil
}
