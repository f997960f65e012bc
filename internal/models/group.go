package models

import "time"

// Group represents a chat group. The admin is always a member.
type Group struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Image     string    `db:"image" json:"image"`
	AdminID   int64     `db:"admin_id" json:"admin_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Members   []int64   `json:"members,omitempty"`
}
