package models

import "time"

type AuditLog struct {
	ID        int       `json:"id"`
	UserID    *int      `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  int       `json:"entity_id"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditFilter struct {
	Entity   string
	UserID   int
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}
