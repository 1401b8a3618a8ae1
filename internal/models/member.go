package models

import "time"

type Member struct {
	ID           int        `json:"id"`
	MemberNumber int        `json:"member_number"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	DNI          string     `json:"dni"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	DeletedAt    *time.Time `json:"-"`
}

// FullName is the display identity used on receipts and gate decisions.
func (m Member) FullName() string {
	if m.FirstName == "" {
		return m.LastName
	}
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

type MemberFilter struct {
	Search   string
	DNI      string
	Active   *bool
	Page     int
	PageSize int
}

// DeviceToken links a member to a push-notification token registered by the
// mobile app.
type DeviceToken struct {
	ID        int       `json:"id"`
	MemberID  int       `json:"member_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
