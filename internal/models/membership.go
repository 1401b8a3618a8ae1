package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Membership struct {
	ID          int        `json:"id"`
	MemberID    int        `json:"member_id"`
	PeriodYear  int        `json:"period_year"`
	PeriodMonth int        `json:"period_month"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   time.Time  `json:"period_end"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	DeletedAt   *time.Time `json:"-"`

	// Joined display data, populated on reads.
	MemberName   string                   `json:"member_name,omitempty"`
	MemberNumber int                      `json:"member_number,omitempty"`
	Activities   []MembershipActivityLine `json:"activities,omitempty"`
	Totals       *MembershipTotals        `json:"totals,omitempty"`
}

// PeriodLabel renders the billing period the way receipts show it, e.g. "2025-11".
func (m Membership) PeriodLabel() string {
	return fmt.Sprintf("%04d-%02d", m.PeriodYear, m.PeriodMonth)
}

// MembershipActivityLine joins a membership to an activity with the catalog
// price captured at the moment of attachment. The captured price never tracks
// later catalog changes.
type MembershipActivityLine struct {
	MembershipID      int             `json:"membership_id"`
	ActivityID        int             `json:"activity_id"`
	ActivityName      string          `json:"activity_name,omitempty"`
	PriceAtAttachment decimal.Decimal `json:"price_at_attachment"`
	CreatedAt         time.Time       `json:"created_at"`
}

// MembershipTotals is always derived fresh from live lines and non-voided
// payments. It is never stored on the membership row.
type MembershipTotals struct {
	TotalCharged decimal.Decimal `json:"total_charged"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Balance      decimal.Decimal `json:"balance"`
	IsSettled    bool            `json:"is_settled"`
}

type CreateMembershipRequest struct {
	MemberID    int   `json:"member_id"`
	Year        int   `json:"year"`
	Month       int   `json:"month"`
	ActivityIDs []int `json:"activity_ids"`
}

type ReplaceActivitiesRequest struct {
	ActivityIDs []int `json:"activity_ids"`
}

type AssignActivityRequest struct {
	MembershipID int `json:"membership_id"`
	ActivityID   int `json:"activity_id"`
}

type MembershipFilter struct {
	MemberID   int
	Year       int
	Month      int
	OnlyUnpaid bool
	Page       int
	PageSize   int
}
