package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID                int             `json:"id"`
	MembershipID      int             `json:"membership_id"`
	PaymentMethodID   int             `json:"payment_method_id"`
	ProcessedByUserID *int            `json:"processed_by_user_id,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	PaidAt            time.Time       `json:"paid_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         *time.Time      `json:"updated_at,omitempty"`
	DeletedAt         *time.Time      `json:"-"`

	// Joined display data, populated on reads.
	MethodName string `json:"method_name,omitempty"`
	MemberName string `json:"member_name,omitempty"`
}

type RegisterPaymentRequest struct {
	MembershipID    int             `json:"membership_id"`
	PaymentMethodID int             `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
}

// Receipt is a derived document: every monetary figure on it is recomputed
// from the membership's live lines and non-voided payments at generation time,
// so regenerating a receipt after the membership changed shows the current
// state, not the state at payment time.
type Receipt struct {
	ReceiptNumber   string          `json:"numero_recibo"`
	PaymentID       int             `json:"payment_id"`
	MemberID        int             `json:"member_id"`
	MemberNumber    int             `json:"numero_socio"`
	MemberName      string          `json:"socio"`
	DNI             string          `json:"dni"`
	Period          string          `json:"periodo"`
	TotalCharged    decimal.Decimal `json:"total_cargos"`
	TotalPaidBefore decimal.Decimal `json:"total_pagado_antes"`
	Amount          decimal.Decimal `json:"monto_pago"`
	TotalPaid       decimal.Decimal `json:"total_pagado"`
	NewBalance      decimal.Decimal `json:"nuevo_saldo"`
	IsSettled       bool            `json:"esta_paga"`
	PaymentMethod   string          `json:"metodo_pago"`
	ProcessedBy     string          `json:"procesado_por"`
	PaidAt          time.Time       `json:"fecha_pago"`
	Items           []ReceiptItem   `json:"detalle"`
}

type ReceiptItem struct {
	ActivityName string          `json:"actividad"`
	Price        decimal.Decimal `json:"precio"`
}

type PaymentFilter struct {
	MembershipID int
	MemberID     int
	MethodID     int
	DateFrom     *time.Time
	DateTo       *time.Time
	Page         int
	PageSize     int
}

type PaymentStatistics struct {
	TotalCollected     decimal.Decimal   `json:"total_collected"`
	CollectedToday     decimal.Decimal   `json:"collected_today"`
	CollectedThisMonth decimal.Decimal   `json:"collected_this_month"`
	PendingBalance     decimal.Decimal   `json:"pending_balance"`
	ByMethod           []MethodBreakdown `json:"by_method"`
	ByDay              []DayBreakdown    `json:"by_day"`
}

type MethodBreakdown struct {
	MethodID   int             `json:"method_id"`
	MethodName string          `json:"method_name"`
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
}

type DayBreakdown struct {
	Day   string          `json:"day"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}
