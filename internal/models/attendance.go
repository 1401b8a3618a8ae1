package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Gate decision status tags, in precedence order.
const (
	EntryStatusInactive     = "INACTIVO"
	EntryStatusNoMembership = "SIN MEMBRESIA VIGENTE"
	EntryStatusBalanceDue   = "SALDO PENDIENTE"
	EntryStatusUpToDate     = "AL DIA"
)

// EntryDecision is the full contract of the attendance gate: identity, the
// admit flag, a human-readable message and, when relevant, balance, expiry
// and attached-activity detail.
type EntryDecision struct {
	MemberID     int              `json:"member_id"`
	MemberNumber int              `json:"numero_socio"`
	MemberName   string           `json:"socio"`
	DNI          string           `json:"dni"`
	Allowed      bool             `json:"permitido"`
	Status       string           `json:"estado"`
	Message      string           `json:"mensaje"`
	Balance      *decimal.Decimal `json:"saldo_pendiente,omitempty"`
	ValidUntil   *time.Time       `json:"fecha_vigencia_hasta,omitempty"`
	Activities   []string         `json:"actividades,omitempty"`
}

type AttendanceRecord struct {
	ID        int       `json:"id"`
	MemberID  int       `json:"member_id"`
	EnteredAt time.Time `json:"entered_at"`

	MemberName   string `json:"socio,omitempty"`
	MemberNumber int    `json:"numero_socio,omitempty"`
	DNI          string `json:"dni,omitempty"`
}

type AttendanceFilter struct {
	Date     *time.Time
	MemberID int
}
