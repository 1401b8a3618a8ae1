package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNoRecord              = errors.New("models: no matching record found")
	ErrInvalidCredentials    = errors.New("models: invalid credentials")
	ErrMemberNotFound        = errors.New("socio no encontrado")
	ErrMembershipNotFound    = errors.New("membresía no encontrada")
	ErrActivityNotFound      = errors.New("actividad no encontrada")
	ErrPaymentNotFound       = errors.New("pago no encontrado")
	ErrPaymentMethodNotFound = errors.New("método de pago no encontrado")
	ErrUserNotFound          = errors.New("usuario no encontrado")
	ErrDuplicatePeriod       = errors.New("ya existe una membresía para ese socio y período")
	ErrDuplicateDNI          = errors.New("ya existe un socio con ese DNI")
	ErrDuplicateUsername     = errors.New("ya existe un usuario con ese nombre")
	ErrAlreadyAssigned       = errors.New("la actividad ya está asignada a la membresía")
	ErrNotAssigned           = errors.New("la actividad no está asignada a la membresía")
	ErrHasPayments           = errors.New("la membresía tiene pagos registrados")
)

// NotFoundError means the referenced entity does not exist or is soft-deleted.
// Handlers translate it to 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NewNotFound(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError means the request violates a business rule. Handlers
// translate it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError means a structurally valid request clashes with current state
// (duplicate period, frozen price lines, blocked delete). Handlers translate
// it to 409.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// AmountExceedsBalanceError is returned by the payment register when a payment
// would overpay the membership. It carries the outstanding balance observed
// inside the payment transaction.
type AmountExceedsBalanceError struct {
	Balance decimal.Decimal
}

func (e *AmountExceedsBalanceError) Error() string {
	return fmt.Sprintf("El monto excede el saldo pendiente de $%s", e.Balance.StringFixed(2))
}
