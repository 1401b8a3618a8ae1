package services

import (
	"context"
	"errors"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
)

// EntryFeed receives every granted entry, e.g. to push it to front-desk
// dashboards over websocket.
type EntryFeed interface {
	BroadcastEntry(models.AttendanceRecord)
}

type AttendanceService struct {
	AttendanceRepo *repositories.AttendanceRepository
	MemberRepo     *repositories.MemberRepository
	MembershipRepo *repositories.MembershipRepository
	Feed           EntryFeed
	Now            Clock
}

// CheckStatus decides whether the member identified by dni may be admitted
// right now. Evaluation order, first match wins: member missing → not found;
// member deactivated → INACTIVO; no membership covering today → SIN MEMBRESIA
// VIGENTE; outstanding balance → SALDO PENDIENTE; otherwise AL DIA.
func (s *AttendanceService) CheckStatus(ctx context.Context, dni string) (models.EntryDecision, error) {
	member, err := s.MemberRepo.GetMemberByDNI(ctx, dni)
	if err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			return models.EntryDecision{}, models.NewNotFound("No existe un socio con DNI %s", dni)
		}
		return models.EntryDecision{}, err
	}

	decision := models.EntryDecision{
		MemberID:     member.ID,
		MemberNumber: member.MemberNumber,
		MemberName:   member.FullName(),
		DNI:          member.DNI,
	}

	if !member.Active {
		decision.Status = models.EntryStatusInactive
		decision.Message = "El socio se encuentra inactivo"
		return decision, nil
	}

	membership, err := s.MembershipRepo.GetActiveMembership(ctx, member.ID, nowOr(s.Now))
	if err != nil {
		if errors.Is(err, models.ErrMembershipNotFound) {
			decision.Status = models.EntryStatusNoMembership
			decision.Message = "El socio no tiene una membresía vigente"
			return decision, nil
		}
		return models.EntryDecision{}, err
	}

	lines, err := s.MembershipRepo.GetLines(ctx, membership.ID)
	if err != nil {
		return models.EntryDecision{}, err
	}
	names := make([]string, 0, len(lines))
	for _, l := range lines {
		names = append(names, l.ActivityName)
	}
	decision.Activities = names

	totals, err := s.MembershipRepo.GetTotals(ctx, membership.ID)
	if err != nil {
		return models.EntryDecision{}, err
	}
	if totals.Balance.IsPositive() {
		balance := totals.Balance
		decision.Status = models.EntryStatusBalanceDue
		decision.Message = "La membresía tiene un saldo pendiente de $" + balance.StringFixed(2)
		decision.Balance = &balance
		return decision, nil
	}

	validUntil := membership.PeriodEnd
	decision.Allowed = true
	decision.Status = models.EntryStatusUpToDate
	decision.Message = "El socio está al día"
	decision.ValidUntil = &validUntil
	return decision, nil
}

// RegisterEntry re-runs the status check and, when granted, inserts the
// attendance row. A member may check in several times on the same day.
func (s *AttendanceService) RegisterEntry(ctx context.Context, dni string) (models.AttendanceRecord, error) {
	decision, err := s.CheckStatus(ctx, dni)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if !decision.Allowed {
		return models.AttendanceRecord{}, models.NewValidation("%s", decision.Message)
	}
	rec, err := s.AttendanceRepo.CreateAttendance(ctx, models.AttendanceRecord{
		MemberID:  decision.MemberID,
		EnteredAt: nowOr(s.Now),
	})
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	rec.MemberName = decision.MemberName
	rec.MemberNumber = decision.MemberNumber
	rec.DNI = decision.DNI
	if s.Feed != nil {
		s.Feed.BroadcastEntry(rec)
	}
	return rec, nil
}

func (s *AttendanceService) ListAttendances(ctx context.Context, f models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	return s.AttendanceRepo.ListAttendances(ctx, f)
}
