package services

import (
	"context"
	"errors"
	"time"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
)

type MembershipService struct {
	MembershipRepo *repositories.MembershipRepository
	MemberRepo     *repositories.MemberRepository
	ActivityRepo   *repositories.ActivityRepository
	Audit          *AuditService
	Now            Clock
}

func firstDayOf(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func lastDayOf(year, month int) time.Time {
	return firstDayOf(year, month).AddDate(0, 1, -1)
}

// CreateMembership creates a membership for (member, year, month) together
// with one price line per activity, snapshotting each activity's current
// catalog price. Either every line is created or none.
func (s *MembershipService) CreateMembership(ctx context.Context, req models.CreateMembershipRequest) (models.Membership, error) {
	if req.Month < 1 || req.Month > 12 {
		return models.Membership{}, models.NewValidation("el mes debe estar entre 1 y 12")
	}
	if req.Year < 2000 || req.Year > 2100 {
		return models.Membership{}, models.NewValidation("año inválido")
	}
	if _, err := s.MemberRepo.GetMemberByID(ctx, req.MemberID); err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			return models.Membership{}, models.NewNotFound("socio %d no encontrado", req.MemberID)
		}
		return models.Membership{}, err
	}
	activities, err := s.resolveActivities(ctx, req.ActivityIDs)
	if err != nil {
		return models.Membership{}, err
	}

	m := models.Membership{
		MemberID:    req.MemberID,
		PeriodYear:  req.Year,
		PeriodMonth: req.Month,
		PeriodStart: firstDayOf(req.Year, req.Month),
		PeriodEnd:   lastDayOf(req.Year, req.Month),
	}
	id, err := s.MembershipRepo.CreateMembership(ctx, m, activities)
	if err != nil {
		if errors.Is(err, models.ErrDuplicatePeriod) {
			return models.Membership{}, models.NewConflict(
				"Ya existe una membresía para el socio en el período %04d-%02d", req.Year, req.Month)
		}
		return models.Membership{}, err
	}
	s.Audit.Record(ctx, "create", "membership", id, m.PeriodLabel())
	return s.GetMembership(ctx, id)
}

// GetMembership loads the membership with its lines and freshly derived
// totals.
func (s *MembershipService) GetMembership(ctx context.Context, id int) (models.Membership, error) {
	m, err := s.MembershipRepo.GetMembershipByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrMembershipNotFound) {
			return models.Membership{}, models.NewNotFound("membresía %d no encontrada", id)
		}
		return models.Membership{}, err
	}
	member, err := s.MemberRepo.GetMemberByID(ctx, m.MemberID)
	if err == nil {
		m.MemberName = member.FullName()
		m.MemberNumber = member.MemberNumber
	}
	m.Activities, err = s.MembershipRepo.GetLines(ctx, id)
	if err != nil {
		return models.Membership{}, err
	}
	totals, err := s.MembershipRepo.GetTotals(ctx, id)
	if err != nil {
		return models.Membership{}, err
	}
	m.Totals = &totals
	return m, nil
}

// ComputeTotals is a pure read; figures are always derived fresh from the
// current line and payment rows.
func (s *MembershipService) ComputeTotals(ctx context.Context, membershipID int) (models.MembershipTotals, error) {
	if _, err := s.MembershipRepo.GetMembershipByID(ctx, membershipID); err != nil {
		if errors.Is(err, models.ErrMembershipNotFound) {
			return models.MembershipTotals{}, models.NewNotFound("membresía %d no encontrada", membershipID)
		}
		return models.MembershipTotals{}, err
	}
	return s.MembershipRepo.GetTotals(ctx, membershipID)
}

func (s *MembershipService) ListMemberships(ctx context.Context, f models.MembershipFilter) ([]models.Membership, int, error) {
	memberships, total, err := s.MembershipRepo.ListMemberships(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i := range memberships {
		totals, err := s.MembershipRepo.GetTotals(ctx, memberships[i].ID)
		if err != nil {
			return nil, 0, err
		}
		memberships[i].Totals = &totals
	}
	return memberships, total, nil
}

// AssignActivity attaches an activity at its current catalog price. Once the
// membership has registered payments its price lines are frozen.
func (s *MembershipService) AssignActivity(ctx context.Context, membershipID, activityID int) (models.Membership, error) {
	activity, err := s.ActivityRepo.GetActivityByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, models.ErrActivityNotFound) {
			return models.Membership{}, models.NewNotFound("actividad %d no encontrada", activityID)
		}
		return models.Membership{}, err
	}
	err = s.MembershipRepo.AssignActivity(ctx, membershipID, activity)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMembershipNotFound):
			return models.Membership{}, models.NewNotFound("membresía %d no encontrada", membershipID)
		case errors.Is(err, models.ErrHasPayments):
			return models.Membership{}, models.NewConflict(
				"No se puede agregar actividades a una membresía que ya tiene pagos registrados")
		case errors.Is(err, models.ErrAlreadyAssigned):
			return models.Membership{}, models.NewConflict("La actividad ya está asignada a la membresía")
		}
		return models.Membership{}, err
	}
	s.Audit.Record(ctx, "assign_activity", "membership", membershipID, activity.Name)
	return s.GetMembership(ctx, membershipID)
}

func (s *MembershipService) RemoveActivity(ctx context.Context, membershipID, activityID int) (models.Membership, error) {
	err := s.MembershipRepo.RemoveActivity(ctx, membershipID, activityID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMembershipNotFound):
			return models.Membership{}, models.NewNotFound("membresía %d no encontrada", membershipID)
		case errors.Is(err, models.ErrHasPayments):
			return models.Membership{}, models.NewConflict(
				"No se puede remover actividades de una membresía que ya tiene pagos registrados")
		case errors.Is(err, models.ErrNotAssigned):
			return models.Membership{}, models.NewConflict("La actividad no está asignada a la membresía")
		}
		return models.Membership{}, err
	}
	s.Audit.Record(ctx, "remove_activity", "membership", membershipID, "")
	return s.GetMembership(ctx, membershipID)
}

// ReplaceActivities swaps the full activity set, re-snapshotting every price
// at today's catalog values. Blocked once payments exist, like assign/remove.
func (s *MembershipService) ReplaceActivities(ctx context.Context, membershipID int, activityIDs []int) (models.Membership, error) {
	activities, err := s.resolveActivities(ctx, activityIDs)
	if err != nil {
		return models.Membership{}, err
	}
	err = s.MembershipRepo.ReplaceActivities(ctx, membershipID, activities)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMembershipNotFound):
			return models.Membership{}, models.NewNotFound("membresía %d no encontrada", membershipID)
		case errors.Is(err, models.ErrHasPayments):
			return models.Membership{}, models.NewConflict(
				"No se puede modificar actividades de una membresía que ya tiene pagos registrados")
		}
		return models.Membership{}, err
	}
	s.Audit.Record(ctx, "replace_activities", "membership", membershipID, "")
	return s.GetMembership(ctx, membershipID)
}

// DeleteMembership soft-deletes the membership; refused while any non-voided
// payment remains.
func (s *MembershipService) DeleteMembership(ctx context.Context, membershipID int) error {
	err := s.MembershipRepo.SoftDeleteMembership(ctx, membershipID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMembershipNotFound):
			return models.NewNotFound("membresía %d no encontrada", membershipID)
		case errors.Is(err, models.ErrHasPayments):
			return models.NewConflict("No se puede eliminar una membresía con pagos registrados")
		}
		return err
	}
	s.Audit.Record(ctx, "delete", "membership", membershipID, "")
	return nil
}

// resolveActivities maps ids to live catalog rows, failing if any id is
// missing or soft-deleted.
func (s *MembershipService) resolveActivities(ctx context.Context, ids []int) ([]models.Activity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, models.NewValidation("actividad %d repetida en la solicitud", id)
		}
		seen[id] = true
	}
	activities, err := s.ActivityRepo.GetActivitiesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[int]bool, len(activities))
	for _, a := range activities {
		found[a.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, models.NewNotFound("actividad %d no encontrada", id)
		}
	}
	return activities, nil
}
