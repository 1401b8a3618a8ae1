package services

import (
	"context"
	"errors"
	"strings"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
)

type MemberService struct {
	MemberRepo *repositories.MemberRepository
	Audit      *AuditService
}

func validateMember(m models.Member) error {
	if strings.TrimSpace(m.FirstName) == "" && strings.TrimSpace(m.LastName) == "" {
		return models.NewValidation("el socio debe tener nombre o apellido")
	}
	if strings.TrimSpace(m.DNI) == "" {
		return models.NewValidation("el DNI es obligatorio")
	}
	return nil
}

func (s *MemberService) CreateMember(ctx context.Context, m models.Member) (models.Member, error) {
	if err := validateMember(m); err != nil {
		return models.Member{}, err
	}
	exists, err := s.MemberRepo.ExistsByDNI(ctx, m.DNI, 0)
	if err != nil {
		return models.Member{}, err
	}
	if exists {
		return models.Member{}, models.NewConflict("Ya existe un socio con DNI %s", m.DNI)
	}
	m.Active = true
	created, err := s.MemberRepo.CreateMember(ctx, m)
	if err != nil {
		return models.Member{}, err
	}
	s.Audit.Record(ctx, "create", "member", created.ID, created.FullName())
	return created, nil
}

func (s *MemberService) GetMember(ctx context.Context, id int) (models.Member, error) {
	m, err := s.MemberRepo.GetMemberByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			return models.Member{}, models.NewNotFound("socio %d no encontrado", id)
		}
		return models.Member{}, err
	}
	return m, nil
}

func (s *MemberService) ListMembers(ctx context.Context, f models.MemberFilter) ([]models.Member, int, error) {
	return s.MemberRepo.ListMembers(ctx, f)
}

func (s *MemberService) UpdateMember(ctx context.Context, m models.Member) (models.Member, error) {
	if err := validateMember(m); err != nil {
		return models.Member{}, err
	}
	exists, err := s.MemberRepo.ExistsByDNI(ctx, m.DNI, m.ID)
	if err != nil {
		return models.Member{}, err
	}
	if exists {
		return models.Member{}, models.NewConflict("Ya existe un socio con DNI %s", m.DNI)
	}
	updated, err := s.MemberRepo.UpdateMember(ctx, m)
	if err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			return models.Member{}, models.NewNotFound("socio %d no encontrado", m.ID)
		}
		return models.Member{}, err
	}
	s.Audit.Record(ctx, "update", "member", m.ID, updated.FullName())
	return updated, nil
}

func (s *MemberService) SetMemberActive(ctx context.Context, id int, active bool) error {
	err := s.MemberRepo.SetActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			return models.NewNotFound("socio %d no encontrado", id)
		}
		return err
	}
	action := "deactivate"
	if active {
		action = "activate"
	}
	s.Audit.Record(ctx, action, "member", id, "")
	return nil
}

func (s *MemberService) DeleteMember(ctx context.Context, id int) (bool, error) {
	deleted, err := s.MemberRepo.SoftDeleteMember(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.Audit.Record(ctx, "delete", "member", id, "")
	}
	return deleted, nil
}

func (s *MemberService) RegisterDeviceToken(ctx context.Context, memberID int, token string) error {
	if strings.TrimSpace(token) == "" {
		return models.NewValidation("el token no puede ser vacío")
	}
	if _, err := s.MemberRepo.GetMemberByID(ctx, memberID); err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			return models.NewNotFound("socio %d no encontrado", memberID)
		}
		return err
	}
	return s.MemberRepo.AddDeviceToken(ctx, memberID, token)
}
