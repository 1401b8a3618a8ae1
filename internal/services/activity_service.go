package services

import (
	"context"
	"errors"
	"unicode/utf8"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
)

type ActivityService struct {
	ActivityRepo *repositories.ActivityRepository
	Audit        *AuditService
}

func validateActivity(a models.Activity) error {
	// Limits count characters, not bytes; names are mostly Spanish.
	if n := utf8.RuneCountInString(a.Name); n < 3 || n > 100 {
		return models.NewValidation("el nombre debe tener entre 3 y 100 caracteres")
	}
	if utf8.RuneCountInString(a.Description) > 500 {
		return models.NewValidation("la descripción no puede superar los 500 caracteres")
	}
	if a.Price.IsNegative() {
		return models.NewValidation("el precio no puede ser negativo")
	}
	return nil
}

func (s *ActivityService) CreateActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	if err := validateActivity(a); err != nil {
		return models.Activity{}, err
	}
	exists, err := s.ActivityRepo.ExistsByName(ctx, a.Name, 0)
	if err != nil {
		return models.Activity{}, err
	}
	if exists {
		return models.Activity{}, models.NewConflict("Ya existe una actividad con este nombre")
	}
	created, err := s.ActivityRepo.CreateActivity(ctx, a)
	if err != nil {
		return models.Activity{}, err
	}
	s.Audit.Record(ctx, "create", "activity", created.ID, created.Name)
	return created, nil
}

func (s *ActivityService) GetActivity(ctx context.Context, id int) (models.Activity, error) {
	a, err := s.ActivityRepo.GetActivityByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrActivityNotFound) {
			return models.Activity{}, models.NewNotFound("actividad %d no encontrada", id)
		}
		return models.Activity{}, err
	}
	return a, nil
}

func (s *ActivityService) ListActivities(ctx context.Context) ([]models.Activity, error) {
	return s.ActivityRepo.ListActivities(ctx)
}

// UpdateActivity changes the catalog row. Price changes never touch the
// price-at-attachment snapshots on existing membership lines.
func (s *ActivityService) UpdateActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	if err := validateActivity(a); err != nil {
		return models.Activity{}, err
	}
	exists, err := s.ActivityRepo.ExistsByName(ctx, a.Name, a.ID)
	if err != nil {
		return models.Activity{}, err
	}
	if exists {
		return models.Activity{}, models.NewConflict("Ya existe una actividad con este nombre")
	}
	updated, err := s.ActivityRepo.UpdateActivity(ctx, a)
	if err != nil {
		if errors.Is(err, models.ErrActivityNotFound) {
			return models.Activity{}, models.NewNotFound("actividad %d no encontrada", a.ID)
		}
		return models.Activity{}, err
	}
	s.Audit.Record(ctx, "update", "activity", a.ID, a.Name)
	return updated, nil
}

// DeleteActivity soft-deletes the catalog row. Existing membership lines keep
// their captured prices; only catalog queries and new attachments exclude it.
func (s *ActivityService) DeleteActivity(ctx context.Context, id int) (bool, error) {
	deleted, err := s.ActivityRepo.SoftDeleteActivity(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.Audit.Record(ctx, "delete", "activity", id, "")
	}
	return deleted, nil
}
