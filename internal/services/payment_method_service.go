package services

import (
	"context"
	"errors"
	"strings"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
)

type PaymentMethodService struct {
	MethodRepo *repositories.PaymentMethodRepository
	Audit      *AuditService
}

func (s *PaymentMethodService) CreatePaymentMethod(ctx context.Context, name string) (models.PaymentMethod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.PaymentMethod{}, models.NewValidation("el nombre es obligatorio")
	}
	created, err := s.MethodRepo.CreatePaymentMethod(ctx, name)
	if err != nil {
		return models.PaymentMethod{}, err
	}
	s.Audit.Record(ctx, "create", "payment_method", created.ID, name)
	return created, nil
}

func (s *PaymentMethodService) ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	return s.MethodRepo.ListPaymentMethods(ctx)
}

func (s *PaymentMethodService) UpdatePaymentMethod(ctx context.Context, id int, name string) (models.PaymentMethod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.PaymentMethod{}, models.NewValidation("el nombre es obligatorio")
	}
	updated, err := s.MethodRepo.UpdatePaymentMethod(ctx, id, name)
	if err != nil {
		if errors.Is(err, models.ErrPaymentMethodNotFound) {
			return models.PaymentMethod{}, models.NewNotFound("método de pago %d no encontrado", id)
		}
		return models.PaymentMethod{}, err
	}
	s.Audit.Record(ctx, "update", "payment_method", id, name)
	return updated, nil
}

func (s *PaymentMethodService) DeletePaymentMethod(ctx context.Context, id int) (bool, error) {
	deleted, err := s.MethodRepo.SoftDeletePaymentMethod(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.Audit.Record(ctx, "delete", "payment_method", id, "")
	}
	return deleted, nil
}
