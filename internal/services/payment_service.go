package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
)

const statisticsCacheTTL = 60 * time.Second

type PaymentService struct {
	PaymentRepo    *repositories.PaymentRepository
	MembershipRepo *repositories.MembershipRepository
	MemberRepo     *repositories.MemberRepository
	MethodRepo     *repositories.PaymentMethodRepository
	UserRepo       *repositories.UserRepository
	Audit          *AuditService
	Notifier       *NotificationService
	Redis          *redis.Client
	Now            Clock
}

// RegisterPayment records money against a membership and returns the receipt.
// The no-overpayment check runs inside the insert transaction against a
// locked membership row; exact payoff is allowed, one cent over is not.
func (s *PaymentService) RegisterPayment(ctx context.Context, req models.RegisterPaymentRequest, processedByUserID int) (models.Receipt, error) {
	if !req.Amount.IsPositive() {
		return models.Receipt{}, models.NewValidation("el monto debe ser mayor a cero")
	}
	if _, err := s.MethodRepo.GetPaymentMethodByID(ctx, req.PaymentMethodID); err != nil {
		if errors.Is(err, models.ErrPaymentMethodNotFound) {
			return models.Receipt{}, models.NewNotFound("método de pago %d no encontrado", req.PaymentMethodID)
		}
		return models.Receipt{}, err
	}

	paidAt := nowOr(s.Now)
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	p := models.Payment{
		MembershipID:    req.MembershipID,
		PaymentMethodID: req.PaymentMethodID,
		Amount:          req.Amount,
		PaidAt:          paidAt,
	}
	if processedByUserID > 0 {
		p.ProcessedByUserID = &processedByUserID
	}

	id, err := s.PaymentRepo.CreatePayment(ctx, p)
	if err != nil {
		var exceeds *models.AmountExceedsBalanceError
		switch {
		case errors.Is(err, models.ErrMembershipNotFound):
			return models.Receipt{}, models.NewNotFound("membresía %d no encontrada", req.MembershipID)
		case errors.As(err, &exceeds):
			return models.Receipt{}, models.NewValidation("%s", exceeds.Error())
		}
		return models.Receipt{}, err
	}
	s.Audit.Record(ctx, "register", "payment", id, "$"+req.Amount.StringFixed(2))
	s.invalidateStatisticsCache(ctx)

	receipt, err := s.GetReceipt(ctx, id)
	if err != nil {
		return models.Receipt{}, err
	}
	if s.Notifier != nil {
		go s.Notifier.NotifyPaymentRegistered(context.WithoutCancel(ctx), receipt)
	}
	return receipt, nil
}

// GetReceipt builds the receipt for a payment. Every figure is recomputed at
// call time from the membership's current lines and non-voided payments, so a
// receipt regenerated after the membership changed reflects the current
// state, not the state at payment time.
func (s *PaymentService) GetReceipt(ctx context.Context, paymentID int) (models.Receipt, error) {
	payment, err := s.PaymentRepo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, models.ErrPaymentNotFound) {
			return models.Receipt{}, models.NewNotFound("pago %d no encontrado", paymentID)
		}
		return models.Receipt{}, err
	}
	membership, err := s.MembershipRepo.GetMembershipByID(ctx, payment.MembershipID)
	if err != nil {
		return models.Receipt{}, err
	}
	member, err := s.MemberRepo.GetMemberByID(ctx, membership.MemberID)
	if err != nil {
		return models.Receipt{}, err
	}
	lines, err := s.MembershipRepo.GetLines(ctx, membership.ID)
	if err != nil {
		return models.Receipt{}, err
	}
	payments, err := s.PaymentRepo.GetPaymentsForMembership(ctx, membership.ID)
	if err != nil {
		return models.Receipt{}, err
	}
	method, err := s.MethodRepo.GetPaymentMethodByID(ctx, payment.PaymentMethodID)
	if err != nil && !errors.Is(err, models.ErrPaymentMethodNotFound) {
		return models.Receipt{}, err
	}

	processedBy := "Sistema"
	if payment.ProcessedByUserID != nil {
		if user, err := s.UserRepo.GetUserByID(ctx, *payment.ProcessedByUserID); err == nil {
			processedBy = user.FullName
		}
	}

	var others []models.Payment
	for _, p := range payments {
		if p.ID != payment.ID {
			others = append(others, p)
		}
	}
	totals := computeTotals(lines, payments)
	totalsBefore := computeTotals(lines, others)

	items := make([]models.ReceiptItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.ReceiptItem{ActivityName: l.ActivityName, Price: l.PriceAtAttachment})
	}

	return models.Receipt{
		ReceiptNumber:   fmt.Sprintf("PAG-%06d-%d", payment.ID, payment.PaidAt.Year()),
		PaymentID:       payment.ID,
		MemberID:        member.ID,
		MemberNumber:    member.MemberNumber,
		MemberName:      member.FullName(),
		DNI:             member.DNI,
		Period:          membership.PeriodLabel(),
		TotalCharged:    totals.TotalCharged,
		TotalPaidBefore: totalsBefore.TotalPaid,
		Amount:          payment.Amount,
		TotalPaid:       totals.TotalPaid,
		NewBalance:      totals.Balance,
		IsSettled:       totals.IsSettled,
		PaymentMethod:   method.Name,
		ProcessedBy:     processedBy,
		PaidAt:          payment.PaidAt,
		Items:           items,
	}, nil
}

// VoidPayment soft-deletes the payment. Once voided it is permanently
// excluded from every total; voiding twice is a no-op, not an error.
func (s *PaymentService) VoidPayment(ctx context.Context, paymentID int) (bool, error) {
	voided, err := s.PaymentRepo.VoidPayment(ctx, paymentID)
	if err != nil {
		return false, err
	}
	if voided {
		s.Audit.Record(ctx, "void", "payment", paymentID, "")
		s.invalidateStatisticsCache(ctx)
	}
	return voided, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, int, error) {
	return s.PaymentRepo.ListPayments(ctx, f)
}

// GetStatistics aggregates collection figures. The response document is
// cached in Redis for a short TTL; membership balances themselves are never
// cached.
func (s *PaymentService) GetStatistics(ctx context.Context, from, to *time.Time) (models.PaymentStatistics, error) {
	key := statisticsCacheKey(from, to)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Bytes(); err == nil {
			var stats models.PaymentStatistics
			if err := json.Unmarshal(cached, &stats); err == nil {
				return stats, nil
			}
		}
	}
	stats, err := s.PaymentRepo.GetStatistics(ctx, from, to, nowOr(s.Now))
	if err != nil {
		return models.PaymentStatistics{}, err
	}
	if s.Redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.Redis.Set(ctx, key, data, statisticsCacheTTL).Err(); err != nil {
				log.Printf("payment statistics cache write failed: %v", err)
			}
		}
	}
	return stats, nil
}

func (s *PaymentService) invalidateStatisticsCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	iter := s.Redis.Scan(ctx, 0, "payments:stats:*", 100).Iterator()
	for iter.Next(ctx) {
		s.Redis.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("payment statistics cache invalidation failed: %v", err)
	}
}

func statisticsCacheKey(from, to *time.Time) string {
	f, t := "", ""
	if from != nil {
		f = from.Format("2006-01-02")
	}
	if to != nil {
		t = to.Format("2006-01-02")
	}
	return fmt.Sprintf("payments:stats:%s:%s", f, t)
}
