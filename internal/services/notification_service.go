package services

import (
	"context"
	"log"

	"firebase.google.com/go/messaging"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
)

// NotificationService pushes receipt summaries to a member's registered
// devices. Push failures are logged only; a payment never fails because a
// notification could not be delivered.
type NotificationService struct {
	Client     *messaging.Client
	MemberRepo *repositories.MemberRepository
}

func (s *NotificationService) NotifyPaymentRegistered(ctx context.Context, receipt models.Receipt) {
	if s == nil || s.Client == nil {
		return
	}
	tokens, err := s.MemberRepo.GetDeviceTokens(ctx, receipt.MemberID)
	if err != nil {
		log.Printf("payment notification: loading device tokens for member %d: %v", receipt.MemberID, err)
		return
	}
	body := "Pago de $" + receipt.Amount.StringFixed(2) + " registrado. Saldo: $" + receipt.NewBalance.StringFixed(2)
	for _, token := range tokens {
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: "Pago registrado",
				Body:  body,
			},
			Data: map[string]string{
				"receipt_number": receipt.ReceiptNumber,
				"period":         receipt.Period,
			},
		}
		if _, err := s.Client.Send(ctx, msg); err != nil {
			log.Printf("payment notification to member %d failed: %v", receipt.MemberID, err)
		}
	}
}
