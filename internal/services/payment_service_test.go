package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
)

var paymentCols = []string{"id", "membership_id", "payment_method_id", "processed_by_user_id",
	"amount", "paid_at", "created_at", "updated_at"}

func newPaymentService(t *testing.T) (sqlmock.Sqlmock, *PaymentService, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening stub database: %v", err)
	}
	svc := &PaymentService{
		PaymentRepo:    &repositories.PaymentRepository{DB: db},
		MembershipRepo: &repositories.MembershipRepository{DB: db},
		MemberRepo:     &repositories.MemberRepository{DB: db},
		MethodRepo:     &repositories.PaymentMethodRepository{DB: db},
		UserRepo:       &repositories.UserRepository{DB: db},
		Now:            func() time.Time { return time.Date(2025, 11, 15, 10, 0, 0, 0, time.UTC) },
	}
	return mock, svc, func() { db.Close() }
}

func expectReceiptQueries(mock sqlmock.Sqlmock, processedBy any) {
	paidAt := time.Date(2025, 11, 10, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE id = ?")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(paymentCols).
			AddRow(3, 20, 1, processedBy, "100.00", paidAt, time.Now(), nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM memberships WHERE id = ?")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow(20, 1, 2025, 11,
				time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
				time.Now(), nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM members WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(memberCols).
			AddRow(1, 1042, "Ana", "García", "30111222", nil, nil, nil, true, time.Now(), nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM membership_activities ma")).
		WithArgs(20).
		WillReturnRows(lineRows().
			AddRow(20, 1, "Natación", "200.00", time.Now()).
			AddRow(20, 2, "Yoga", "150.00", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE membership_id = ?")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows(paymentCols).
			AddRow(2, 20, 1, nil, "50.00", paidAt.AddDate(0, 0, -3), time.Now(), nil).
			AddRow(3, 20, 1, processedBy, "100.00", paidAt, time.Now(), nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM payment_methods")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(1, "Efectivo", time.Now(), nil))
}

func TestGetReceiptArithmetic(t *testing.T) {
	mock, svc, closeDB := newPaymentService(t)
	defer closeDB()

	expectReceiptQueries(mock, 5)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "full_name", "role", "created_at", "updated_at"}).
			AddRow(5, "maria", "x", "María López", "admin", time.Now(), nil))

	receipt, err := svc.GetReceipt(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receipt.ReceiptNumber != "PAG-000003-2025" {
		t.Fatalf("unexpected receipt number %q", receipt.ReceiptNumber)
	}
	if receipt.Period != "2025-11" {
		t.Fatalf("unexpected period %q", receipt.Period)
	}
	if !receipt.TotalCharged.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("expected total charged 350, got %s", receipt.TotalCharged)
	}
	if !receipt.TotalPaidBefore.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected 50 paid before this payment, got %s", receipt.TotalPaidBefore)
	}
	if !receipt.TotalPaid.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected total paid 150, got %s", receipt.TotalPaid)
	}
	if !receipt.NewBalance.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected new balance 200, got %s", receipt.NewBalance)
	}
	if receipt.IsSettled {
		t.Fatal("membership with balance must not be settled")
	}
	if receipt.ProcessedBy != "María López" {
		t.Fatalf("expected processor name, got %q", receipt.ProcessedBy)
	}
	if receipt.PaymentMethod != "Efectivo" {
		t.Fatalf("expected method name, got %q", receipt.PaymentMethod)
	}
	if len(receipt.Items) != 2 {
		t.Fatalf("expected two line items, got %d", len(receipt.Items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetReceiptDefaultsProcessorToSistema(t *testing.T) {
	mock, svc, closeDB := newPaymentService(t)
	defer closeDB()

	expectReceiptQueries(mock, nil)

	receipt, err := svc.GetReceipt(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.ProcessedBy != "Sistema" {
		t.Fatalf("expected Sistema, got %q", receipt.ProcessedBy)
	}
}

func TestRegisterPaymentRejectsNonPositiveAmount(t *testing.T) {
	_, svc, closeDB := newPaymentService(t)
	defer closeDB()

	for _, amount := range []string{"0", "-10.00"} {
		_, err := svc.RegisterPayment(context.Background(), models.RegisterPaymentRequest{
			MembershipID:    20,
			PaymentMethodID: 1,
			Amount:          dec(amount),
		}, 0)
		var validation *models.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("amount %s: expected ValidationError, got %v", amount, err)
		}
	}
}

func TestRegisterPaymentMapsOverpaymentToValidation(t *testing.T) {
	mock, svc, closeDB := newPaymentService(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM payment_methods")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(1, "Efectivo", time.Now(), nil))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM memberships")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(20))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(price_at_attachment), 0)")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("350.00"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0)")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("100.00"))
	mock.ExpectRollback()

	_, err := svc.RegisterPayment(context.Background(), models.RegisterPaymentRequest{
		MembershipID:    20,
		PaymentMethodID: 1,
		Amount:          dec("250.01"),
	}, 0)
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Message != "El monto excede el saldo pendiente de $250.00" {
		t.Fatalf("unexpected message %q", validation.Message)
	}
}
