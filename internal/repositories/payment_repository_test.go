package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"socioBack/internal/models"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, *PaymentRepository, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening stub database: %v", err)
	}
	repo := &PaymentRepository{DB: db}
	return mock, repo, func() { db.Close() }
}

func expectBalanceQueries(mock sqlmock.Sqlmock, membershipID int, charged, paid string) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM memberships")).
		WithArgs(membershipID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(membershipID))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(price_at_attachment), 0)")).
		WithArgs(membershipID).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(charged))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0)")).
		WithArgs(membershipID).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(paid))
}

func TestCreatePaymentRejectsOverpayment(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectBegin()
	expectBalanceQueries(mock, 5, "500.00", "200.00")
	mock.ExpectRollback()

	amount, _ := decimal.NewFromString("300.01")
	_, err := repo.CreatePayment(context.Background(), models.Payment{
		MembershipID:    5,
		PaymentMethodID: 1,
		Amount:          amount,
		PaidAt:          time.Now(),
	})

	var exceeds *models.AmountExceedsBalanceError
	if !errors.As(err, &exceeds) {
		t.Fatalf("expected AmountExceedsBalanceError, got %v", err)
	}
	if !exceeds.Balance.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected balance 300, got %s", exceeds.Balance)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreatePaymentAllowsExactPayoff(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectBegin()
	expectBalanceQueries(mock, 5, "500.00", "200.00")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	amount, _ := decimal.NewFromString("300.00")
	id, err := repo.CreatePayment(context.Background(), models.Payment{
		MembershipID:    5,
		PaymentMethodID: 1,
		Amount:          amount,
		PaidAt:          time.Now(),
	})
	if err != nil {
		t.Fatalf("exact payoff should be accepted: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected payment id 42, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreatePaymentMembershipMissing(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM memberships")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.CreatePayment(context.Background(), models.Payment{
		MembershipID: 99,
		Amount:       decimal.NewFromInt(10),
		PaidAt:       time.Now(),
	})
	if !errors.Is(err, models.ErrMembershipNotFound) {
		t.Fatalf("expected ErrMembershipNotFound, got %v", err)
	}
}

func TestVoidPaymentIdempotent(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE payments SET deleted_at")).
		WithArgs(sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE payments SET deleted_at")).
		WithArgs(sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	voided, err := repo.VoidPayment(context.Background(), 7)
	if err != nil || !voided {
		t.Fatalf("first void: expected true, got %v %v", voided, err)
	}
	voided, err = repo.VoidPayment(context.Background(), 7)
	if err != nil || voided {
		t.Fatalf("second void: expected false without error, got %v %v", voided, err)
	}
}
