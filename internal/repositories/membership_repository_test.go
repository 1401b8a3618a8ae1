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

func newMembershipMock(t *testing.T) (sqlmock.Sqlmock, *MembershipRepository, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening stub database: %v", err)
	}
	return mock, &MembershipRepository{DB: db}, func() { db.Close() }
}

func TestCreateMembershipRejectsDuplicatePeriod(t *testing.T) {
	mock, repo, closeDB := newMembershipMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM memberships")).
		WithArgs(3, 2025, 11).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.CreateMembership(context.Background(), models.Membership{
		MemberID:    3,
		PeriodYear:  2025,
		PeriodMonth: 11,
	}, nil)
	if !errors.Is(err, models.ErrDuplicatePeriod) {
		t.Fatalf("expected ErrDuplicatePeriod, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateMembershipInsertsLinesWithSnapshotPrice(t *testing.T) {
	mock, repo, closeDB := newMembershipMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM memberships")).
		WithArgs(3, 2025, 11).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO memberships")).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO membership_activities")).
		WithArgs(int64(10), 1, "150.00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO membership_activities")).
		WithArgs(int64(10), 2, "200.00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	price1, _ := decimal.NewFromString("150.00")
	price2, _ := decimal.NewFromString("200.00")
	id, err := repo.CreateMembership(context.Background(), models.Membership{
		MemberID:    3,
		PeriodYear:  2025,
		PeriodMonth: 11,
		PeriodStart: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
	}, []models.Activity{
		{ID: 1, Price: price1},
		{ID: 2, Price: price2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 10 {
		t.Fatalf("expected membership id 10, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignActivityLockedOncePaid(t *testing.T) {
	mock, repo, closeDB := newMembershipMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM memberships")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payments")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := repo.AssignActivity(context.Background(), 4, models.Activity{ID: 9, Price: decimal.NewFromInt(100)})
	if !errors.Is(err, models.ErrHasPayments) {
		t.Fatalf("expected ErrHasPayments, got %v", err)
	}
}

func TestRemoveActivityNotAssigned(t *testing.T) {
	mock, repo, closeDB := newMembershipMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM memberships")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payments")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM membership_activities")).
		WithArgs(4, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.RemoveActivity(context.Background(), 4, 9)
	if !errors.Is(err, models.ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned, got %v", err)
	}
}

func TestSoftDeleteMembershipBlockedByPayments(t *testing.T) {
	mock, repo, closeDB := newMembershipMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM memberships")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payments")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.SoftDeleteMembership(context.Background(), 4)
	if !errors.Is(err, models.ErrHasPayments) {
		t.Fatalf("expected ErrHasPayments, got %v", err)
	}
}

func TestGetTotalsDerivedFromRows(t *testing.T) {
	mock, repo, closeDB := newMembershipMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(price_at_attachment), 0)")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("350.00"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0)")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("350.00"))

	totals, err := repo.GetTotals(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", totals.Balance)
	}
	if !totals.IsSettled {
		t.Fatal("expected settled membership")
	}
}
