package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
)

var memberCols = []string{"id", "member_number", "first_name", "last_name", "dni",
	"email", "phone", "birth_date", "active", "created_at", "updated_at"}

var membershipCols = []string{"id", "member_id", "period_year", "period_month",
	"period_start", "period_end", "created_at", "updated_at"}

func newAttendanceService(t *testing.T) (sqlmock.Sqlmock, *AttendanceService, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening stub database: %v", err)
	}
	svc := &AttendanceService{
		AttendanceRepo: &repositories.AttendanceRepository{DB: db},
		MemberRepo:     &repositories.MemberRepository{DB: db},
		MembershipRepo: &repositories.MembershipRepository{DB: db},
		Now:            func() time.Time { return time.Date(2025, 11, 15, 10, 0, 0, 0, time.UTC) },
	}
	return mock, svc, func() { db.Close() }
}

func expectMemberByDNI(mock sqlmock.Sqlmock, dni string, active bool) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM members")).
		WithArgs(dni).
		WillReturnRows(sqlmock.NewRows(memberCols).
			AddRow(1, 1042, "Ana", "García", dni, nil, nil, nil, active, time.Now(), nil))
}

func expectActiveMembership(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM memberships")).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow(20, 1, 2025, 11,
				time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
				time.Now(), nil))
}

func expectLines(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM membership_activities ma")).
		WithArgs(20).
		WillReturnRows(rows)
}

func lineRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"membership_id", "activity_id", "name", "price_at_attachment", "created_at"})
}

func expectTotals(mock sqlmock.Sqlmock, charged, paid string) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(price_at_attachment), 0)")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(charged))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0)")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(paid))
}

func TestCheckStatusMemberNotFound(t *testing.T) {
	mock, svc, closeDB := newAttendanceService(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM members")).
		WithArgs("99999999").
		WillReturnRows(sqlmock.NewRows(memberCols))

	_, err := svc.CheckStatus(context.Background(), "99999999")
	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCheckStatusInactiveMember(t *testing.T) {
	mock, svc, closeDB := newAttendanceService(t)
	defer closeDB()

	expectMemberByDNI(mock, "30111222", false)

	decision, err := svc.CheckStatus(context.Background(), "30111222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed {
		t.Fatal("inactive member must be denied")
	}
	if decision.Status != models.EntryStatusInactive {
		t.Fatalf("expected status %q, got %q", models.EntryStatusInactive, decision.Status)
	}
	if decision.Message != "El socio se encuentra inactivo" {
		t.Fatalf("unexpected message %q", decision.Message)
	}
}

func TestCheckStatusNoMembership(t *testing.T) {
	mock, svc, closeDB := newAttendanceService(t)
	defer closeDB()

	expectMemberByDNI(mock, "30111222", true)
	mock.ExpectQuery(regexp.QuoteMeta("FROM memberships")).
		WillReturnRows(sqlmock.NewRows(membershipCols))

	decision, err := svc.CheckStatus(context.Background(), "30111222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed || decision.Status != models.EntryStatusNoMembership {
		t.Fatalf("expected denial with %q, got %+v", models.EntryStatusNoMembership, decision)
	}
}

func TestCheckStatusBalanceDue(t *testing.T) {
	mock, svc, closeDB := newAttendanceService(t)
	defer closeDB()

	expectMemberByDNI(mock, "30111222", true)
	expectActiveMembership(mock)
	expectLines(mock, lineRows().AddRow(20, 1, "Natación", "350.00", time.Now()))
	expectTotals(mock, "350.00", "100.00")

	decision, err := svc.CheckStatus(context.Background(), "30111222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed || decision.Status != models.EntryStatusBalanceDue {
		t.Fatalf("expected denial with %q, got %+v", models.EntryStatusBalanceDue, decision)
	}
	if decision.Message != "La membresía tiene un saldo pendiente de $250.00" {
		t.Fatalf("unexpected message %q", decision.Message)
	}
	if decision.Balance == nil || decision.Balance.StringFixed(2) != "250.00" {
		t.Fatalf("expected balance 250.00 in decision, got %v", decision.Balance)
	}
}

func TestCheckStatusUpToDate(t *testing.T) {
	mock, svc, closeDB := newAttendanceService(t)
	defer closeDB()

	expectMemberByDNI(mock, "30111222", true)
	expectActiveMembership(mock)
	expectLines(mock, lineRows().
		AddRow(20, 1, "Natación", "200.00", time.Now()).
		AddRow(20, 2, "Yoga", "150.00", time.Now()))
	expectTotals(mock, "350.00", "350.00")

	decision, err := svc.CheckStatus(context.Background(), "30111222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed || decision.Status != models.EntryStatusUpToDate {
		t.Fatalf("expected admission, got %+v", decision)
	}
	if decision.ValidUntil == nil || !decision.ValidUntil.Equal(time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected validity through period end, got %v", decision.ValidUntil)
	}
	if len(decision.Activities) != 2 || decision.Activities[0] != "Natación" {
		t.Fatalf("expected activity names in decision, got %v", decision.Activities)
	}
}

type feedSpy struct {
	records []models.AttendanceRecord
}

func (f *feedSpy) BroadcastEntry(rec models.AttendanceRecord) {
	f.records = append(f.records, rec)
}

func TestRegisterEntryDeniedLeavesNoRecord(t *testing.T) {
	mock, svc, closeDB := newAttendanceService(t)
	defer closeDB()
	spy := &feedSpy{}
	svc.Feed = spy

	expectMemberByDNI(mock, "30111222", false)

	_, err := svc.RegisterEntry(context.Background(), "30111222")
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(spy.records) != 0 {
		t.Fatal("denied entry must not reach the feed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database access: %v", err)
	}
}

func TestRegisterEntryGrantedBroadcasts(t *testing.T) {
	mock, svc, closeDB := newAttendanceService(t)
	defer closeDB()
	spy := &feedSpy{}
	svc.Feed = spy

	expectMemberByDNI(mock, "30111222", true)
	expectActiveMembership(mock)
	expectLines(mock, lineRows().AddRow(20, 1, "Yoga", "150.00", time.Now()))
	expectTotals(mock, "150.00", "150.00")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendances")).
		WillReturnResult(sqlmock.NewResult(77, 1))

	rec, err := svc.RegisterEntry(context.Background(), "30111222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 77 || rec.MemberID != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if len(spy.records) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(spy.records))
	}
}
