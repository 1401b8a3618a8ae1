package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dgrijalva/jwt-go"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
	"socioBack/utils"
)

var sessionCols = []string{"id", "user_id", "role", "refresh_token", "expires_at", "created_at"}

func newUserService(t *testing.T) (sqlmock.Sqlmock, *UserService, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening stub database: %v", err)
	}
	manager, err := utils.NewManager("test-signing-key")
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	svc := &UserService{
		UserRepo:     &repositories.UserRepository{DB: db},
		TokenManager: manager,
		SigningKey:   "test-signing-key",
	}
	return mock, svc, func() { db.Close() }
}

func TestRefreshIssuesNewTokenPair(t *testing.T) {
	mock, svc, closeDB := newUserService(t)
	defer closeDB()

	expires := time.Now().Add(time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE refresh_token = ?")).
		WithArgs("old-token").
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(5, 3, models.RoleReceptionist, "old-token", expires, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE user_id = ?")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WillReturnResult(sqlmock.NewResult(6, 1))

	tokens, err := svc.Refresh(context.Background(), "old-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens.RefreshToken == "" || tokens.RefreshToken == "old-token" {
		t.Fatalf("refresh token was not rotated: %q", tokens.RefreshToken)
	}

	claims := &models.Claims{}
	_, err = jwt.ParseWithClaims(tokens.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-signing-key"), nil
	})
	if err != nil {
		t.Fatalf("parsing access token: %v", err)
	}
	if claims.UserID != 3 || claims.Role != models.RoleReceptionist {
		t.Errorf("claims = (%d, %s), want (3, %s)", claims.UserID, claims.Role, models.RoleReceptionist)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRefreshRejectsExpiredSession(t *testing.T) {
	mock, svc, closeDB := newUserService(t)
	defer closeDB()

	expired := time.Now().Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE refresh_token = ?")).
		WithArgs("stale").
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(5, 3, models.RoleAdmin, "stale", expired, time.Now()))

	_, err := svc.Refresh(context.Background(), "stale")
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	mock, svc, closeDB := newUserService(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE refresh_token = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(sessionCols))

	_, err := svc.Refresh(context.Background(), "missing")
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRefreshRequiresToken(t *testing.T) {
	_, svc, closeDB := newUserService(t)
	defer closeDB()

	_, err := svc.Refresh(context.Background(), "")
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
