package main

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"socioBack/internal/config"
	"socioBack/internal/handlers"
	"socioBack/internal/models"
)

// newTestApp builds an application with empty handlers. Requests that clear
// the role gate fail body validation with 400 before any service is touched,
// so the gates can be exercised without a database.
func newTestApp(t *testing.T) *application {
	t.Helper()
	var cfg config.Config
	cfg.JWT.SigningKey = "test-signing-key"
	quiet := log.New(io.Discard, "", 0)
	return &application{
		errorLog:             quiet,
		infoLog:              quiet,
		cfg:                  cfg,
		feed:                 NewAttendanceFeed(),
		activityHandler:      &handlers.ActivityHandler{},
		memberHandler:        &handlers.MemberHandler{},
		membershipHandler:    &handlers.MembershipHandler{},
		paymentHandler:       &handlers.PaymentHandler{},
		attendanceHandler:    &handlers.AttendanceHandler{},
		paymentMethodHandler: &handlers.PaymentMethodHandler{},
		userHandler:          &handlers.UserHandler{},
		auditHandler:         &handlers.AuditHandler{},
		backupHandler:        &handlers.BackupHandler{},
	}
}

func tokenFor(t *testing.T, app *application, role string) string {
	t.Helper()
	token, err := app.generateAccessToken(1, role)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

func TestRoleGates(t *testing.T) {
	app := newTestApp(t)
	srv := app.routes()

	cases := []struct {
		name       string
		method     string
		path       string
		role       string
		wantStatus int
	}{
		{"create membership receptionist", http.MethodPost, "/memberships", models.RoleReceptionist, http.StatusForbidden},
		{"create membership admin", http.MethodPost, "/memberships", models.RoleAdmin, http.StatusBadRequest},
		{"list memberships receptionist", http.MethodGet, "/memberships", models.RoleReceptionist, http.StatusForbidden},
		{"replace activities receptionist", http.MethodPut, "/memberships/7", models.RoleReceptionist, http.StatusForbidden},
		{"replace activities admin", http.MethodPut, "/memberships/7", models.RoleAdmin, http.StatusBadRequest},
		{"assign activity receptionist", http.MethodPost, "/memberships/assign-activity", models.RoleReceptionist, http.StatusBadRequest},
		{"remove activity receptionist", http.MethodPost, "/memberships/remove-activity", models.RoleReceptionist, http.StatusBadRequest},
		{"register payment receptionist", http.MethodPost, "/payments", models.RoleReceptionist, http.StatusForbidden},
		{"register payment admin", http.MethodPost, "/payments", models.RoleAdmin, http.StatusBadRequest},
		{"receipt receptionist", http.MethodGet, "/payments/7/receipt", models.RoleReceptionist, http.StatusForbidden},
		{"void payment receptionist", http.MethodDelete, "/payments/7", models.RoleReceptionist, http.StatusForbidden},
		{"create user admin", http.MethodPost, "/users", models.RoleAdmin, http.StatusForbidden},
		{"create user superadmin", http.MethodPost, "/users", models.RoleSuperadmin, http.StatusBadRequest},
		{"attendance feed anonymous", http.MethodGet, "/ws/attendance", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.role != "" {
				req.Header.Set("Authorization", "Bearer "+tokenFor(t, app, tc.role))
			}
			rr := httptest.NewRecorder()
			srv.ServeHTTP(rr, req)
			if rr.Code != tc.wantStatus {
				t.Errorf("%s %s as %q: status = %d, want %d",
					tc.method, tc.path, tc.role, rr.Code, tc.wantStatus)
			}
		})
	}
}

// The attendance feed gate admits staff; the request then fails the websocket
// handshake, which proves the JWT check ran before the upgrade.
func TestAttendanceFeedRequiresStaffToken(t *testing.T) {
	app := newTestApp(t)
	srv := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/ws/attendance", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, app, models.RoleReceptionist))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d (failed handshake past the gate)", rr.Code, http.StatusBadRequest)
	}
}

func TestRefreshRouteIsMounted(t *testing.T) {
	app := newTestApp(t)
	srv := app.routes()

	req := httptest.NewRequest(http.MethodPost, "/users/refresh", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d (empty body rejected by the handler)", rr.Code, http.StatusBadRequest)
	}
}
