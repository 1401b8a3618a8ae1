package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"socioBack/internal/models"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	staffMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleReceptionist))
	adminMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleAdmin))
	superadminMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleSuperadmin))

	mux := pat.New()

	// Auth
	mux.Post("/users/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/users/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))
	mux.Post("/users/change_password", staffMiddleware.ThenFunc(app.userHandler.ChangePassword))

	// Users
	mux.Post("/users", superadminMiddleware.ThenFunc(app.userHandler.CreateUser))
	mux.Get("/users", adminMiddleware.ThenFunc(app.userHandler.GetUsers))
	mux.Get("/users/:id", adminMiddleware.ThenFunc(app.userHandler.GetUserByID))
	mux.Put("/users/:id", superadminMiddleware.ThenFunc(app.userHandler.UpdateUser))
	mux.Del("/users/:id", superadminMiddleware.ThenFunc(app.userHandler.DeleteUser))

	// Activities
	mux.Post("/activities", adminMiddleware.ThenFunc(app.activityHandler.CreateActivity))
	mux.Get("/activities", staffMiddleware.ThenFunc(app.activityHandler.GetActivities))
	mux.Get("/activities/:id", staffMiddleware.ThenFunc(app.activityHandler.GetActivityByID))
	mux.Put("/activities/:id", adminMiddleware.ThenFunc(app.activityHandler.UpdateActivity))
	mux.Del("/activities/:id", adminMiddleware.ThenFunc(app.activityHandler.DeleteActivity))

	// Members
	mux.Post("/members", staffMiddleware.ThenFunc(app.memberHandler.CreateMember))
	mux.Get("/members", staffMiddleware.ThenFunc(app.memberHandler.GetMembers))
	mux.Get("/members/:id", staffMiddleware.ThenFunc(app.memberHandler.GetMemberByID))
	mux.Put("/members/:id", staffMiddleware.ThenFunc(app.memberHandler.UpdateMember))
	mux.Put("/members/:id/active", adminMiddleware.ThenFunc(app.memberHandler.SetMemberActive))
	mux.Del("/members/:id", adminMiddleware.ThenFunc(app.memberHandler.DeleteMember))
	mux.Post("/members/:id/device_token", staffMiddleware.ThenFunc(app.memberHandler.RegisterDeviceToken))

	// Memberships. Receptionists only assign and remove activities; the
	// rest of the surface is reserved for admins.
	mux.Post("/memberships", adminMiddleware.ThenFunc(app.membershipHandler.CreateMembership))
	mux.Get("/memberships", adminMiddleware.ThenFunc(app.membershipHandler.GetMemberships))
	mux.Get("/memberships/:id", staffMiddleware.ThenFunc(app.membershipHandler.GetMembershipByID))
	mux.Get("/memberships/:id/totals", staffMiddleware.ThenFunc(app.membershipHandler.GetMembershipTotals))
	mux.Put("/memberships/:id", adminMiddleware.ThenFunc(app.membershipHandler.ReplaceActivities))
	mux.Post("/memberships/assign-activity", staffMiddleware.ThenFunc(app.membershipHandler.AssignActivity))
	mux.Post("/memberships/remove-activity", staffMiddleware.ThenFunc(app.membershipHandler.RemoveActivity))
	mux.Del("/memberships/:id", adminMiddleware.ThenFunc(app.membershipHandler.DeleteMembership))

	// Payments
	mux.Post("/payments", adminMiddleware.ThenFunc(app.paymentHandler.RegisterPayment))
	mux.Get("/payments", staffMiddleware.ThenFunc(app.paymentHandler.GetPayments))
	mux.Get("/payments/statistics", adminMiddleware.ThenFunc(app.paymentHandler.GetStatistics))
	mux.Get("/payments/:id/receipt", adminMiddleware.ThenFunc(app.paymentHandler.GetReceipt))
	mux.Del("/payments/:id", adminMiddleware.ThenFunc(app.paymentHandler.VoidPayment))

	// Payment methods
	mux.Post("/payment-methods", adminMiddleware.ThenFunc(app.paymentMethodHandler.CreatePaymentMethod))
	mux.Get("/payment-methods", staffMiddleware.ThenFunc(app.paymentMethodHandler.GetPaymentMethods))
	mux.Put("/payment-methods/:id", adminMiddleware.ThenFunc(app.paymentMethodHandler.UpdatePaymentMethod))
	mux.Del("/payment-methods/:id", adminMiddleware.ThenFunc(app.paymentMethodHandler.DeletePaymentMethod))

	// Attendance
	mux.Get("/attendance/verify/:dni", staffMiddleware.ThenFunc(app.attendanceHandler.VerifyEntry))
	mux.Post("/attendance/register/:dni", staffMiddleware.ThenFunc(app.attendanceHandler.RegisterEntry))
	mux.Get("/attendance", staffMiddleware.ThenFunc(app.attendanceHandler.GetAttendances))
	mux.Get("/ws/attendance", staffMiddleware.ThenFunc(app.AttendanceFeedHandler))

	// Audit and backup
	mux.Get("/audit", adminMiddleware.ThenFunc(app.auditHandler.GetAuditLogs))
	mux.Post("/backup", superadminMiddleware.ThenFunc(app.backupHandler.RunBackup))

	return mux
}
