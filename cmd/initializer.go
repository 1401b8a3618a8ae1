package main

import (
	"database/sql"
	"log"

	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"

	"socioBack/internal/config"
	"socioBack/internal/handlers"
	"socioBack/internal/repositories"
	"socioBack/internal/services"
	"socioBack/utils"
)

type application struct {
	errorLog             *log.Logger
	infoLog              *log.Logger
	cfg                  config.Config
	db                   *sql.DB
	feed                 *AttendanceFeed
	userRepo             *repositories.UserRepository
	activityHandler      *handlers.ActivityHandler
	memberHandler        *handlers.MemberHandler
	membershipHandler    *handlers.MembershipHandler
	paymentHandler       *handlers.PaymentHandler
	attendanceHandler    *handlers.AttendanceHandler
	paymentMethodHandler *handlers.PaymentMethodHandler
	userHandler          *handlers.UserHandler
	auditHandler         *handlers.AuditHandler
	backupHandler        *handlers.BackupHandler
	backupService        *services.BackupService
}

func initializeApp(db *sql.DB, redisClient *redis.Client, fcmClient *messaging.Client, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	// Repositories
	activityRepo := repositories.ActivityRepository{DB: db}
	memberRepo := repositories.MemberRepository{DB: db}
	membershipRepo := repositories.MembershipRepository{DB: db}
	paymentRepo := repositories.PaymentRepository{DB: db}
	methodRepo := repositories.PaymentMethodRepository{DB: db}
	attendanceRepo := repositories.AttendanceRepository{DB: db}
	auditRepo := repositories.AuditRepository{DB: db}
	userRepo := repositories.UserRepository{DB: db}

	tokenManager, err := utils.NewManager(cfg.JWT.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	feed := NewAttendanceFeed()

	// Services
	auditService := &services.AuditService{AuditRepo: &auditRepo}
	notificationService := &services.NotificationService{Client: fcmClient, MemberRepo: &memberRepo}
	activityService := &services.ActivityService{ActivityRepo: &activityRepo, Audit: auditService}
	memberService := &services.MemberService{MemberRepo: &memberRepo, Audit: auditService}
	membershipService := &services.MembershipService{
		MembershipRepo: &membershipRepo,
		MemberRepo:     &memberRepo,
		ActivityRepo:   &activityRepo,
		Audit:          auditService,
	}
	paymentService := &services.PaymentService{
		PaymentRepo:    &paymentRepo,
		MembershipRepo: &membershipRepo,
		MemberRepo:     &memberRepo,
		MethodRepo:     &methodRepo,
		UserRepo:       &userRepo,
		Audit:          auditService,
		Notifier:       notificationService,
		Redis:          redisClient,
	}
	attendanceService := &services.AttendanceService{
		AttendanceRepo: &attendanceRepo,
		MemberRepo:     &memberRepo,
		MembershipRepo: &membershipRepo,
		Feed:           feed,
	}
	methodService := &services.PaymentMethodService{MethodRepo: &methodRepo, Audit: auditService}
	userService := &services.UserService{
		UserRepo:     &userRepo,
		TokenManager: tokenManager,
		SigningKey:   cfg.JWT.SigningKey,
		Audit:        auditService,
	}
	backupService := &services.BackupService{
		DatabaseName: cfg.Database.Name,
		DatabaseUser: cfg.Database.User,
		DatabasePass: cfg.Database.Pass,
		Storage: &utils.Storage{
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
		},
		Audit: auditService,
	}

	// Handlers
	activityHandler := &handlers.ActivityHandler{Service: activityService}
	memberHandler := &handlers.MemberHandler{Service: memberService}
	membershipHandler := &handlers.MembershipHandler{Service: membershipService}
	paymentHandler := &handlers.PaymentHandler{Service: paymentService}
	attendanceHandler := &handlers.AttendanceHandler{Service: attendanceService}
	methodHandler := &handlers.PaymentMethodHandler{Service: methodService}
	userHandler := &handlers.UserHandler{Service: userService}
	auditHandler := &handlers.AuditHandler{Service: auditService}
	backupHandler := &handlers.BackupHandler{Service: backupService}

	return &application{
		errorLog:             errorLog,
		infoLog:              infoLog,
		cfg:                  cfg,
		db:                   db,
		feed:                 feed,
		userRepo:             &userRepo,
		activityHandler:      activityHandler,
		memberHandler:        memberHandler,
		membershipHandler:    membershipHandler,
		paymentHandler:       paymentHandler,
		attendanceHandler:    attendanceHandler,
		paymentMethodHandler: methodHandler,
		userHandler:          userHandler,
		auditHandler:         auditHandler,
		backupHandler:        backupHandler,
		backupService:        backupService,
	}
}
