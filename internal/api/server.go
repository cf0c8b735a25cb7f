package api

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/meowls-gov/visa-portal/config"
	"github.com/meowls-gov/visa-portal/infra/queue"
	"github.com/meowls-gov/visa-portal/internal/api/rest/handlers"
	"github.com/meowls-gov/visa-portal/internal/api/rest/middleware"
	"github.com/meowls-gov/visa-portal/internal/clients/identity"
	"github.com/meowls-gov/visa-portal/internal/domain"
	"github.com/meowls-gov/visa-portal/internal/helper"
	"github.com/meowls-gov/visa-portal/internal/helper/utils"
	"github.com/meowls-gov/visa-portal/internal/mailer"
	"github.com/meowls-gov/visa-portal/internal/metrics"
	"github.com/meowls-gov/visa-portal/internal/repository"
	"github.com/meowls-gov/visa-portal/internal/services"
	"github.com/meowls-gov/visa-portal/pkg/cloudinary"
)

func StartServer(cfg config.Config) {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	// ---------- MIGRATION + SEED (guarded by advisory lock) ----------
	const migrateLockID int64 = 20260415

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.VisaApplication{},
		&domain.ApplicationDocument{},
		&domain.AuditLog{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	authHelper := helper.SetupAuth(cfg.AccessSecret)
	seedAdmin(db, cfg, authHelper)

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)

	cld, err := cloudinary.New()
	if err != nil {
		log.Fatalf("cloudinary init error: %v", err)
	}
	up := cloudinary.NewCloudinaryUploader(cld)

	smtpMailer, err := mailer.New(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUsername,
		cfg.SMTPPassword,
		cfg.MailFrom,
		cfg.MailFromName,
	)
	if err != nil {
		log.Fatalf("mailer init error: %v", err)
	}

	identityClient := identity.New(cfg.IdentityURL)

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// expired sessions are also dropped lazily on auth; the sweep keeps the
	// table from accumulating abandoned rows
	go func() {
		for {
			if err := sessionRepo.DeleteExpired(time.Now()); err != nil {
				log.Printf("session cleanup error: %v", err)
			}
			time.Sleep(time.Hour)
		}
	}()

	// ---------- Services ----------
	authSvc := services.NewAuthService(userRepo, sessionRepo, identityClient, authHelper)
	applicationSvc := services.NewApplicationService(applicationRepo, up, kafkaProducer)
	reviewSvc := services.NewReviewService(applicationRepo, smtpMailer, kafkaProducer)
	auditSvc := services.NewAuditService(auditRepo)

	// ---------- Audit consumer ----------
	if cfg.KafkaGroupID != "" {
		consumer := queue.NewKafkaConsumer(
			cfg.KafkaBroker,
			cfg.KafkaTopic,
			cfg.KafkaGroupID,
			cfg.KafkaUsername,
			cfg.KafkaPassword,
			auditSvc,
		)
		go consumer.Listen(context.Background())
		log.Println("audit consumer started")
	}

	// ---------- Metrics ----------
	if cfg.MetricsAddr != "" {
		go metrics.Serve(cfg.MetricsAddr)
	}

	// ---------- Handlers ----------
	authRequired := middleware.AuthRequired(authSvc)
	adminOnly := middleware.AdminOnly()

	apiGroup := app.Group("/api")
	handlers.NewAuthHandler(authSvc).SetupRoutes(apiGroup, authRequired)
	handlers.NewApplicationHandler(applicationSvc).SetupRoutes(apiGroup, authRequired)
	handlers.NewAdminHandler(reviewSvc, auditSvc).SetupRoutes(apiGroup, authRequired, adminOnly)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}

// seedAdmin makes sure the configured reviewer account exists; reruns are
// no-ops.
func seedAdmin(db *gorm.DB, cfg config.Config, auth helper.Auth) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("admin seed skipped: ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return
	}

	userRepo := repository.NewUserRepository(db)
	if existing, err := userRepo.FindUserByEmail(cfg.AdminEmail); err == nil && existing.ID != 0 {
		return
	}

	hashed, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Printf("admin seed error: %v", err)
		return
	}

	admin := &domain.User{
		UserID:       utils.NewUserID(),
		Email:        cfg.AdminEmail,
		PasswordHash: hashed,
		Name:         cfg.AdminName,
		Role:         domain.RoleAdmin,
	}
	if _, err := userRepo.CreateUser(admin); err != nil {
		log.Printf("admin seed error: %v", err)
		return
	}
	log.Printf("admin account seeded: %s", cfg.AdminEmail)
}
