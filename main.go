package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meinhoongagan/health-companion/auth"
	"github.com/meinhoongagan/health-companion/config"
	"github.com/meinhoongagan/health-companion/controllers"
	"github.com/meinhoongagan/health-companion/cron"
	"github.com/meinhoongagan/health-companion/db"
	"github.com/meinhoongagan/health-companion/logger"
	"github.com/meinhoongagan/health-companion/middleware"
	"github.com/meinhoongagan/health-companion/redis"
	"github.com/meinhoongagan/health-companion/routes"
	"github.com/meinhoongagan/health-companion/services"
	"github.com/meinhoongagan/health-companion/sms"
	"github.com/meinhoongagan/health-companion/store"
	"github.com/meinhoongagan/health-companion/utils"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "health-companion")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.UsesDefaultSecret() {
		zl.Warn("JWT_SECRET is not set; using the built-in default secret")
	}

	database, err := db.Init(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(database, zl); err != nil {
			zl.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	users := store.NewGormUserStore(database)
	quizzes := store.NewGormQuizStore(database)
	contacts := store.NewGormContactStore(database)

	var denylist auth.Denylist = auth.NopDenylist{}
	if cfg.Redis.Addr != "" {
		rc, err := redis.NewClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zl.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rc.Close()
		denylist = redis.NewDenylist(rc)
		zl.Info("token denylist enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var sender sms.Sender = sms.NewLogSender(zl)
	if cfg.SMS.GatewayURL != "" {
		sender = sms.NewGatewaySender(cfg.SMS.GatewayURL, cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.From, zl)
	}

	var mailer utils.Mailer = utils.NopMailer{}
	if cfg.SMTP.Host != "" {
		mailer = utils.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass)
	}

	var uploader utils.AvatarUploader = utils.DisabledUploader{}
	if cfg.Cloudinary.CloudName != "" {
		cu, err := utils.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.UploadPreset)
		if err != nil {
			zl.Fatal("failed to configure cloudinary", zap.Error(err))
		}
		uploader = cu
	}

	scheduler, err := cron.StartCronJobs(cfg.OTPSweepSchedule, users, zl)
	if err != nil {
		zl.Fatal("failed to start cron jobs", zap.Error(err))
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expire)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	otp := services.NewOTPIssuer(sender, cfg.OTPTTL, zl)

	authSvc := services.NewAuthService(users, hasher, tokens, denylist, otp, zl)
	userSvc := services.NewUserService(users, quizzes, hasher, uploader, zl)
	quizSvc := services.NewQuizService(quizzes, zl)
	contactSvc := services.NewContactService(contacts, users, mailer, cfg.SMTP.AdminEmail, zl)

	app := routes.NewApp(routes.Deps{
		Gate:        middleware.NewGate(tokens, users, denylist, zl),
		Auth:        controllers.NewAuthController(authSvc, zl),
		User:        controllers.NewUserController(userSvc, zl),
		Quiz:        controllers.NewQuizController(quizSvc, zl),
		Contact:     controllers.NewContactController(contactSvc, zl),
		Logger:      zl,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	go func() {
		zl.Info("server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := app.Listen(cfg.HTTP.Addr); err != nil {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error("shutdown failed", zap.Error(err))
	}
}
