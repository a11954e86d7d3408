package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/easyconsult/backend/cmd/mainconfig"
	"github.com/easyconsult/backend/internal/admin"
	"github.com/easyconsult/backend/internal/api/router"
	"github.com/easyconsult/backend/internal/appointments"
	"github.com/easyconsult/backend/internal/auth"
	appconfig "github.com/easyconsult/backend/internal/config"
	"github.com/easyconsult/backend/internal/doctors"
	"github.com/easyconsult/backend/internal/media"
	"github.com/easyconsult/backend/internal/notify"
	"github.com/easyconsult/backend/internal/observability/metrics"
	"github.com/easyconsult/backend/internal/otp"
	"github.com/easyconsult/backend/internal/payments"
	"github.com/easyconsult/backend/internal/users"
	"github.com/easyconsult/backend/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting easyconsult API server", "env", cfg.Env, "port", cfg.Port)

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Stores. Without table names the server runs entirely in memory, which
	// is only useful for local development.
	var (
		userRepo        users.Repository
		doctorRepo      doctors.Repository
		appointmentRepo appointments.Repository
	)
	if cfg.UsersTable != "" {
		dynamoClient := dynamodb.NewFromConfig(awsCfg)
		userRepo = users.NewDynamoRepository(dynamoClient, cfg.UsersTable, logger)
		doctorRepo = doctors.NewDynamoRepository(dynamoClient, cfg.DoctorsTable, cfg.SlotsTable, logger)
		appointmentRepo = appointments.NewDynamoRepository(dynamoClient, cfg.AppointmentsTable, logger)
	} else {
		logger.Warn("no DynamoDB tables configured, using in-memory stores")
		userRepo = users.NewInMemoryRepository()
		doctorRepo = doctors.NewInMemoryRepository()
		appointmentRepo = appointments.NewInMemoryRepository()
	}

	// Verification codes need Redis; without it the reset flows are off.
	var codes users.CodeStore
	if redisClient := mainconfig.BuildRedisClient(ctx, cfg, logger); redisClient != nil {
		codes = otp.NewStore(redisClient, cfg.OTPTTL, logger)
	} else {
		logger.Warn("redis not configured, password reset disabled")
	}

	// Mail pipeline: dispatcher -> queue -> worker -> sender.
	sender := notify.NewSender(cfg.EmailProvider, notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, sesv2.NewFromConfig(awsCfg), notify.SESConfig{
		FromEmail: cfg.SESFromEmail,
		FromName:  cfg.SESFromName,
	}, logger)

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	var mailQueue notify.Queue
	runWorkerInline := true
	if !cfg.UseMemoryMailQueue && cfg.MailQueueURL != "" {
		mailQueue = notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.MailQueueURL)
		// With SQS the mail worker runs as its own binary.
		runWorkerInline = false
	} else {
		mailQueue = notify.NewMemoryQueue(0)
	}
	dispatcher := notify.NewDispatcher(mailQueue, logger)
	if runWorkerInline {
		worker := notify.NewWorker(mailQueue, sender, cfg.MailWorkerCount, bookingMetrics, logger)
		go worker.Run(ctx)
	}

	var images *media.Store
	if cfg.MediaBucket != "" {
		images = media.NewStore(s3.NewFromConfig(awsCfg), cfg.MediaBucket, cfg.MediaBaseURL, logger)
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	var imageStore users.ImageStore
	var doctorImages doctors.ImageStore
	if images != nil {
		imageStore = images
		doctorImages = images
	}
	userSvc := users.NewService(userRepo, tokens, codes, dispatcher, imageStore, logger)
	doctorSvc := doctors.NewService(doctorRepo, tokens, doctorImages, logger)
	appointmentSvc := appointments.NewService(appointmentRepo, doctorRepo, userRepo, dispatcher, bookingMetrics, logger)

	var paymentsHandler *payments.Handler
	if gateway := payments.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret); gateway != nil {
		paymentsHandler = payments.NewHandler(payments.NewService(appointmentRepo, gateway, logger), logger)
	} else {
		logger.Warn("razorpay not configured, online payments disabled")
	}

	r := router.New(&router.Config{
		Logger:              logger,
		Verifier:            tokens,
		UsersHandler:        users.NewHandler(userSvc, logger),
		DoctorsHandler:      doctors.NewHandler(doctorSvc, logger),
		AppointmentsHandler: appointments.NewHandler(appointmentSvc, logger),
		PaymentsHandler:     paymentsHandler,
		AdminHandler: admin.NewHandler(cfg.AdminEmail, cfg.AdminPassword,
			tokens, doctorSvc, userSvc, appointmentSvc, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
