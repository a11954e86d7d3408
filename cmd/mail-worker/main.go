// The mail worker drains the SQS mail queue when the API runs with an
// external queue instead of the in-process one.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/easyconsult/backend/cmd/mainconfig"
	appconfig "github.com/easyconsult/backend/internal/config"
	"github.com/easyconsult/backend/internal/notify"
	"github.com/easyconsult/backend/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting easyconsult mail worker")

	if cfg.UseMemoryMailQueue || cfg.MailQueueURL == "" {
		logger.Error("mail worker requires an SQS queue; set MAIL_QUEUE_URL and USE_MEMORY_MAIL_QUEUE=false")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	sender := notify.NewSender(cfg.EmailProvider, notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, sesv2.NewFromConfig(awsCfg), notify.SESConfig{
		FromEmail: cfg.SESFromEmail,
		FromName:  cfg.SESFromName,
	}, logger)

	queue := notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.MailQueueURL)
	worker := notify.NewWorker(queue, sender, cfg.MailWorkerCount, nil, logger)

	worker.Run(ctx)
	logger.Info("mail worker stopped")
}
