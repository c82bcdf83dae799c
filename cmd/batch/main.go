package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/config"
	bookingRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/booking"
	calendarRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/calendar"
	giftCardRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/giftcard"
	outboxRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/outbox"
	paymentRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/payment"
	sweepRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/sweep"
	bookingsService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings"
	calendarService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/calendar"
	eventsService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/events"
	giftCardsService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/giftcards"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/maintenance"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/mq"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/simpletxmanager"
)

const projectName = "smc-marketplace-booking-batch"

// jobResult итог одного обхода, уходит в output задачи Step Functions
type jobResult struct {
	Job       string `json:"job"`
	Processed int    `json:"processed"`
	Error     string `json:"error,omitempty"`
}

func main() {
	configPath := flag.String("config", "config.toml", "путь к config.toml")
	jobs := flag.String("jobs", strings.Join(maintenance.Jobs, ","), "обходы через запятую")
	timeout := flag.Duration("timeout", 5*time.Minute, "таймаут batch-процесса")
	taskToken := flag.String("task-token", os.Getenv("TASK_TOKEN"), "токен задачи Step Functions")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	// SQL обертка X-Ray пишет в лог вместо паники, если сегмента нет
	os.Setenv("AWS_XRAY_CONTEXT_MISSING", "LOG_ERROR")
	if cfg.Tracing.Enabled {
		if err := xray.Configure(xray.Config{ServiceVersion: "1.0.0"}); err != nil {
			log.Warn("Failed to configure X-Ray: %v", err)
		}
	}

	// Step Functions клиент нужен только при запуске задачей
	var sfnClient *sfn.Client
	if *taskToken != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatal("Failed to load AWS config: %v", err)
		}
		sfnClient = sfn.NewFromConfig(awsCfg)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if cfg.Tracing.Enabled {
		var seg *xray.Segment
		ctx, seg = xray.BeginSegment(ctx, projectName)
		defer seg.Close(nil)
		if err := seg.AddMetadata("jobs", *jobs); err != nil {
			log.Warn("Failed to add jobs metadata: %v", err)
		}
	}

	db, err := sweepRepo.Open(ctx, cfg.Database.DSN(), cfg.Database.MaxOpenConns)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	sweeper, closeBroker, err := buildSweeper(cfg, db, log)
	if err != nil {
		log.Fatal("Failed to build sweeper: %v", err)
	}
	defer closeBroker()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Warn("Received signal %v, cancelling", sig)
		cancel()
	}()

	results, failed := runJobs(ctx, sweeper, strings.Split(*jobs, ","), log)

	if sfnClient != nil {
		reportTask(sfnClient, *taskToken, results, failed, log)
	}
	if failed {
		log.Error("Batch process failed")
		os.Exit(1)
	}
	log.Info("Batch process completed successfully")
}

func buildSweeper(cfg *config.Config, db *sweepRepo.DB, log *logger.Logger) (*maintenance.Sweeper, func(), error) {
	txManager := simpletxmanager.NewTransactionManager(db.DB.DB)
	timeProvider := &bookingsService.RealTimeProvider{}

	bookingRepository := bookingRepo.NewRepository(db)
	paymentRepository := paymentRepo.NewRepository(db)

	closeBroker := func() {}
	var publisher eventsService.Publisher = eventsService.NewLogPublisher(log)
	if cfg.RabbitMQ.Enabled {
		broker, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		closeBroker = func() { _ = broker.Close() }
		publisher = eventsService.NewBrokerPublisher(broker)
	}

	dispatcher := eventsService.NewDispatcher(outboxRepo.NewRepository(db), publisher, txManager, timeProvider, nil, log)
	projector := calendarService.NewProjector(calendarRepo.NewRepository(db), timeProvider, log)
	giftCards := giftCardsService.NewService(giftCardRepo.NewRepository(db), timeProvider, log)
	lifecycle := bookingsService.NewLifecycle(
		bookingRepository,
		giftCards,
		dispatcher,
		projector,
		nil,
		cfg.Booking.MinModificationNoticeHours,
		log,
	)

	sweeper := maintenance.NewSweeper(
		sweepRepo.NewRepository(db),
		bookingRepository,
		paymentRepository,
		lifecycle,
		dispatcher,
		txManager,
		timeProvider,
		maintenance.Options{
			AwaitingPaymentTTL: time.Duration(cfg.Booking.AwaitingPaymentTTLMinutes) * time.Minute,
			ReminderLead:       time.Duration(cfg.Booking.ReminderLeadHours) * time.Hour,
			OutboxBatchSize:    cfg.Booking.OutboxBatchSize,
		},
		log,
	)
	return sweeper, closeBroker, nil
}

// runJobs запускает обходы по очереди; ошибка одного не останавливает остальные
func runJobs(ctx context.Context, sweeper *maintenance.Sweeper, jobs []string, log *logger.Logger) ([]jobResult, bool) {
	results := make([]jobResult, 0, len(jobs))
	failed := false

	for _, job := range jobs {
		job = strings.TrimSpace(job)
		if job == "" {
			continue
		}
		if ctx.Err() != nil {
			results = append(results, jobResult{Job: job, Error: ctx.Err().Error()})
			failed = true
			continue
		}

		processed, err := sweeper.Run(ctx, job)
		result := jobResult{Job: job, Processed: processed}
		if err != nil {
			log.Error("Job %s failed after %d records: %v", job, processed, err)
			result.Error = err.Error()
			failed = true
		} else {
			log.Info("Job %s processed %d records", job, processed)
		}
		results = append(results, result)
	}

	return results, failed
}

func reportTask(client *sfn.Client, taskToken string, results []jobResult, failed bool, log *logger.Logger) {
	// Контекст batch мог истечь, отчет отправляем отдельно
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := json.Marshal(results)
	if err != nil {
		log.Error("Failed to encode task output: %v", err)
		output = []byte("[]")
	}

	if failed {
		_, err = client.SendTaskFailure(ctx, &sfn.SendTaskFailureInput{
			TaskToken: aws.String(taskToken),
			Error:     aws.String("BatchFailed"),
			Cause:     aws.String(string(output)),
		})
	} else {
		_, err = client.SendTaskSuccess(ctx, &sfn.SendTaskSuccessInput{
			TaskToken: aws.String(taskToken),
			Output:    aws.String(string(output)),
		})
	}
	if err != nil {
		log.Error("Failed to report task result to Step Functions: %v", err)
	}
}
