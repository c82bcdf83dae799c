package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/cancel_booking"
	claimBookingsHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/claim_bookings"
	createBookingHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_booking"
	getCalendarHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_calendar"
	getUserBookingsHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_user_bookings"
	getVendorAvailabilityHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_vendor_availability"
	getVendorBookingsHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_vendor_bookings"
	getVendorStatsHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_vendor_stats"
	manageOverridesHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/manage_overrides"
	paystackWebhookHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/paystack_webhook"
	rescheduleBookingHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/reschedule_booking"
	transitionBookingHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/transition_booking"
	updateVendorAvailabilityHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/update_vendor_availability"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/config"
	availabilityRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/booking"
	calendarRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/calendar"
	giftCardRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/giftcard"
	outboxRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/outbox"
	paymentRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/payment"
	seatRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/seat"
	serviceRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/service"
	supplyOrderRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/supplyorder"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/integrations/paystack"
	allocatorService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/allocator"
	availabilityService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings"
	calendarService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/calendar"
	eventsService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/events"
	giftCardsService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/giftcards"
	createBookingUC "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/get_available_slots"
	reconcilePaymentUC "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/reconcile_payment"
	rescheduleBookingUC "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/metrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/mq"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/simpletxmanager"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/tracing"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/txmanager"
)

const (
	serviceName    = "smc-marketplace-booking"
	serviceVersion = "1.0.0"
)

func main() {
	// Локальный .env необязателен
	_ = godotenv.Load()

	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-MarketplaceBooking...")

	// Трассировка OpenTelemetry (если включена)
	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Init(context.Background(), serviceName, serviceVersion,
			cfg.Tracing.Environment, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatal("Failed to initialize tracing: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				log.Error("Failed to flush traces: %v", err)
			}
		}()
		log.Info("Tracing enabled, exporting to %s", cfg.Tracing.Endpoint)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Репозитории работают с обёрткой метрик или с *sql.DB напрямую
	var (
		executor  dbmetrics.DBExecutor
		txManager *txmanager.Manager
	)
	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		executor = wrappedDB
		txManager = txmanager.NewTransactionManager(wrappedDB)
		log.Info("Database metrics collection started")
	} else {
		executor = db
		txManager = simpletxmanager.NewTransactionManager(db)
	}

	catalogRepository := serviceRepo.NewRepository(executor)
	availabilityRepository := availabilityRepo.NewRepository(executor)
	seatRepository := seatRepo.NewRepository(executor)
	bookingRepository := bookingRepo.NewRepository(executor)
	paymentRepository := paymentRepo.NewRepository(executor)
	calendarRepository := calendarRepo.NewRepository(executor)
	outboxRepository := outboxRepo.NewRepository(executor)
	giftCardRepository := giftCardRepo.NewRepository(executor)
	supplyOrderRepository := supplyOrderRepo.NewRepository(executor)

	// Публикация событий: RabbitMQ или лог
	var publisher eventsService.Publisher = eventsService.NewLogPublisher(log)
	if cfg.RabbitMQ.Enabled {
		broker, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer broker.Close()
		publisher = eventsService.NewBrokerPublisher(broker)
		log.Info("Publishing booking events to exchange %s", cfg.RabbitMQ.Exchange)
	}

	// Интеграция с Paystack
	paystackClient := paystack.NewClient(
		cfg.Paystack.BaseURL,
		cfg.Paystack.SecretKey,
		cfg.Paystack.CallbackURL,
		time.Duration(cfg.Paystack.Timeout)*time.Second,
		log,
	)
	paystackVerifier := paystack.NewVerifier(cfg.Paystack.SecretKey)
	if !paystackClient.Enabled() {
		log.Warn("Paystack secret key is not configured: webhooks will be rejected")
	}

	// Инициализируем сервисы
	timeProvider := &bookingsService.RealTimeProvider{}
	dispatcher := eventsService.NewDispatcher(outboxRepository, publisher, txManager, timeProvider, metricsCollector, log)
	projector := calendarService.NewProjector(calendarRepository, timeProvider, log)
	giftCardSvc := giftCardsService.NewService(giftCardRepository, timeProvider, log)
	lifecycle := bookingsService.NewLifecycle(
		bookingRepository,
		giftCardSvc,
		dispatcher,
		projector,
		metricsCollector,
		cfg.Booking.MinModificationNoticeHours,
		log,
	)
	allocator := allocatorService.NewService(bookingRepository, seatRepository, log)

	bookingSvc := bookingsService.NewService(
		bookingRepository,
		catalogRepository,
		paymentRepository,
		lifecycle,
		projector,
		txManager,
		timeProvider,
		log,
	)
	availabilitySvc := availabilityService.NewService(
		availabilityRepository,
		catalogRepository,
		txManager,
		log,
	)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		catalogRepository,
		availabilityRepository,
		timeProvider,
		cfg.Booking.DefaultSlotDays,
		cfg.Booking.MaxSlotDays,
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		catalogRepository,
		getAvailableSlotsUseCase,
		allocator,
		bookingRepository,
		paymentRepository,
		giftCardSvc,
		lifecycle,
		paystackClient,
		txManager,
		timeProvider,
		metricsCollector,
		createBookingUC.Options{
			MarkupBps:          cfg.Booking.PlatformMarkupBps,
			Currency:           cfg.Booking.Currency,
			PaystackPublicKey:  cfg.Paystack.PublicKey,
			InitializeCheckout: cfg.Paystack.InitializeCheckout,
		},
		log,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		getAvailableSlotsUseCase,
		allocator,
		lifecycle,
		txManager,
		timeProvider,
		log,
	)

	reconcilePaymentUseCase := reconcilePaymentUC.NewUseCase(
		paystackVerifier,
		paymentRepository,
		bookingRepository,
		supplyOrderRepository,
		giftCardSvc,
		lifecycle,
		txManager,
		timeProvider,
		metricsCollector,
		cfg.Booking.Currency,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	paystackWebhook := paystackWebhookHandler.NewHandler(reconcilePaymentUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	transitionBooking := transitionBookingHandler.NewHandler(bookingSvc, log)
	claimBookings := claimBookingsHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getVendorBookings := getVendorBookingsHandler.NewHandler(bookingSvc, log)
	getVendorStats := getVendorStatsHandler.NewHandler(bookingSvc, log)
	getCalendar := getCalendarHandler.NewHandler(bookingSvc, log)
	getVendorAvailability := getVendorAvailabilityHandler.NewHandler(availabilitySvc, log)
	updateVendorAvailability := updateVendorAvailabilityHandler.NewHandler(availabilitySvc, log)
	manageOverrides := manageOverridesHandler.NewHandler(availabilitySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	public.Use(middleware.OptionalAuth)

	// Свободные слоты услуги
	public.HandleFunc("/services/{serviceId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Онлайн-бронирование (гость или авторизованный клиент)
	public.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Недельное расписание вендора
	public.HandleFunc("/vendors/{vendorId}/availability", getVendorAvailability.Handle).Methods(http.MethodGet)

	// Вебхук Paystack: подпись проверяется use case по сырому телу
	api.HandleFunc("/payments/paystack/webhook", paystackWebhook.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings/claim", claimBookings.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/complete", transitionBooking.Complete).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/no-show", transitionBooking.NoShow).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/mark-paid", transitionBooking.MarkPaid).Methods(http.MethodPatch)

	// --- Кабинет клиента ---
	protected.HandleFunc("/me/bookings", getUserBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/me/calendar", getCalendar.HandleCustomer).Methods(http.MethodGet)

	// --- Управление вендором (для владельца) ---
	protected.HandleFunc("/vendors/{vendorId}/bookings", createBooking.HandleManual).Methods(http.MethodPost)
	protected.HandleFunc("/vendors/{vendorId}/bookings", getVendorBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/vendors/{vendorId}/bookings/upcoming", getVendorBookings.HandleUpcoming).Methods(http.MethodGet)
	protected.HandleFunc("/vendors/{vendorId}/stats", getVendorStats.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/vendors/{vendorId}/calendar", getCalendar.HandleVendor).Methods(http.MethodGet)
	protected.HandleFunc("/vendors/{vendorId}/availability", updateVendorAvailability.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/vendors/{vendorId}/overrides", manageOverrides.Create).Methods(http.MethodPost)
	protected.HandleFunc("/vendors/{vendorId}/overrides", manageOverrides.List).Methods(http.MethodGet)
	protected.HandleFunc("/vendors/{vendorId}/overrides/{overrideId}", manageOverrides.Delete).Methods(http.MethodDelete)

	// CORS оборачивает весь роутер, чтобы preflight OPTIONS не упирался в 405
	var handler http.Handler = r
	if len(cfg.Server.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Server.AllowedOrigins)(r)
		log.Info("CORS enabled for origins %v", cfg.Server.AllowedOrigins)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
