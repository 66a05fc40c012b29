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

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/booking_flow"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/check_professional_deletion"
	createBookingHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/create_booking"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/create_service"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/delete_service"
	getAvailableSlotsHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_available_slots"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_booking"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_delivery_estimate"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_service"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_user_bookings"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/has_active_bookings"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/transition_booking"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/update_service"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/config"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/infra/cache/flows"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/infra/messaging"
	bookingRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/booking"
	servicesRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/services"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/integrations/payment"
	bookingsService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings"
	catalogService "github.com/m04kA/SMC-MarketplaceBooking/internal/service/catalog"
	bookingFlowUC "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/booking_flow"
	createBookingUC "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/metrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/simpletxmanager"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/txmanager"
)

// eventPublisher общий контракт RabbitMQ и no-op публикатора
type eventPublisher interface {
	PublishJSON(ctx context.Context, key string, v interface{}) error
	Close() error
}

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}
	recorder := metrics.NewRecorder(metricsCollector, cfg.Metrics.ServiceName)

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

	// Redis для сессий пошагового бронирования
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
	}
	flowStore := flows.NewStore(redisClient, cfg.Flow.SessionTTL(), cfg.Flow.LockTTL())
	log.Info("Flow store initialized (redis=%s, session_ttl=%s, lock_ttl=%s)",
		cfg.Redis.Addr, cfg.Flow.SessionTTL(), cfg.Flow.LockTTL())

	// Публикация доменных событий
	var publisher eventPublisher = messaging.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := messaging.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = rabbit
		log.Info("Event publisher connected (exchange=%s)", cfg.RabbitMQ.Exchange)
	} else {
		log.Warn("RabbitMQ url is empty, booking events will not be published")
	}
	defer publisher.Close()

	// Платежный шлюз
	payments, err := payment.New(
		cfg.Payment.Provider,
		cfg.Payment.StripeKey,
		cfg.Payment.Currency,
		time.Duration(cfg.Payment.Timeout)*time.Second,
		log,
	)
	if err != nil {
		log.Fatal("Failed to initialize payment provider: %v", err)
	}
	log.Info("Payment provider initialized (provider=%s, currency=%s)", cfg.Payment.Provider, cfg.Payment.Currency)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository *bookingRepo.Repository
		serviceRepository *servicesRepo.Repository
		txMgr             createBookingUC.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		serviceRepository = servicesRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		serviceRepository = servicesRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	hours := cfg.Scheduling.WorkingHours()

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, publisher, recorder, log)
	catalogSvc := catalogService.NewService(serviceRepository, bookingRepository, log)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		serviceRepository,
		hours,
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		serviceRepository,
		payments,
		publisher,
		recorder,
		txMgr,
		hours,
		log,
	)

	bookingFlowUseCase := bookingFlowUC.NewUseCase(
		flowStore,
		serviceRepository,
		createBookingUseCase,
		getAvailableSlotsUseCase,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := get_booking.NewHandler(bookingSvc, log)
	getUserBookings := get_user_bookings.NewHandler(bookingSvc, log)
	transitionBooking := transition_booking.NewHandler(bookingSvc, log)

	createService := create_service.NewHandler(catalogSvc, log)
	getService := get_service.NewHandler(catalogSvc, log)
	updateService := update_service.NewHandler(catalogSvc, log)
	deleteService := delete_service.NewHandler(catalogSvc, log)
	deliveryEstimate := get_delivery_estimate.NewHandler(catalogSvc, log)
	activeBookings := has_active_bookings.NewHandler(catalogSvc, log)
	professionalDeletion := check_professional_deletion.NewHandler(catalogSvc, log)

	flow := booking_flow.NewHandler(bookingFlowUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/professionals/{professionalId}/services/{serviceId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId}", getService.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId}/delivery-estimate", deliveryEstimate.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId}/active-bookings", activeBookings.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (Bearer JWT)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.Auth.JWTSecret, cfg.Auth.Issuer, log))

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/status", transitionBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/users/me/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Каталог услуг (для специалистов) ---
	protected.HandleFunc("/services", createService.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/services/{serviceId}", updateService.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/services/{serviceId}", deleteService.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/professionals/{professionalId}/deletion-check",
		professionalDeletion.Handle).Methods(http.MethodPost)

	// --- Пошаговое бронирование ---
	protected.HandleFunc("/booking-flows", flow.Start).Methods(http.MethodPost)
	protected.HandleFunc("/booking-flows/{flowId}", flow.Get).Methods(http.MethodGet)
	protected.HandleFunc("/booking-flows/{flowId}/details", flow.UpdateDetails).Methods(http.MethodPut)
	protected.HandleFunc("/booking-flows/{flowId}/next", flow.Next).Methods(http.MethodPost)
	protected.HandleFunc("/booking-flows/{flowId}/prev", flow.Prev).Methods(http.MethodPost)
	protected.HandleFunc("/booking-flows/{flowId}/slots", flow.Slots).Methods(http.MethodGet)
	protected.HandleFunc("/booking-flows/{flowId}/confirm", flow.Confirm).Methods(http.MethodPost)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(stopMetricsCh)

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
