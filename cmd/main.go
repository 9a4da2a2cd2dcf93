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
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/cancel_booking"
	checkAvailabilityHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/check_availability"
	confirmBookingHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/create_booking"
	createSlotHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/create_slot"
	deleteBookingHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/delete_booking"
	deleteSlotHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/delete_slot"
	expireSlotsHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/expire_slots"
	getAvailableSlotsHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/get_booking"
	getBookingStatsHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/get_booking_stats"
	getBookingsHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/get_bookings"
	getSlotBookingsHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/get_slot_bookings"
	getVisitorBookingsHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/get_visitor_bookings"
	updateBookingHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/update_booking"
	updateSlotHandler "github.com/m04kA/VMS-VisitService/internal/api/handlers/update_slot"
	"github.com/m04kA/VMS-VisitService/internal/api/middleware"
	"github.com/m04kA/VMS-VisitService/internal/config"
	bookingRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/slot"
	visitorRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/visitor"
	notifyServiceClient "github.com/m04kA/VMS-VisitService/internal/integrations/notifyservice"
	bookingsService "github.com/m04kA/VMS-VisitService/internal/service/bookings"
	slotsService "github.com/m04kA/VMS-VisitService/internal/service/slots"
	createBookingUC "github.com/m04kA/VMS-VisitService/internal/usecase/create_booking"
	updateBookingUC "github.com/m04kA/VMS-VisitService/internal/usecase/update_booking"
	"github.com/m04kA/VMS-VisitService/pkg/dbmetrics"
	"github.com/m04kA/VMS-VisitService/pkg/logger"
	"github.com/m04kA/VMS-VisitService/pkg/metrics"
	"github.com/m04kA/VMS-VisitService/pkg/simpletxmanager"
	"github.com/m04kA/VMS-VisitService/pkg/txmanager"
)

func main() {
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

	log.Info("Starting VMS-VisitService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиента сервиса уведомлений
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (NotifyService=%s timeout=%ds)",
		cfg.NotifyService.URL, cfg.NotifyService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		slotRepository    *slotRepo.Repository
		bookingRepository *bookingRepo.Repository
		visitorRepository *visitorRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		slotRepository = slotRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		visitorRepository = visitorRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		slotRepository = slotRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		visitorRepository = visitorRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	slotsSvc := slotsService.NewService(
		slotRepository,
		bookingRepository,
		txMgr,
		log,
	)
	bookingsSvc := bookingsService.NewService(
		bookingRepository,
		slotsSvc,
		txMgr,
		notifyClient,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		visitorRepository,
		slotsSvc,
		txMgr,
		notifyClient,
		log,
	)
	updateBookingUseCase := updateBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		slotsSvc,
		txMgr,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	updateBooking := updateBookingHandler.NewHandler(updateBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingsSvc, log)
	getBookings := getBookingsHandler.NewHandler(bookingsSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingsSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingsSvc, log)
	deleteBooking := deleteBookingHandler.NewHandler(bookingsSvc, log)
	getBookingStats := getBookingStatsHandler.NewHandler(bookingsSvc, log)
	getVisitorBookings := getVisitorBookingsHandler.NewHandler(bookingsSvc, log)
	getSlotBookings := getSlotBookingsHandler.NewHandler(bookingsSvc, log)
	createSlot := createSlotHandler.NewHandler(slotsSvc, log)
	updateSlot := updateSlotHandler.NewHandler(slotsSvc, log)
	deleteSlot := deleteSlotHandler.NewHandler(slotsSvc, log)
	expireSlots := expireSlotsHandler.NewHandler(slotsSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(slotsSvc, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(slotsSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные для бронирования слоты
	api.HandleFunc("/slots/available", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Проверка вместимости слота для группы
	api.HandleFunc("/slots/{slotId}/availability", checkAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Список бронирований с фильтрами
	protected.HandleFunc("/bookings", getBookings.Handle).Methods(http.MethodGet)

	// Статистика бронирований (до маршрута с {id}, иначе mux примет stats за ID)
	protected.HandleFunc("/bookings/stats", getBookingStats.Handle).Methods(http.MethodGet)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{id}", getBooking.Handle).Methods(http.MethodGet)

	// Частичное обновление бронирования
	protected.HandleFunc("/bookings/{id}", updateBooking.Handle).Methods(http.MethodPatch)

	// Удаление бронирования
	protected.HandleFunc("/bookings/{id}", deleteBooking.Handle).Methods(http.MethodDelete)

	// Подтверждение бронирования
	protected.HandleFunc("/bookings/{id}/confirm", confirmBooking.Handle).Methods(http.MethodPost)

	// Отмена бронирования с указанием причины
	protected.HandleFunc("/bookings/{id}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// История бронирований посетителя
	protected.HandleFunc("/visitors/{visitorId}/bookings", getVisitorBookings.Handle).Methods(http.MethodGet)

	// Бронирования слота в порядке очереди
	protected.HandleFunc("/slots/{slotId}/bookings", getSlotBookings.Handle).Methods(http.MethodGet)

	// --- Слоты посещений (административные) ---
	// Создание слота
	protected.HandleFunc("/slots", createSlot.Handle).Methods(http.MethodPost)

	// Sweep истечения прошедших слотов без бронирований
	protected.HandleFunc("/slots/expire", expireSlots.Handle).Methods(http.MethodPost)

	// Частичное обновление слота
	protected.HandleFunc("/slots/{id}", updateSlot.Handle).Methods(http.MethodPatch)

	// Удаление слота
	protected.HandleFunc("/slots/{id}", deleteSlot.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
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
