package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gw-transaction-batch/internal/api/handlers"
	"gw-transaction-batch/internal/api/middlew"
	"gw-transaction-batch/internal/config"
	"gw-transaction-batch/internal/csvreader"
	"gw-transaction-batch/internal/db"
	"gw-transaction-batch/internal/kafka"
	"gw-transaction-batch/internal/listener"
	"gw-transaction-batch/internal/models"
	"gw-transaction-batch/internal/rabbitmq"
	"gw-transaction-batch/internal/report"
	"gw-transaction-batch/internal/server"
	"gw-transaction-batch/internal/service"
	"gw-transaction-batch/internal/storage"
	"gw-transaction-batch/internal/storage/mongodb"
	"gw-transaction-batch/internal/storage/postgres"
	"gw-transaction-batch/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	log           *slog.Logger
	logFile       *os.File
	cfg           *config.Config
	pool          *pgxpool.Pool
	server        *server.Server
	kafkaProducer kafka.Producer
	publisher     rabbitmq.Publisher
	history       storage.RunHistoryStorage
	repo          *postgres.PgTransactionRepository
	launcher      *service.Launcher
	scheduler     *Scheduler
}

func NewApp() (*App, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации конфига: %w", err)
	}

	loggerWithFile, err := logger.NewLoggerWithFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	log := loggerWithFile.Logger
	log.Info("инициализация приложения",
		slog.String("input", cfg.Batch.InputFile),
		slog.Int("chunk_size", cfg.Batch.ChunkSize),
		slog.Int("skip_limit", cfg.Batch.SkipLimit))

	a := &App{
		log:     log,
		logFile: loggerWithFile.LogFile,
		cfg:     cfg,
	}

	if err := a.initInfra(context.Background()); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) initInfra(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	log.Info("выполнение миграций базы данных")
	if err := db.RunMigrations(cfg.DB.MigrationURL(), cfg.MigrationsPath, log); err != nil {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}
	log.Info("миграции успешно применены")

	pool, err := db.NewPool(ctx, cfg.DB.DSN(), db.DefaultPoolConfig(cfg.Batch.Workers), log)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}
	a.pool = pool
	log.Info("подключение к базе данных установлено")

	if cfg.Kafka.Enabled {
		log.Info("инициализация kafka producer", slog.Any("brokers", cfg.Kafka.Brokers))
		producer, err := kafka.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return fmt.Errorf("ошибка инициализации kafka: %w", err)
		}
		a.kafkaProducer = producer
	} else {
		log.Info("kafka отключен в конфигурации")
		a.kafkaProducer = kafka.NewNoOpProducer(log)
	}

	if cfg.Rabbit.Enabled {
		log.Info("инициализация rabbitmq publisher", slog.String("exchange", cfg.Rabbit.Exchange))
		publisher, err := rabbitmq.NewAMQPPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange, log)
		if err != nil {
			return fmt.Errorf("ошибка инициализации rabbitmq: %w", err)
		}
		a.publisher = publisher
	} else {
		log.Info("rabbitmq отключен в конфигурации")
		a.publisher = rabbitmq.NewNoOpPublisher(log)
	}

	if cfg.Mongo.Enabled {
		log.Info("подключение к MongoDB", slog.String("database", cfg.Mongo.Database))
		history, err := mongodb.NewMongoStorage(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, cfg.Mongo.Timeout)
		if err != nil {
			return fmt.Errorf("ошибка подключения к MongoDB: %w", err)
		}
		a.history = history
	} else {
		log.Info("журнал запусков в MongoDB отключен")
		a.history = storage.NewNoOpHistoryStorage()
	}

	return nil
}

// BuildBatchLayer собирает конвейер обработки и слушателей запуска
func (a *App) BuildBatchLayer() error {
	threshold, err := a.cfg.Batch.FraudThresholdDecimal()
	if err != nil {
		return err
	}

	a.repo = postgres.NewTransactionRepository(a.pool)
	txManager := service.NewPgxTxManager(a.pool)
	sink := service.NewTransactionSink(a.repo, txManager, a.log)

	classifier := service.NewClassifier(
		a.repo,
		service.NewValidator(time.Now),
		service.NewFraudScorer(threshold, a.log),
		a.cfg.Batch.FraudScoreCutoff,
		a.log,
	)

	notifier := service.NewNotificationService(a.publisher, a.cfg.Rabbit.Recipients, a.cfg.Rabbit.Notify, a.log)
	reporter := report.NewService(a.repo, a.cfg.Batch.OutputDir, a.log)

	listeners := listener.NewMulti(
		listener.NewLoggingListener(a.log),
		listener.NewHistoryListener(a.history, a.log),
		listener.NewEventListener(a.kafkaProducer, a.log),
		listener.NewCompletionListener(reporter, notifier, a.log),
	)

	batch := service.NewBatchService(
		service.BatchOptions{
			InputFile: a.cfg.Batch.InputFile,
			ChunkSize: a.cfg.Batch.ChunkSize,
			SkipLimit: a.cfg.Batch.SkipLimit,
			Workers:   a.cfg.Batch.Workers,
		},
		service.OpenCSV,
		csvreader.NewMapper(time.Local),
		classifier,
		sink,
		listeners,
		a.log,
	)

	a.launcher = service.NewLauncher(batch, a.log)

	a.log.Info("слой 'batch' собран")
	return nil
}

// BuildAPILayer регистрирует HTTP маршруты управления запусками
func (a *App) BuildAPILayer() error {
	if a.launcher == nil {
		err := errors.New("launcher not initialized, call BuildBatchLayer first")
		a.log.Error(err.Error())
		return err
	}

	srv := server.NewServer(a.cfg.HTTP)
	srv.Router.Use(middleware.RequestID)
	srv.Router.Use(middlew.WithLogger(a.log))
	srv.Router.Use(middlew.AccessLog)
	srv.Router.Use(middleware.RealIP)
	srv.Router.Use(middleware.Recoverer)
	srv.RegisterSwagger()

	checks := map[string]server.HealthChecker{}
	if a.pool != nil {
		checks["postgres"] = a.pool.Ping
	}
	srv.RegisterHealth(checks)

	statusService := service.NewStatusService(a.repo, a.launcher)
	batchHandler := handlers.NewBatchHandler(a.launcher, statusService, a.history)

	srv.Router.Get("/api/v1/batch/status", batchHandler.GetStatus)
	srv.Router.Get("/api/v1/batch/runs/{runID}", batchHandler.GetRun)

	srv.Router.Group(func(r chi.Router) {
		if a.cfg.Auth.Enabled {
			r.Use(middlew.RequireAuth(service.NewAuthService(a.cfg.Auth.Secret, a.cfg.Auth.TokenTTL)))
		} else {
			a.log.Warn("авторизация отключена, ручной запуск доступен без токена")
		}
		r.Post("/api/v1/batch/run", batchHandler.RunBatch)
	})

	a.server = srv
	a.log.Info("слой 'api' собран и маршруты зарегистрированы", slog.String("addr", srv.Addr()))
	return nil
}

func (a *App) StartScheduler() error {
	if !a.cfg.Schedule.Enabled {
		a.log.Info("планировщик отключен в конфигурации")
		return nil
	}
	if a.launcher == nil {
		return errors.New("launcher not initialized, call BuildBatchLayer first")
	}

	a.scheduler = NewScheduler(a.launcher, a.cfg.Schedule, a.log)
	if err := a.scheduler.Start(); err != nil {
		return err
	}
	a.log.Info("планировщик запущен")
	return nil
}

// RunOnce выполняет один запуск синхронно, используется CLI
func (a *App) RunOnce(ctx context.Context, trigger string) (models.RunResult, error) {
	if a.launcher == nil {
		return models.RunResult{}, errors.New("launcher not initialized, call BuildBatchLayer first")
	}
	return a.launcher.Run(ctx, trigger)
}

// Run поднимает HTTP сервер и ждет сигнала завершения
func (a *App) Run() error {
	if a.server == nil {
		return errors.New("server not initialized, call BuildAPILayer first")
	}

	a.log.Info("сервер запускается")

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("ошибка запуска сервера: %w", err)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-serverErr:
	case sig := <-shutdownChan:
		a.log.Info("получен сигнал завершения", slog.String("signal", sig.String()))
	}

	a.log.Info("приложение останавливается")
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if a.scheduler != nil {
		a.log.Info("остановка планировщика")
		a.scheduler.Stop(ctx)
	}

	if a.launcher != nil {
		if err := a.launcher.Shutdown(ctx); err != nil {
			a.log.Error("ошибка при остановке запуска", slog.String("error", err.Error()))
		}
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("ошибка при остановке http сервера", slog.String("error", err.Error()))
	}

	a.Close()
	return runErr
}

// Close освобождает соединения и файл логов
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.kafkaProducer != nil {
		if err := a.kafkaProducer.Close(); err != nil {
			a.log.Error("ошибка при закрытии kafka producer", slog.String("error", err.Error()))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Error("ошибка при закрытии rabbitmq publisher", slog.String("error", err.Error()))
		}
	}

	if a.history != nil {
		if err := a.history.Close(ctx); err != nil {
			a.log.Error("ошибка при закрытии MongoDB", slog.String("error", err.Error()))
		}
	}

	if a.pool != nil {
		a.log.Info("закрытие соединения с базой данных")
		a.pool.Close()
	}

	a.log.Info("приложение остановлено")
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			a.log.Error("ошибка при закрытии файла логов", slog.String("error", err.Error()))
		}
	}
}
