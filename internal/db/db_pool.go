package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolConfig struct {
	MaxConns          int
	MinConns          int
	HealthCheckPeriod time.Duration
	PoolTimeout       time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	ApplicationName   string
}

// DefaultPoolConfig настройки пула под пакетную обработку: параллельные проверки
// дубликатов воркерами и один пишущий коммит чанка
func DefaultPoolConfig(workers int) PoolConfig {
	return PoolConfig{
		MaxConns:          workers + 4,
		MinConns:          2,
		HealthCheckPeriod: 30 * time.Second,
		PoolTimeout:       5 * time.Second,
		RetryAttempts:     5,
		RetryDelay:        1 * time.Second,
		ApplicationName:   "gw-transaction-batch",
	}
}

func NewPool(ctx context.Context, dsn string, cfg PoolConfig, log *slog.Logger) (*pgxpool.Pool, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось распарсить DSN: %w", err)
	}

	conf.MaxConns = int32(cfg.MaxConns)
	conf.MinConns = int32(cfg.MinConns)
	conf.HealthCheckPeriod = cfg.HealthCheckPeriod
	conf.MaxConnLifetime = 30 * time.Minute
	conf.MaxConnIdleTime = 5 * time.Minute
	if cfg.ApplicationName != "" {
		conf.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}
	conf.ConnConfig.ConnectTimeout = cfg.PoolTimeout

	var pool *pgxpool.Pool
	for i := 0; i < cfg.RetryAttempts; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, conf)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				log.Info("подключение к базе данных успешно", slog.Int("attempt", i+1))
				return pool, nil
			}
			pool.Close()
		}

		log.Warn("не удалось подключиться к базе данных",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", cfg.RetryAttempts),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("подключение к базе данных прервано: %w", ctx.Err())
		case <-time.After(Backoff(cfg.RetryDelay, i)):
		}
	}

	return nil, fmt.Errorf("не удалось создать пул соединений после %d попыток: %w", cfg.RetryAttempts, err)
}

// Backoff экспоненциальная задержка перед попыткой attempt (с нуля), не больше минуты
func Backoff(base time.Duration, attempt int) time.Duration {
	const maxDelay = time.Minute
	if attempt > 16 {
		return maxDelay
	}
	d := base * time.Duration(1<<attempt)
	if d > maxDelay {
		return maxDelay
	}
	return d
}
