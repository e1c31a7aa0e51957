package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations накатывает все миграции и проверяет, что схема не осталась в 'грязном' состоянии
func RunMigrations(dsn string, migrationsPath string, log *slog.Logger) error {
	m, err := newMigrator(dsn, migrationsPath)
	if err != nil {
		return err
	}
	defer closeMigrator(m, log)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка при выполнении миграций: %w", err)
	}

	return checkVersion(m, log)
}

// RollbackMigrations откатывает steps последних миграций
func RollbackMigrations(dsn string, migrationsPath string, steps int, log *slog.Logger) error {
	if steps < 1 {
		return fmt.Errorf("количество шагов отката должно быть >= 1, получено %d", steps)
	}

	m, err := newMigrator(dsn, migrationsPath)
	if err != nil {
		return err
	}
	defer closeMigrator(m, log)

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка при откате миграций: %w", err)
	}

	version, _, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("все миграции откачены")
		return nil
	case err != nil:
		return fmt.Errorf("ошибка при проверке версии миграций: %w", err)
	}

	log.Info("миграции откачены", slog.Uint64("version", uint64(version)), slog.Int("steps", steps))
	return nil
}

func newMigrator(dsn, migrationsPath string) (*migrate.Migrate, error) {
	if dsn == "" {
		return nil, errors.New("DSN для миграций не может быть пустым")
	}
	if migrationsPath == "" {
		return nil, errors.New("путь к файлам миграций не может быть пустым")
	}

	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate, log *slog.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		log.Warn("ошибка при закрытии мигратора",
			slog.Any("source_error", srcErr),
			slog.Any("db_error", dbErr))
	}
}

func checkVersion(m *migrate.Migrate, log *slog.Logger) error {
	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("ошибка при проверке версии миграций: %w", err)
	}
	if dirty {
		return fmt.Errorf("обнаружена 'грязная' миграция версии %d. Исправьте вручную", version)
	}

	log.Info("схема базы данных актуальна", slog.Uint64("version", uint64(version)))
	return nil
}
