package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "gw-transaction-batch/docs"
	"gw-transaction-batch/internal/app"
	"gw-transaction-batch/internal/config"
	"gw-transaction-batch/internal/db"
	"gw-transaction-batch/internal/models"
	"gw-transaction-batch/internal/service"
	"gw-transaction-batch/pkg/logger"

	"github.com/spf13/cobra"
)

var Version = "dev"

// @title           Transaction Batch API
// @version         1.0
// @description     API для запуска и мониторинга пакетной обработки финансовых транзакций
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:           "gw-transaction-batch",
		Short:         "Пакетная обработка финансовых транзакций",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "HTTP API и запуск по расписанию",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.NewApp()
			if err != nil {
				return fmt.Errorf("ошибка создания приложения: %w", err)
			}

			if err := a.BuildBatchLayer(); err != nil {
				a.Close()
				return err
			}
			if err := a.BuildAPILayer(); err != nil {
				a.Close()
				return err
			}
			if err := a.StartScheduler(); err != nil {
				a.Close()
				return err
			}

			if err := a.Run(); err != nil {
				return fmt.Errorf("ошибка при работе приложения: %w", err)
			}
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Однократная обработка входного файла",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input != "" {
				if err := os.Setenv("BATCH_INPUT_FILE", input); err != nil {
					return err
				}
			}

			a, err := app.NewApp()
			if err != nil {
				return fmt.Errorf("ошибка создания приложения: %w", err)
			}
			defer a.Close()

			if err := a.BuildBatchLayer(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := a.RunOnce(ctx, models.TriggerCLI)
			s := res.Summary
			fmt.Fprintf(cmd.OutOrStdout(),
				"run %s: %s (read=%d written=%d skipped=%d valid=%d invalid=%d fraudulent=%d, %s)\n",
				res.RunID, res.Status, s.Read, s.Written, s.Skipped, s.Valid, s.Invalid, s.Fraudulent,
				models.FormatDuration(res.Duration()))
			return err
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Путь к CSV файлу (по умолчанию BATCH_INPUT_FILE)")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Выпустить токен оператора для ручного запуска",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return fmt.Errorf("JWT_SECRET не задан")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}

			token, err := service.NewAuthService(cfg.Auth.Secret, ttl).GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "operator", "Имя оператора")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Срок жизни токена (по умолчанию JWT_EXPIRATION)")
	return cmd
}

func migrateCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Применить или откатить миграции схемы",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}

			lf, err := logger.NewLoggerWithFile(cfg.LogFile, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("ошибка инициализации логгера: %w", err)
			}
			defer lf.LogFile.Close()

			switch args[0] {
			case "up":
				return db.RunMigrations(cfg.DB.MigrationURL(), cfg.MigrationsPath, lf.Logger)
			case "down":
				return db.RollbackMigrations(cfg.DB.MigrationURL(), cfg.MigrationsPath, steps, lf.Logger)
			default:
				return fmt.Errorf("неизвестное направление %q, ожидается up или down", args[0])
			}
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "Сколько миграций откатить (только для down)")
	return cmd
}
