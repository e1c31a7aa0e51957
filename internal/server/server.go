package server

import (
	"context"
	"log/slog"
	"net/http"

	"gw-transaction-batch/internal/api/middlew"
	"gw-transaction-batch/internal/config"
	"gw-transaction-batch/pkg/response"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

// HealthChecker проверка зависимости, без которой запуск невозможен
type HealthChecker func(ctx context.Context) error

type Server struct {
	httpServer *http.Server
	Router     *chi.Mux
}

func NewServer(cfg config.HTTPConfig) *Server {
	router := chi.NewRouter()

	serv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return &Server{
		httpServer: serv,
		Router:     router,
	}
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// RegisterSwagger UI берет спецификацию с того же хоста
func (s *Server) RegisterSwagger() {
	s.Router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}

// RegisterHealth отдает 200, пока все проверки проходят, иначе 503 с именем упавшей
func (s *Server) RegisterHealth(checks map[string]HealthChecker) {
	s.Router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		log := middlew.GetLogger(r.Context())

		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				log.Warn("health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()))
				response.WriteJSONError(w, log, http.StatusServiceUnavailable, "unavailable", name+" is unavailable")
				return
			}
		}
		response.WriteJSONSuccess(w, log, http.StatusOK, map[string]string{"status": "ok"})
	})
}
