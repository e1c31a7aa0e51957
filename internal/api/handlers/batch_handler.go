package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gw-transaction-batch/internal/api/middlew"
	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"
	"gw-transaction-batch/internal/service"
	"gw-transaction-batch/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RunHistoryReader interface {
	GetRun(ctx context.Context, runID string) (*models.RunHistory, error)
}

type BatchHandler struct {
	batch   service.Batch
	status  service.Status
	history RunHistoryReader
}

func NewBatchHandler(batch service.Batch, status service.Status, history RunHistoryReader) *BatchHandler {
	return &BatchHandler{
		batch:   batch,
		status:  status,
		history: history,
	}
}

// RunBatch godoc
// @Summary      Запустить обработку
// @Description  Запускает обработку входного файла в фоне и сразу возвращает ID запуска
// @Tags         batch
// @Security     BearerAuth
// @Produce      json
// @Success      202 {object} models.RunAcceptedResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /batch/run [post]
func (h *BatchHandler) RunBatch(w http.ResponseWriter, r *http.Request) {
	const op = "handler.RunBatch"
	log := middlew.GetLogger(r.Context())

	runID, err := h.batch.Start(models.TriggerManual)
	if err != nil {
		switch {
		case errors.Is(err, custom_err.ErrRunInProgress):
			log.Info("batch run rejected, another run in progress", slog.String("op", op))
			response.WriteJSONError(w, log, http.StatusConflict, "run_in_progress", "Batch processing is already running")
		default:
			log.Error("failed to start batch run", slog.String("op", op), slog.String("error", err.Error()))
			response.WriteJSONError(w, log, http.StatusInternalServerError, "internal_error", "Failed to start batch processing")
		}
		return
	}

	log.Info("batch run started manually",
		slog.String("run_id", runID.String()),
		slog.String("operator", middlew.GetOperator(r.Context())))

	response.WriteJSONSuccess(w, log, http.StatusAccepted, models.RunAcceptedResponse{
		Status:  "accepted",
		Message: "Batch processing started",
		RunID:   runID.String(),
	})
}

// GetStatus godoc
// @Summary      Статус обработки
// @Description  Возвращает количество сохраненных транзакций по статусам и итог последнего запуска
// @Tags         batch
// @Produce      json
// @Success      200 {object} models.BatchStatusResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /batch/status [get]
func (h *BatchHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "handler.GetStatus"
	log := middlew.GetLogger(r.Context())

	status, err := h.status.GetBatchStatus(r.Context())
	if err != nil {
		log.Error("failed to get batch status", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusInternalServerError, "internal_error", "Failed to retrieve batch status")
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, status)
}

// GetRun godoc
// @Summary      Журнал запуска
// @Description  Возвращает запись журнала запуска с итогами по чанкам
// @Tags         batch
// @Produce      json
// @Param        runID path string true "ID запуска"
// @Success      200 {object} models.RunHistory
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /batch/runs/{runID} [get]
func (h *BatchHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	const op = "handler.GetRun"
	log := middlew.GetLogger(r.Context())

	idStr := chi.URLParam(r, "runID")
	if _, err := uuid.Parse(idStr); err != nil {
		log.Warn("invalid UUID", slog.String("op", op), slog.String("uuid", idStr))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_request", "Invalid run ID format")
		return
	}

	run, err := h.history.GetRun(r.Context(), idStr)
	if err != nil {
		switch {
		case errors.Is(err, custom_err.ErrNotFound):
			log.Info("run not found", slog.String("op", op), slog.String("run_id", idStr))
			response.WriteJSONError(w, log, http.StatusNotFound, "not_found", "Run not found")
		default:
			log.Error("failed to get run", slog.String("op", op), slog.String("error", err.Error()))
			response.WriteJSONError(w, log, http.StatusInternalServerError, "internal_error", "Failed to retrieve run")
		}
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, run)
}
