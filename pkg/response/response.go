package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type ErrorResponse struct {
	Error   string `json:"error" example:"run_in_progress"`
	Message string `json:"message,omitempty"`
}

// ErrorMapping ответ для ошибки, распознанной через errors.Is
type ErrorMapping struct {
	Err     error
	Status  int
	Code    string
	Message string
}

func WriteJSONError(w http.ResponseWriter, log *slog.Logger, status int, errCode, message string) {
	writeJSON(w, log, status, ErrorResponse{Error: errCode, Message: message})
}

// WriteMappedError отвечает по первому подходящему правилу. Неизвестная ошибка логируется и
// превращается в 500 без деталей
func WriteMappedError(w http.ResponseWriter, log *slog.Logger, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			WriteJSONError(w, log, m.Status, m.Code, m.Message)
			return
		}
	}

	log.Error("unmapped error", slog.String("error", err.Error()))
	WriteJSONError(w, log, http.StatusInternalServerError, "internal_error", "Internal error")
}

func WriteJSONSuccess(w http.ResponseWriter, log *slog.Logger, status int, data any) {
	if data == nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		return
	}
	writeJSON(w, log, status, data)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("ошибка при кодировании JSON-ответа",
			slog.Int("status", status),
			slog.String("error", err.Error()))
	}
}
