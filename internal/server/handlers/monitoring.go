package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nickabs/shopfront/internal/apperrors"
	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/server/config"
	"github.com/nickabs/shopfront/internal/server/responses"
)

type MonitoringHandler struct {
	logger *slog.Logger
}

func NewMonitoringHandler(logger *slog.Logger) *MonitoringHandler {
	return &MonitoringHandler{logger: logger}
}

// ErrorReport is an error captured by the web client
type ErrorReport struct {
	Message    string            `json:"message" example:"Service temporarily unavailable"`
	Kind       string            `json:"kind" example:"http"`
	Status     int               `json:"status" example:"503"`
	Path       string            `json:"path,omitempty" example:"/products"`
	RequestID  string            `json:"request_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Context    map[string]string `json:"context,omitempty"`
}

type ErrorReportBatch struct {
	Errors []ErrorReport `json:"errors"`
}

// ReportErrorsHandler logs a batch of client side errors
func (m *MonitoringHandler) ReportErrorsHandler(w http.ResponseWriter, r *http.Request) {
	var req ErrorReportBatch
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Errors) > config.MaxErrorReportsPerBatch {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed,
			fmt.Sprintf("a batch can contain at most %d errors", config.MaxErrorReportsPerBatch))
		return
	}

	for _, report := range req.Errors {
		attrs := []slog.Attr{
			slog.String("type", "client_error"),
			slog.String("kind", report.Kind),
			slog.Int("status", report.Status),
			slog.String("path", report.Path),
			slog.String("client_request_id", report.RequestID),
			slog.Time("occurred_at", report.OccurredAt),
		}
		for k, v := range report.Context {
			attrs = append(attrs, slog.String("ctx_"+k, v))
		}
		m.logger.LogAttrs(r.Context(), slog.LevelWarn, report.Message, attrs...)
	}

	_ = logger.ContextWithLogAttrs(r.Context(), slog.Int("reported_errors", len(req.Errors)))

	responses.RespondWithStatusCodeOnly(w, http.StatusAccepted)
}
