package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/server/config"
	"github.com/nickabs/shopfront/internal/server/responses"
	"github.com/nickabs/shopfront/internal/version"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"connected"`
	Version  string `json:"version" example:"v1.2.0"`
}

// HealthHandler reports the API status. The response is 503 when the database can not be reached.
func (h *HealthHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	res := HealthResponse{
		Status:   "ok",
		Database: "connected",
		Version:  version.Get().Version,
	}

	if err := h.ping(r.Context()); err != nil {
		logger.ContextRequestLogger(r.Context()).Error("database ping failed", slog.String("error", err.Error()))
		res.Status = "error"
		res.Database = "disconnected"
		responses.RespondWithJSON(w, http.StatusServiceUnavailable, res)
		return
	}

	responses.RespondWithJSON(w, http.StatusOK, res)
}

// LivenessHandler returns 200 while the process is serving requests
func (h *HealthHandler) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	responses.RespondWithStatusCodeOnly(w, http.StatusOK)
}

// ReadinessHandler returns 200 when the database is reachable, otherwise 503
func (h *HealthHandler) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r.Context()); err != nil {
		responses.RespondWithStatusCodeOnly(w, http.StatusServiceUnavailable)
		return
	}
	responses.RespondWithStatusCodeOnly(w, http.StatusOK)
}

// VersionHandler returns the build information
func (h *HealthHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	responses.RespondWithJSON(w, http.StatusOK, version.Get())
}

func (h *HealthHandler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.ReadinessTimeout)
	defer cancel()
	return h.db.Ping(ctx)
}
