package handlers

import (
	"net/http"
	"runtime"

	"go.uber.org/zap"

	"github.com/biku1998/memo-mesh/pkg/config"
	"github.com/biku1998/memo-mesh/pkg/services"
)

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Environment string `json:"environment"`
}

// StatsResponse exposes the linker's skip counters.
type StatsResponse struct {
	Linker services.LinkerStats `json:"linker"`
}

// HealthHandler handles health check and stats endpoints.
type HealthHandler struct {
	cfg    *config.Config
	linker services.KnowledgeLinker
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(cfg *config.Config, linker services.KnowledgeLinker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, linker: linker, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
	mux.HandleFunc("GET /api/stats", h.Stats)
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests with service information.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "memo-mesh",
		GoVersion:   runtime.Version(),
		Environment: h.cfg.Env,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}

// Stats handles GET /api/stats requests with linker skip counters.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response := StatsResponse{Linker: h.linker.Stats()}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode stats response", zap.Error(err))
	}
}
