package ops

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/serverwatch/serverwatch/internal/watchdog"
)

// Handler serves the operational endpoints.
type Handler struct {
	version   string
	buildTime string
	service   *watchdog.Service
}

// NewHandler creates an ops Handler over a running watchdog service.
func NewHandler(version, buildTime string, service *watchdog.Service) *Handler {
	return &Handler{
		version:   version,
		buildTime: buildTime,
		service:   service,
	}
}

// HealthCheck handles GET /ops/health, the liveness check.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"time":       time.Now().UTC().Format(time.RFC3339),
		"version":    h.version,
		"build_time": h.buildTime,
	})
}

// ReadinessCheck handles GET /ops/ready. The daemon is ready once at
// least one cycle has completed.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.service.LastResult() == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "starting",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// CycleStatus handles GET /ops/status with the latest cycle outcome and
// running totals.
func (h *Handler) CycleStatus(w http.ResponseWriter, _ *http.Request) {
	metrics := h.service.GetMetrics()
	body := map[string]any{
		"cycles_total":  metrics.CyclesTotal,
		"cycles_failed": metrics.CyclesFailed,
		"reports_sent":  metrics.ReportsSent,
	}

	if last := h.service.LastResult(); last != nil {
		body["last_cycle"] = map[string]any{
			"id":          last.ID,
			"started_at":  last.StartedAt.UTC().Format(time.RFC3339),
			"duration_ms": last.Duration.Milliseconds(),
			"overall":     last.Overall.String(),
			"sent":        last.Sent,
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
