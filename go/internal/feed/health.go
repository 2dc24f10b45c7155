package feed

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ConnStatus reports broker connectivity. *nats.Conn satisfies it.
type ConnStatus interface {
	IsConnected() bool
}

type HealthStatus struct {
	Healthy       bool     `json:"healthy"`
	NATSEnabled   bool     `json:"nats_enabled"`
	NATSConnected bool     `json:"nats_connected"`
	Stats         Stats    `json:"stats"`
	Errors        []string `json:"errors"`
}

// HealthChecker reports on the match event feed.
type HealthChecker struct {
	stats *StatsCollector
	conn  ConnStatus
}

// NewHealthChecker builds a checker. conn is nil when events are only logged.
func NewHealthChecker(stats *StatsCollector, conn ConnStatus) *HealthChecker {
	return &HealthChecker{stats: stats, conn: conn}
}

func (h *HealthChecker) Check() HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Stats:   h.stats.Snapshot(),
		Errors:  []string{},
	}

	if h.conn != nil {
		status.NATSEnabled = true
		status.NATSConnected = h.conn.IsConnected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}
	if status.Stats.LastError != "" {
		status.Errors = append(status.Errors, "last publish failed: "+status.Stats.LastError)
	}

	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check()

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to encode feed health")
	}
}
