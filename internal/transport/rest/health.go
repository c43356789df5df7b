package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

const healthCheckTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SessionCounter reports live realtime sessions.
type SessionCounter interface {
	Len() int
}

type componentCheck struct {
	name string
	run  func(ctx context.Context) (map[string]any, error)
}

type HealthHandler struct {
	checks []componentCheck
}

// NewHealthHandler probes the database and, when sessions is set, reports the realtime hub size.
func NewHealthHandler(db Pinger, sessions SessionCounter) *HealthHandler {
	h := &HealthHandler{}
	h.checks = append(h.checks, componentCheck{
		name: "database",
		run: func(ctx context.Context) (map[string]any, error) {
			return nil, db.PingContext(ctx)
		},
	})
	if sessions != nil {
		h.checks = append(h.checks, componentCheck{
			name: "realtime",
			run: func(context.Context) (map[string]any, error) {
				return map[string]any{"sessions": sessions.Len()}, nil
			},
		})
	}
	return h
}

// pingHandler is the liveness probe
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, map[string]string{"status": "OK"})
}

// healthCheckHandler is the readiness probe. Any unhealthy component turns the whole response into a 503.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: make(map[string]CheckEntry, len(h.checks)),
	}
	for _, check := range h.checks {
		start := time.Now()
		details, err := check.run(ctx)
		entry := CheckEntry{
			Status:     HealthHealthy,
			Details:    details,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			entry.Status = HealthUnhealthy
			entry.Message = err.Error()
			resp.Status = HealthUnhealthy
		}
		resp.Components[check.name] = entry
	}
	resp.CheckedAt = time.Now()

	status := http.StatusOK
	if resp.Status == HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeHealth(w, status, resp)
}

func writeHealth(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
