package models

import (
	"time"

	"github.com/animesao/clan-bot/internal/store"
)

// HealthResponse reports process liveness together with a snapshot of the
// clan collections, so one probe covers both the process and its data.
type HealthResponse struct {
	Status    string      `json:"status"`
	Uptime    string      `json:"uptime"`
	Timestamp string      `json:"timestamp"`
	Clan      store.Stats `json:"clan"`
}

type ServiceStatus string

const (
	StatusHealthy   ServiceStatus = "healthy"
	StatusUnhealthy ServiceStatus = "unhealthy"
)

func NewHealthResponse(uptime time.Duration, clan store.Stats) HealthResponse {
	return HealthResponse{
		Status:    string(StatusHealthy),
		Uptime:    uptime.String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Clan:      clan,
	}
}
