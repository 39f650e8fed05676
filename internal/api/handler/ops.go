package handler

import (
	"net/http"
	"time"

	"github.com/leavetime/leavetime/internal/api/models"
	"github.com/leavetime/leavetime/internal/api/response"
	"github.com/leavetime/leavetime/internal/provider/resilience"
)

// Degradation flags reported by the status endpoint.
const (
	FlagCredentialMissing = "credential_missing"
	flagCircuitOpen       = ":circuit_open"
	flagCircuitHalfOpen   = ":circuit_half_open"
)

// HealthSource lists provider client health. *resilience.Registry implements it.
type HealthSource interface {
	GetAllHealth() []*resilience.ProviderHealth
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version    string
	buildTime  string
	health     HealthSource
	configured bool
}

// NewOpsHandler creates a new OpsHandler. health may be nil.
func NewOpsHandler(version, buildTime string, health HealthSource, configured bool) *OpsHandler {
	return &OpsHandler{
		version:    version,
		buildTime:  buildTime,
		health:     health,
		configured: configured,
	}
}

// HealthCheck handles GET /api/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /api/ops/status - credential and provider status.
// A missing credential fails the service; an open or half-open circuit degrades it.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:               models.HealthStatusOK,
		Time:                 models.Timestamp(time.Now()),
		CredentialConfigured: h.configured,
		Providers:            []models.ProviderStatus{},
	}

	if h.health != nil {
		for _, ph := range h.health.GetAllHealth() {
			ps := providerStatus(ph)
			status.Providers = append(status.Providers, ps)
			switch ps.Status {
			case models.HealthStatusFail:
				status.ActiveDegradationFlags = append(status.ActiveDegradationFlags, ph.Name+flagCircuitOpen)
			case models.HealthStatusDegraded:
				status.ActiveDegradationFlags = append(status.ActiveDegradationFlags, ph.Name+flagCircuitHalfOpen)
			}
		}
	}
	if len(status.ActiveDegradationFlags) > 0 {
		status.Status = models.HealthStatusDegraded
	}

	if !h.configured {
		status.Status = models.HealthStatusFail
		status.ActiveDegradationFlags = append([]string{FlagCredentialMissing}, status.ActiveDegradationFlags...)
	}

	response.JSON(w, r, http.StatusOK, status)
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:            ph.Name,
		Status:              models.HealthStatusOK,
		CircuitState:        ph.CircuitState.String(),
		ConsecutiveFailures: ph.Counts.ConsecutiveFailures,
		LastSuccessAt:       timestampPtr(ph.LastSuccessAt),
		LastFailureAt:       timestampPtr(ph.LastFailureAt),
	}
	switch {
	case ph.IsUnhealthy():
		ps.Status = models.HealthStatusFail
	case ph.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}

func timestampPtr(t *time.Time) *models.Timestamp {
	if t == nil {
		return nil
	}
	ts := models.Timestamp(*t)
	return &ts
}
