package limebar

import (
	"fmt"
	"strings"
	"time"
)

// HealthStatus represents the overall health state of a component.
type HealthStatus string

const (
	// HealthOK indicates the component is functioning normally.
	HealthOK HealthStatus = "ok"
	// HealthDegraded indicates partial functionality or non-critical issues.
	HealthDegraded HealthStatus = "degraded"
	// HealthUnhealthy indicates the component is not functioning.
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck contains the health status of the bar and its components.
type HealthCheck struct {
	// Status is the overall health status.
	Status HealthStatus

	// Timestamp is when the health check was performed.
	Timestamp time.Time

	// Uptime is the duration since the bar started (zero if not running).
	Uptime time.Duration

	// Components contains health status for individual components.
	Components map[string]ComponentHealth

	// Stalled lists panels whose update has been in flight for longer
	// than max(3 × interval, 30s).
	Stalled []string

	// Message provides additional context about the health status.
	Message string
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	// Status is the health status of this component.
	Status HealthStatus

	// Message provides details about the component's state.
	Message string

	// LastUpdated is when this component was last successfully updated.
	LastUpdated time.Time
}

// IsHealthy returns true if the overall status is HealthOK.
func (h HealthCheck) IsHealthy() bool {
	return h.Status == HealthOK
}

// IsDegraded returns true if the overall status is HealthDegraded.
func (h HealthCheck) IsDegraded() bool {
	return h.Status == HealthDegraded
}

// IsUnhealthy returns true if the overall status is HealthUnhealthy.
func (h HealthCheck) IsUnhealthy() bool {
	return h.Status == HealthUnhealthy
}

// healthInput is the state a health check is computed from.
type healthInput struct {
	running   bool
	startTime time.Time
	updates   uint64
	configErr error
	lastErr   error
	panels    []PanelSnapshot
}

// buildHealth derives the health of a bar. A stopped bar is unhealthy; an
// error panel, stalled panels or a recent error degrade a running one.
func buildHealth(in healthInput, now time.Time) HealthCheck {
	components := make(map[string]ComponentHealth, 4)

	var uptime time.Duration
	if in.running && !in.startTime.IsZero() {
		uptime = now.Sub(in.startTime)
	}

	if in.running {
		components["instance"] = ComponentHealth{Status: HealthOK, Message: "Bar is running", LastUpdated: now}
	} else {
		components["instance"] = ComponentHealth{Status: HealthUnhealthy, Message: "Bar is not running", LastUpdated: now}
	}

	if in.configErr != nil {
		components["config"] = ComponentHealth{Status: HealthDegraded, Message: in.configErr.Error(), LastUpdated: now}
	} else {
		components["config"] = ComponentHealth{Status: HealthOK, Message: "Configuration loaded", LastUpdated: now}
	}

	stalled := stalledPanels(in.panels, now)
	if len(stalled) > 0 {
		components["panels"] = ComponentHealth{
			Status:      HealthDegraded,
			Message:     fmt.Sprintf("%d of %d panels stalled: %s", len(stalled), len(in.panels), strings.Join(stalled, ", ")),
			LastUpdated: now,
		}
	} else {
		components["panels"] = ComponentHealth{
			Status:      HealthOK,
			Message:     fmt.Sprintf("%d panels, %d updates applied", len(in.panels), in.updates),
			LastUpdated: now,
		}
	}

	if in.lastErr != nil {
		components["errors"] = ComponentHealth{Status: HealthDegraded, Message: in.lastErr.Error(), LastUpdated: now}
	} else {
		components["errors"] = ComponentHealth{Status: HealthOK, Message: "No recent errors", LastUpdated: now}
	}

	status, message := HealthOK, "All components healthy"
	switch {
	case !in.running:
		status, message = HealthUnhealthy, "Bar is not running"
	case in.configErr != nil:
		status, message = HealthDegraded, "Showing configuration error"
	case len(stalled) > 0:
		status, message = HealthDegraded, "Some panels are stalled"
	case in.lastErr != nil:
		status, message = HealthDegraded, "Running with recent errors"
	}

	return HealthCheck{
		Status:     status,
		Timestamp:  now,
		Uptime:     uptime,
		Components: components,
		Stalled:    stalled,
		Message:    message,
	}
}
