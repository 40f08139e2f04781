package server

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckResult is the outcome of probing one dependency.
type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// HealthReport is what CheckHealth returns and cmd/dbcheck prints.
type HealthReport struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

func (r HealthReport) Healthy() bool {
	return r.Status == StatusHealthy
}

// healthCheck is a single dependency check. Only required checks can make the
// overall report unhealthy.
type healthCheck struct {
	name     string
	required bool
	ping     func(ctx context.Context) error
}

var errNotConfigured = errors.New("not configured")

// CheckHealth checks the dependencies listed in the observability config.
//
// The database is required. Redis only backs the search cache, so a failing
// Redis is reported but leaves the overall status healthy. Failures are
// recorded as HealthCheckError custom events when New Relic is enabled.
func (s *Server) CheckHealth(ctx context.Context) HealthReport {
	obs := s.Config.Observability

	var checks []healthCheck
	if obs.HealthChecks.Enabled {
		for _, name := range obs.HealthChecks.Checks {
			switch name {
			case "database":
				checks = append(checks, healthCheck{name: name, required: true, ping: s.pingDatabase})
			case "redis":
				if s.Redis != nil {
					checks = append(checks, healthCheck{name: name, ping: func(ctx context.Context) error {
						return s.Redis.Ping(ctx).Err()
					}})
				}
			}
		}
	}

	return s.runHealthChecks(ctx, checks, obs.HealthChecks.Timeout)
}

func (s *Server) pingDatabase(ctx context.Context) error {
	if s.DB == nil {
		return errNotConfigured
	}
	return s.DB.Ping(ctx)
}

func (s *Server) runHealthChecks(ctx context.Context, checks []healthCheck, timeout time.Duration) HealthReport {
	start := time.Now()

	base := s.Logger
	if base == nil {
		base = nopLogger()
	}

	logger := base.With().
		Str("operation", "health_check").
		Logger()

	report := HealthReport{
		Status:      StatusHealthy,
		Timestamp:   start.UTC(),
		Environment: s.Config.Primary.Env,
		Checks:      make(map[string]CheckResult, len(checks)),
	}

	for _, p := range checks {
		result, err := runCheck(ctx, p, timeout)
		report.Checks[p.name] = result

		if err != nil {
			if p.required {
				report.Status = StatusUnhealthy
			}

			logger.Error().
				Err(err).
				Str("check", p.name).
				Str("response_time", result.ResponseTime).
				Msgf("%s health check failed", p.name)

			s.recordHealthEvent(map[string]any{
				"check_type":    p.name,
				"operation":     "health_check",
				"error_type":    p.name + "_unhealthy",
				"error_message": err.Error(),
			})
			continue
		}

		logger.Info().
			Str("check", p.name).
			Str("response_time", result.ResponseTime).
			Msgf("%s health check passed", p.name)
	}

	var event *zerolog.Event
	if report.Healthy() {
		event = logger.Info()
	} else {
		event = logger.Warn()
		s.recordHealthEvent(map[string]any{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})
	}
	event.Dur("total_duration", time.Since(start)).Str("status", report.Status).Msg("health check finished")

	return report
}

func runCheck(ctx context.Context, p healthCheck, timeout time.Duration) (CheckResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := time.Now()
	err := p.ping(ctx)
	result := CheckResult{
		Status:       StatusHealthy,
		ResponseTime: time.Since(started).String(),
	}

	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}

	return result, err
}

func (s *Server) recordHealthEvent(attrs map[string]any) {
	if app := s.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", attrs)
	}
}

// nopLogger stands in for a missing Server.Logger.
func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
