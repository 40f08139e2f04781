package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/lightbnb/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func testServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	return &Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}, &buf
}

func TestRunHealthChecks(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name        string
		checks      []healthCheck
		wantStatus  string
		wantFailing []string
	}{
		{
			name:       "no checks",
			wantStatus: StatusHealthy,
		},
		{
			name: "all passing",
			checks: []healthCheck{
				{name: "database", required: true, ping: func(context.Context) error { return nil }},
				{name: "redis", ping: func(context.Context) error { return nil }},
			},
			wantStatus: StatusHealthy,
		},
		{
			name: "optional failure stays healthy",
			checks: []healthCheck{
				{name: "database", required: true, ping: func(context.Context) error { return nil }},
				{name: "redis", ping: func(context.Context) error { return boom }},
			},
			wantStatus:  StatusHealthy,
			wantFailing: []string{"redis"},
		},
		{
			name: "required failure",
			checks: []healthCheck{
				{name: "database", required: true, ping: func(context.Context) error { return boom }},
			},
			wantStatus:  StatusUnhealthy,
			wantFailing: []string{"database"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := testServer(t)

			report := s.runHealthChecks(context.Background(), tt.checks, time.Second)
			if report.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", report.Status, tt.wantStatus)
			}
			if report.Environment != "test" {
				t.Errorf("Environment = %q", report.Environment)
			}
			if len(report.Checks) != len(tt.checks) {
				t.Errorf("len(Checks) = %d, want %d", len(report.Checks), len(tt.checks))
			}
			for _, name := range tt.wantFailing {
				if c := report.Checks[name]; c.Status != StatusUnhealthy || c.Error != boom.Error() {
					t.Errorf("check %s = %+v", name, c)
				}
			}
		})
	}
}

func TestRunCheck_AppliesTimeout(t *testing.T) {
	p := healthCheck{name: "slow", ping: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	result, err := runCheck(context.Background(), p, 10*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %q", result.Status)
	}
}

func TestCheckHealth_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	s, buf := testServer(t)
	s.Config.Observability.HealthChecks.Checks = []string{"redis"}
	s.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { s.Redis.Close() })

	report := s.CheckHealth(context.Background())
	if !report.Healthy() || report.Checks["redis"].Status != StatusHealthy {
		t.Fatalf("report = %+v", report)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"message":"redis health check passed"`)) {
		t.Errorf("missing log line in %s", buf.String())
	}

	mr.Close()

	report = s.CheckHealth(context.Background())
	if !report.Healthy() {
		t.Error("redis failure must not make the report unhealthy")
	}
	if report.Checks["redis"].Status != StatusUnhealthy {
		t.Errorf("redis check = %+v", report.Checks["redis"])
	}
}

func TestCheckHealth_DatabaseMissing(t *testing.T) {
	s, _ := testServer(t)
	s.Config.Observability.HealthChecks.Checks = []string{"database", "redis"}

	report := s.CheckHealth(context.Background())
	if report.Healthy() {
		t.Error("missing database must be unhealthy")
	}
	if _, ok := report.Checks["redis"]; ok {
		t.Error("redis is not configured and must not be checked")
	}
	if report.Checks["database"].Error != errNotConfigured.Error() {
		t.Errorf("database check = %+v", report.Checks["database"])
	}
}

func TestCheckHealth_Disabled(t *testing.T) {
	s, _ := testServer(t)
	s.Config.Observability.HealthChecks.Enabled = false

	report := s.CheckHealth(context.Background())
	if !report.Healthy() || len(report.Checks) != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestHealthReport_JSON(t *testing.T) {
	report := HealthReport{
		Status:      StatusUnhealthy,
		Environment: "local",
		Checks: map[string]CheckResult{
			"database": {Status: StatusUnhealthy, ResponseTime: "1ms", Error: "refused"},
		},
	}

	b, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Error string `json:"error"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusUnhealthy || out.Checks["database"].Error != "refused" {
		t.Errorf("decoded %+v", out)
	}
}

func TestShutdown_NilDependencies(t *testing.T) {
	s, _ := testServer(t)
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
