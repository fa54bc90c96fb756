package health

import (
	"context"
	"errors"
	"testing"
)

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(_ context.Context) error { return s.err }

type stubPinger struct{ err error }

func (s stubPinger) Ping(_ context.Context) error { return s.err }

func TestCheck_AllHealthy(t *testing.T) {
	report := New(stubChecker{}, stubPinger{}).Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %q, want %q", report.Status, Healthy)
	}
	if report.Checks["embedding"] != CheckOK || report.Checks["cache"] != CheckOK {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestCheck_EmbeddingDown(t *testing.T) {
	report := New(stubChecker{err: errors.New("unreachable")}, nil).Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %q, want %q", report.Status, Degraded)
	}
	if report.Checks["embedding"] != CheckError {
		t.Errorf("embedding check = %q, want error", report.Checks["embedding"])
	}
}

func TestCheck_NoCacheConfigured(t *testing.T) {
	report := New(stubChecker{}, nil).Check(context.Background())

	if _, ok := report.Checks["cache"]; ok {
		t.Error("cache check should be absent when no cache is configured")
	}
	if report.Status != Healthy {
		t.Errorf("status = %q, want %q", report.Status, Healthy)
	}
}
