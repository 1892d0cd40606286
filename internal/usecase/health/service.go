package health

import (
	"context"
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain/platform"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Search still answers: every dependency has a fallback.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckDisabled marks a component switched off in config.
	CheckDisabled CheckResult = "disabled"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Sources []platform.Platform
}

// Service coordinates health checks.
type Service struct {
	store    StorePinger
	rewriter RewriterChecker
	sources  []platform.Platform
	timeout  time.Duration
}

// New creates a Service. rewriter can be nil when query rewriting is disabled.
func New(store StorePinger, rewriter RewriterChecker, sources []platform.Platform) *Service {
	return &Service{store: store, rewriter: rewriter, sources: sources, timeout: DefaultCheckTimeout}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["store"] = s.run(ctx, s.store.Ping)

	if s.rewriter != nil {
		checks["rewriter"] = s.run(ctx, s.rewriter.HealthCheck)
	} else {
		checks["rewriter"] = CheckDisabled
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if len(s.sources) == 0 {
		status = Degraded
	}

	return Report{Status: status, Checks: checks, Sources: s.sources}
}

func (s *Service) run(ctx context.Context, check func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := check(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
