package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// InvariantChecker reports every broken engine invariant as one error.
// *wm.Manager implements it.
type InvariantChecker interface {
	CheckInvariants() error
}

// AuditorConfig holds configuration for the auditor.
type AuditorConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Auditor periodically checks the engine for state drift and logs it.
// It never repairs state; a violation is a defect to be reported.
type Auditor struct {
	interval time.Duration
	checker  InvariantChecker
	logger   *slog.Logger

	mu      sync.Mutex
	lastErr string
	passes  int
	failed  int
}

// NewAuditor creates an auditor. A non-positive interval defaults to 10s.
func NewAuditor(cfg AuditorConfig, checker InvariantChecker) *Auditor {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Auditor{
		interval: interval,
		checker:  checker,
		logger:   logger,
	}
}

// Run starts the audit loop. Blocks until context is cancelled.
func (a *Auditor) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("auditor started", "interval", a.interval)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("auditor stopped")
			return
		case <-ticker.C:
			a.AuditNow()
		}
	}
}

// AuditNow performs a single pass and returns what it found.
func (a *Auditor) AuditNow() (err error) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("auditor panic recovered", "error", r)
			err = fmt.Errorf("audit panicked: %v", r)
			a.record(err)
		}
	}()

	err = a.checker.CheckInvariants()
	a.record(err)
	return err
}

// record logs a violation once per distinct report, and logs recovery.
func (a *Auditor) record(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.passes++
	if err == nil {
		if a.lastErr != "" {
			a.logger.Info("auditor: invariants hold again")
		}
		a.lastErr = ""
		return
	}

	a.failed++
	msg := err.Error()
	if msg == a.lastErr {
		a.logger.Debug("auditor: violation persists", "error", msg)
		return
	}
	a.lastErr = msg
	a.logger.Error("auditor: invariant violation", "error", msg)
}

// Stats returns the number of passes run and how many found violations.
func (a *Auditor) Stats() (passes, failed int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.passes, a.failed
}
