// Package telemetry records per-execution outcomes for later inspection:
// a running in-memory total for the current process, and a daily
// JSON-lines file on disk for anything longer-lived than one process.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ifruncillo/llmsandbox/pkg/result"
)

// ExecutionRecord is one entry in the daily telemetry log.
type ExecutionRecord struct {
	SessionID          string             `json:"session_id,omitempty"`
	Runtime            result.RuntimeType `json:"runtime"`
	StartTime          time.Time          `json:"start_time"`
	EndTime            time.Time          `json:"end_time"`
	DurationMs         int64              `json:"duration_ms"`
	Success            bool               `json:"success"`
	Trapped            bool               `json:"trapped"`
	FuelBudget         uint64             `json:"fuel_budget"`
	FuelConsumed       *uint64            `json:"fuel_consumed,omitempty"`
	UtilizationPercent float64            `json:"utilization_percent,omitempty"`
	ErrorKind          string             `json:"error_kind,omitempty"`
}

// Tracker accumulates running totals for the current process and appends
// every record it sees to a daily JSONL file under dir.
type Tracker struct {
	mu sync.RWMutex

	dir          string
	sessionStart time.Time

	completed         int
	failed            int
	totalFuelConsumed uint64
	totalDuration     time.Duration

	fuel *RollingFuelMonitor
}

// NewTracker returns a Tracker appending to dir, creating it if needed. An
// empty dir resolves to hostfs.DefaultTelemetryRoot() at the call site;
// this package stays agnostic of that default so it has no import-cycle
// risk with hostfs's own consumers.
func NewTracker(dir string) (*Tracker, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("telemetry: creating telemetry dir: %w", err)
	}
	return &Tracker{dir: dir, sessionStart: time.Now(), fuel: NewRollingFuelMonitor(60)}, nil
}

// Record updates the running totals and appends rec to today's JSONL
// file. A write failure is returned but never represents a failure of the
// execution itself — callers should log and continue.
func (t *Tracker) Record(rec ExecutionRecord) error {
	t.mu.Lock()
	if rec.Success {
		t.completed++
	} else {
		t.failed++
	}
	t.totalDuration += time.Duration(rec.DurationMs) * time.Millisecond
	if rec.FuelConsumed != nil {
		t.totalFuelConsumed += *rec.FuelConsumed
	}
	if rec.UtilizationPercent > 0 {
		t.fuel.Sample(rec.UtilizationPercent)
	}
	t.mu.Unlock()

	return t.appendRecord(rec)
}

// Stats are the running totals for the current process's lifetime.
type Stats struct {
	Completed         int
	Failed            int
	TotalDuration     time.Duration
	TotalFuelConsumed uint64
	SessionHours      float64
}

// GetStats returns a snapshot of the running totals.
func (t *Tracker) GetStats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Stats{
		Completed:         t.completed,
		Failed:            t.failed,
		TotalDuration:     t.totalDuration,
		TotalFuelConsumed: t.totalFuelConsumed,
		SessionHours:      time.Since(t.sessionStart).Hours(),
	}
}

// AverageFuelUtilization reports the rolling average utilization_percent
// across the most recent executions that had known fuel consumption.
func (t *Tracker) AverageFuelUtilization() float64 {
	return t.fuel.Average()
}

func (t *Tracker) appendRecord(rec ExecutionRecord) error {
	filename := fmt.Sprintf("executions_%s.jsonl", time.Now().Format("2006-01-02"))
	path := filepath.Join(t.dir, filename)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("telemetry: opening daily log: %w", err)
	}
	defer f.Close()

	b, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("telemetry: marshaling record: %w", err)
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("telemetry: writing record: %w", err)
	}
	return nil
}
