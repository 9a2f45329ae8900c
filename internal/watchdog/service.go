// Package watchdog runs the periodic evaluation cycle: resolve
// configuration, read the metrics snapshot, aggregate severities, compose
// the report and dispatch it per channel.
package watchdog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/serverwatch/serverwatch/internal/config"
	"github.com/serverwatch/serverwatch/internal/dispatch"
	"github.com/serverwatch/serverwatch/internal/report"
	"github.com/serverwatch/serverwatch/internal/snapshot"
	"github.com/serverwatch/serverwatch/internal/telemetry"
)

// ErrNoRecipients is returned when a channel is due to send but its
// recipient list is empty and the service requires recipients.
var ErrNoRecipients = errors.New("no recipients configured for eligible channel")

// DefaultInterval is how often a cycle runs when not configured.
const DefaultInterval = 5 * time.Minute

// ServiceConfig holds dependencies for creating a Service.
type ServiceConfig struct {
	Store        *config.Store
	States       dispatch.StateStore
	Deliverer    dispatch.Deliverer
	Logger       zerolog.Logger
	SnapshotPath string
	Interval     time.Duration

	// Instruments exports cycle measurements; nil disables them.
	Instruments *telemetry.CycleInstruments

	// RequireRecipients makes an eligible channel with an empty recipient
	// list a cycle failure instead of a silent skip.
	RequireRecipients bool

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service drives watchdog cycles.
type Service struct {
	store        *config.Store
	states       dispatch.StateStore
	deliverer    dispatch.Deliverer
	logger       zerolog.Logger
	snapshotPath string
	interval     time.Duration
	requireRcpts bool
	instruments  *telemetry.CycleInstruments
	now          func() time.Time

	mu      sync.RWMutex
	last    *CycleResult
	metrics Metrics
}

// Metrics tracks cycle statistics.
type Metrics struct {
	CyclesTotal       int64
	CyclesFailed      int64
	ReportsSent       map[dispatch.Channel]int64
	LastCycleAt       time.Time
	LastCycleDuration time.Duration
}

// CycleResult summarizes one completed cycle.
type CycleResult struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Overall   report.Severity
	Sent      []dispatch.Channel
	Message   string
}

// NewService creates a watchdog service.
func NewService(cfg ServiceConfig) *Service {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		store:        cfg.Store,
		states:       cfg.States,
		deliverer:    cfg.Deliverer,
		logger:       cfg.Logger.With().Str("component", "watchdog").Logger(),
		snapshotPath: cfg.SnapshotPath,
		interval:     interval,
		requireRcpts: cfg.RequireRecipients,
		instruments:  cfg.Instruments,
		now:          now,
		metrics:      Metrics{ReportsSent: make(map[dispatch.Channel]int64)},
	}
}

// Run executes cycles until the context is cancelled. The first cycle
// starts immediately; cycles never overlap. A failed cycle is logged and
// the loop continues; only context cancellation stops it.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.interval).
		Str("snapshot_path", s.snapshotPath).
		Msg("watchdog started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunCycle(ctx); err != nil {
			s.logger.Error().Err(err).Msg("watchdog cycle failed")
		}

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("watchdog stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle executes a single evaluation cycle. Configuration is resolved
// fresh so settings edits apply on the next cycle without a restart.
func (s *Service) RunCycle(ctx context.Context) (*CycleResult, error) {
	started := s.now()
	result := &CycleResult{
		ID:        uuid.New().String(),
		StartedAt: started,
	}
	logger := s.logger.With().Str("cycle_id", result.ID).Logger()

	cfg := s.store.Load()

	snap, err := snapshot.Load(s.snapshotPath)
	if err != nil {
		s.finishCycle(ctx, result, false)
		return result, fmt.Errorf("snapshot read failed: %w", err)
	}

	rep, err := report.Aggregate(snap, cfg, started)
	if err != nil {
		s.finishCycle(ctx, result, false)
		return result, fmt.Errorf("report aggregation failed: %w", err)
	}
	result.Overall = rep.Overall()
	result.Message = report.Render(rep)

	logger.Info().
		Str("server", rep.ServerName).
		Str("overall", result.Overall.String()).
		Bool("has_warning", rep.HasWarning).
		Bool("has_error", rep.HasError).
		Msg("snapshot evaluated")

	limiter := dispatch.NewLimiter(cfg, dispatch.LimiterConfig{
		Store:  s.states,
		Logger: logger,
	})

	var dispatchErrs []error
	for _, ch := range dispatch.Channels() {
		if !limiter.ShouldSend(ch, result.Overall, started) {
			continue
		}
		if err := s.send(ctx, logger, limiter, cfg, ch, result); err != nil {
			dispatchErrs = append(dispatchErrs, err)
		}
	}

	err = errors.Join(dispatchErrs...)
	s.finishCycle(ctx, result, err == nil)
	return result, err
}

func (s *Service) send(
	ctx context.Context,
	logger zerolog.Logger,
	limiter *dispatch.Limiter,
	cfg *config.Config,
	ch dispatch.Channel,
	result *CycleResult,
) error {
	recipients := cfg.Recipients(string(ch))
	if len(recipients) == 0 {
		if s.requireRcpts {
			return fmt.Errorf("%w: %s", ErrNoRecipients, ch)
		}
		logger.Debug().Str("channel", string(ch)).Msg("channel due but has no recipients, skipping")
		return nil
	}

	if err := s.deliverer.Send(ctx, recipients, result.Message); err != nil {
		// An unrecorded failed send leaves the channel eligible next cycle.
		return fmt.Errorf("delivery on %s channel failed: %w", ch, err)
	}
	if err := limiter.RecordSent(ch, result.StartedAt); err != nil {
		return err
	}

	result.Sent = append(result.Sent, ch)
	s.instruments.RecordSent(ctx, string(ch))
	logger.Info().
		Str("channel", string(ch)).
		Int("recipients", len(recipients)).
		Msg("report sent")
	return nil
}

func (s *Service) finishCycle(ctx context.Context, result *CycleResult, ok bool) {
	result.Duration = s.now().Sub(result.StartedAt)
	s.instruments.RecordCycle(ctx, result.Duration, ok)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = result
	s.metrics.CyclesTotal++
	if !ok {
		s.metrics.CyclesFailed++
	}
	for _, ch := range result.Sent {
		s.metrics.ReportsSent[ch]++
	}
	s.metrics.LastCycleAt = result.StartedAt
	s.metrics.LastCycleDuration = result.Duration
}

// LastResult returns the most recent cycle result, or nil before the
// first cycle completes.
func (s *Service) LastResult() *CycleResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// GetMetrics returns a copy of the current metrics.
func (s *Service) GetMetrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sent := make(map[dispatch.Channel]int64, len(s.metrics.ReportsSent))
	for ch, n := range s.metrics.ReportsSent {
		sent[ch] = n
	}
	return Metrics{
		CyclesTotal:       s.metrics.CyclesTotal,
		CyclesFailed:      s.metrics.CyclesFailed,
		ReportsSent:       sent,
		LastCycleAt:       s.metrics.LastCycleAt,
		LastCycleDuration: s.metrics.LastCycleDuration,
	}
}
