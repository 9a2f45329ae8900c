package dispatch

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/serverwatch/serverwatch/internal/config"
	"github.com/serverwatch/serverwatch/internal/report"
	"github.com/serverwatch/serverwatch/pkg/timestring"
)

// Limiter applies per-channel minimum resend intervals over persisted
// last-sent timestamps. Channels are independent; the only state per
// channel is its single timestamp in the StateStore.
type Limiter struct {
	store     StateStore
	logger    zerolog.Logger
	intervals map[Channel]time.Duration
}

// LimiterConfig carries the Limiter dependencies.
type LimiterConfig struct {
	Store  StateStore
	Logger zerolog.Logger
}

// NewLimiter builds a Limiter from the resolved frequency settings. An
// interval that fails duration parsing falls back to the built-in default
// for that channel with a warning; the limiter itself never fails to
// construct.
func NewLimiter(cfg *config.Config, lc LimiterConfig) *Limiter {
	logger := lc.Logger.With().Str("component", "dispatch_limiter").Logger()
	defaults := config.DefaultFrequencies()

	intervals := make(map[Channel]time.Duration, len(Channels()))
	for _, ch := range Channels() {
		raw := cfg.Frequency(string(ch))
		interval, err := timestring.Parse(raw)
		if err != nil {
			fallback := defaults[string(ch)]
			logger.Warn().
				Err(err).
				Str("channel", string(ch)).
				Str("configured", raw).
				Str("fallback", fallback).
				Msg("unparseable channel frequency, using default")
			interval, _ = timestring.Parse(fallback)
		}
		intervals[ch] = interval
	}

	return &Limiter{
		store:     lc.Store,
		logger:    logger,
		intervals: intervals,
	}
}

// Interval reports the minimum resend interval resolved for a channel.
func (l *Limiter) Interval(ch Channel) time.Duration {
	return l.intervals[ch]
}

// ShouldSend reports whether the channel may send now, given the overall
// report severity. Info is a periodic heartbeat gated by time alone; the
// warning channel additionally requires at least warning severity and the
// error channel requires error severity.
//
// The time gate is strict: the channel becomes eligible only once more
// than the full interval has elapsed since the recorded send.
func (l *Limiter) ShouldSend(ch Channel, overall report.Severity, now time.Time) bool {
	switch ch {
	case ChannelInfo:
	case ChannelWarning:
		if overall < report.Warning {
			return false
		}
	case ChannelError:
		if overall != report.Error {
			return false
		}
	default:
		return false
	}

	last := l.store.LastSent(ch)
	return last.Add(l.intervals[ch]).Before(now)
}

// RecordSent persists now as the channel's last-sent time, overwriting any
// prior value. Callers must invoke it only after a confirmed send attempt;
// a failed delivery must leave the channel eligible.
func (l *Limiter) RecordSent(ch Channel, now time.Time) error {
	if err := l.store.RecordSent(ch, now); err != nil {
		return err
	}
	l.logger.Debug().
		Str("channel", string(ch)).
		Time("sent_at", now).
		Msg("recorded channel send")
	return nil
}
