package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/serverwatch/serverwatch/internal/config"
	"github.com/serverwatch/serverwatch/pkg/timestring"
)

// Evaluation errors. An unparseable metric value is a reportable
// condition for that metric only; an unparseable threshold is a
// configuration error that aborts the cycle.
var (
	ErrUnparseableValue = errors.New("unparseable metric value")
	ErrBadThreshold     = errors.New("unparseable threshold value")
)

// Kind selects the comparison policy applied to one metric. The
// asymmetries between kinds (zero-disable, >= instead of >) are
// intentional source behavior encoded as policy, not inferred ad hoc.
type Kind int

const (
	// KindNumeric compares strictly greater-than against the error bound,
	// then the warning bound. A zero threshold is an ordinary bound.
	KindNumeric Kind = iota

	// KindRate compares strictly greater-than, but a bound of exactly
	// zero disables that bound (network throughput metrics default to
	// disabled).
	KindRate

	// KindCount compares greater-or-equal, with a bound of exactly zero
	// disabling that bound (cluster health counters).
	KindCount

	// KindDuration parses the value and both bounds as duration strings
	// ("10d", "1h") and compares strictly greater-than.
	KindDuration
)

// metricKinds maps threshold keys to their comparison policy.
var metricKinds = map[string]Kind{
	config.KeySnapshotAge:    KindNumeric,
	config.KeyCPU:            KindNumeric,
	config.KeyDisk:           KindNumeric,
	config.KeyMemory:         KindNumeric,
	config.KeyProcesses:      KindNumeric,
	config.KeyUsers:          KindNumeric,
	config.KeyUpdates:        KindNumeric,
	config.KeyRepoStateTool:  KindNumeric,
	config.KeyNetworkUp:      KindRate,
	config.KeyNetworkDown:    KindRate,
	config.KeyNetworkTotal:   KindRate,
	config.KeyGlusterPeers:   KindCount,
	config.KeyGlusterVolumes: KindCount,
	config.KeySystemRestart:  KindDuration,
}

// KindOf returns the comparison policy for a metric key.
func KindOf(key string) (Kind, bool) {
	kind, ok := metricKinds[key]
	return kind, ok
}

// Evaluate classifies one raw metric value against a threshold pair.
// The raw value is parsed per kind: numbers (with an optional trailing
// percent sign) for numeric, rate and count kinds, a duration string for
// the duration kind.
func Evaluate(kind Kind, raw string, t config.Threshold) (Severity, error) {
	value, err := parseValue(kind, raw)
	if err != nil {
		return OK, err
	}
	return EvaluateValue(kind, value, t)
}

// EvaluateValue classifies an already-parsed metric value. For the
// duration kind the value is a length in seconds.
func EvaluateValue(kind Kind, value float64, t config.Threshold) (Severity, error) {
	warnBound, err := parseBound(kind, t.Warning)
	if err != nil {
		return OK, err
	}
	errBound, err := parseBound(kind, t.Error)
	if err != nil {
		return OK, err
	}

	switch kind {
	case KindRate:
		if errBound != 0 && value > errBound {
			return Error, nil
		}
		if warnBound != 0 && value > warnBound {
			return Warning, nil
		}
	case KindCount:
		if errBound != 0 && value >= errBound {
			return Error, nil
		}
		if warnBound != 0 && value >= warnBound {
			return Warning, nil
		}
	default:
		if value > errBound {
			return Error, nil
		}
		if value > warnBound {
			return Warning, nil
		}
	}
	return OK, nil
}

// parseValue parses a raw metric value per kind.
func parseValue(kind Kind, raw string) (float64, error) {
	if kind == KindDuration {
		seconds, err := timestring.Seconds(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnparseableValue, raw)
		}
		return seconds, nil
	}

	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableValue, raw)
	}
	return value, nil
}

// parseBound parses one configured threshold bound per kind.
func parseBound(kind Kind, bound string) (float64, error) {
	if kind == KindDuration {
		seconds, err := timestring.Seconds(bound)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadThreshold, bound)
		}
		return seconds, nil
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(bound), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadThreshold, bound)
	}
	return value, nil
}
