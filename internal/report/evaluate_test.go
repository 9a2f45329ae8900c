package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverwatch/serverwatch/internal/config"
	"github.com/serverwatch/serverwatch/internal/report"
)

func TestEvaluate_Numeric(t *testing.T) {
	threshold := config.Threshold{Warning: "80", Error: "100"}

	tests := []struct {
		name string
		raw  string
		want report.Severity
	}{
		{"well below warning", "12.5", report.OK},
		{"exactly warning is ok", "80", report.OK},
		{"just above warning", "80.1", report.Warning},
		{"between bounds", "85", report.Warning},
		{"exactly error is warning", "100", report.Warning},
		{"above error", "100.5", report.Error},
		{"percent sign stripped", "85%", report.Warning},
		{"zero value", "0", report.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := report.Evaluate(report.KindNumeric, tt.raw, threshold)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_NumericZeroThresholdIsOrdinaryBound(t *testing.T) {
	// For numeric metrics zero is a normal comparison value, unlike the
	// rate and count kinds where it disables the bound.
	got, err := report.Evaluate(report.KindNumeric, "1", config.Threshold{Warning: "0", Error: "0"})
	require.NoError(t, err)
	assert.Equal(t, report.Error, got)
}

func TestEvaluate_Rate(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		threshold config.Threshold
		want      report.Severity
	}{
		{"disabled bounds never trigger", "999999999", config.Threshold{Warning: "0", Error: "0"}, report.OK},
		{"enabled error bound", "200", config.Threshold{Warning: "0", Error: "100"}, report.Error},
		{"enabled warning bound", "150", config.Threshold{Warning: "100", Error: "0"}, report.Warning},
		{"strictly greater than", "100", config.Threshold{Warning: "100", Error: "200"}, report.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := report.Evaluate(report.KindRate, tt.raw, tt.threshold)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateValue_Count(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		threshold config.Threshold
		want      report.Severity
	}{
		{"zero count is ok", 0, config.Threshold{Warning: "1", Error: "2"}, report.OK},
		{"meets warning bound inclusively", 1, config.Threshold{Warning: "1", Error: "2"}, report.Warning},
		{"meets error bound inclusively", 2, config.Threshold{Warning: "1", Error: "2"}, report.Error},
		{"zero threshold disables", 50, config.Threshold{Warning: "0", Error: "0"}, report.OK},
		{"only warning disabled", 1, config.Threshold{Warning: "0", Error: "3"}, report.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := report.EvaluateValue(report.KindCount, tt.value, tt.threshold)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateValue_Duration(t *testing.T) {
	threshold := config.Threshold{Warning: "10d", Error: "50d"}

	tests := []struct {
		name    string
		seconds float64
		want    report.Severity
	}{
		{"fresh restart", 3600, report.OK},
		{"just over warning", 10*86400 + 1, report.Warning},
		{"just over error", 50*86400 + 1, report.Error},
		{"exactly warning is ok", 10 * 86400, report.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := report.EvaluateValue(report.KindDuration, tt.seconds, threshold)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_DurationRawValue(t *testing.T) {
	got, err := report.Evaluate(report.KindDuration, "12d",
		config.Threshold{Warning: "10d", Error: "50d"})
	require.NoError(t, err)
	assert.Equal(t, report.Warning, got)
}

func TestEvaluate_UnparseableValue(t *testing.T) {
	_, err := report.Evaluate(report.KindNumeric, "not-a-number",
		config.Threshold{Warning: "1", Error: "2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrUnparseableValue)
}

func TestEvaluate_UnparseableThreshold(t *testing.T) {
	_, err := report.Evaluate(report.KindNumeric, "5",
		config.Threshold{Warning: "soon", Error: "later"})
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrBadThreshold)
}

func TestEvaluate_InvertedThresholdsAppliedFaithfully(t *testing.T) {
	// A misconfigured pair with error < warning is a caller error the
	// evaluator applies without silent correction.
	got, err := report.Evaluate(report.KindNumeric, "50",
		config.Threshold{Warning: "80", Error: "20"})
	require.NoError(t, err)
	assert.Equal(t, report.Error, got)
}

func TestKindOf(t *testing.T) {
	kind, ok := report.KindOf(config.KeyGlusterPeers)
	require.True(t, ok)
	assert.Equal(t, report.KindCount, kind)

	_, ok = report.KindOf("no-such-metric")
	assert.False(t, ok)
}
