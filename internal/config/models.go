package config

import (
	"errors"
	"fmt"
)

// ErrThresholdNotFound is returned when a threshold key has no entry even
// after defaulting. This is a real configuration omission, not a parse
// failure, and aborts the evaluation cycle.
var ErrThresholdNotFound = errors.New("threshold key not found in configuration")

// Threshold keys understood by the evaluator. These are the wire names
// used in the thresholds JSON setting and must stay stable.
const (
	KeySnapshotAge    = "timestampAgeMinutes"
	KeyCPU            = "cpu"
	KeyDisk           = "disk"
	KeyMemory         = "memory"
	KeyNetworkUp      = "network_up"
	KeyNetworkDown    = "network_down"
	KeyNetworkTotal   = "network_total"
	KeyProcesses      = "processes"
	KeyUsers          = "users"
	KeyUpdates        = "updates"
	KeySystemRestart  = "system_restart"
	KeyRepoStateTool  = "linux_server_state_tool"
	KeyGlusterPeers   = "gluster_unhealthy_peers"
	KeyGlusterVolumes = "gluster_unhealthy_volumes"
)

// Severity levels used to key message frequencies and recipient lists.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Not-installed policy values for the gluster subsystem.
const (
	PolicyWarning = "warning"
	PolicyError   = "error"
	PolicyNone    = "none"
)

// Threshold is a warning/error bound pair for one metric key. Values are
// strings on the wire: plain numbers for most metrics, duration strings
// (e.g. "10d") for duration-valued ones.
type Threshold struct {
	Warning string `json:"warning"`
	Error   string `json:"error"`
}

// Config is an immutable snapshot of the resolved watchdog settings.
// It is produced once per evaluation cycle by Store.Load.
type Config struct {
	// ServerName identifies the monitored host in report headings.
	ServerName string

	// NotInstalledPolicy controls how an uninstalled gluster subsystem is
	// classified: "warning", "error" or "none". Empty means unspecified.
	NotInstalledPolicy string

	// Thresholds maps metric keys to their warning/error bounds.
	Thresholds map[string]Threshold

	// Frequencies maps severity levels to minimum resend intervals as
	// duration strings ("1h", "3d").
	Frequencies map[string]string

	// Recipient lists per severity level. Must be non-empty for every
	// level when a real delivery collaborator is active.
	InfoRecipients    []string
	WarningRecipients []string
	ErrorRecipients   []string

	// AdminToken is the administrative credential consumed by the external
	// configuration surface. The core never requires it.
	AdminToken string
}

// Threshold returns the warning/error pair for a metric key. Missing
// warning or error sub-values are normalized to "0".
func (c *Config) Threshold(key string) (Threshold, error) {
	t, ok := c.Thresholds[key]
	if !ok {
		return Threshold{}, fmt.Errorf("%w: %q", ErrThresholdNotFound, key)
	}
	if t.Warning == "" {
		t.Warning = "0"
	}
	if t.Error == "" {
		t.Error = "0"
	}
	return t, nil
}

// Frequency returns the minimum resend interval string for a severity
// level, falling back to "1h" for unknown or unset levels.
func (c *Config) Frequency(level string) string {
	if v, ok := c.Frequencies[level]; ok && v != "" {
		return v
	}
	return "1h"
}

// Recipients returns the recipient list for a severity level.
func (c *Config) Recipients(level string) []string {
	switch level {
	case LevelInfo:
		return c.InfoRecipients
	case LevelWarning:
		return c.WarningRecipients
	case LevelError:
		return c.ErrorRecipients
	default:
		return nil
	}
}
