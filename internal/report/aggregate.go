package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serverwatch/serverwatch/internal/config"
	"github.com/serverwatch/serverwatch/internal/snapshot"
)

// Metric labels in report order.
const (
	labelHostname      = "Hostname"
	labelTimestamp     = "Timestamp"
	labelCPU           = "CPU"
	labelDisk          = "Disk"
	labelMemory        = "Memory"
	labelSwap          = "Swap Status"
	labelProcesses     = "Processes"
	labelUsers         = "Logged In Users"
	labelNetwork       = "Network"
	labelNetworkUp     = "Network Upstream"
	labelNetworkDown   = "Network Downstream"
	labelNetworkTotal  = "Network Total"
	labelGluster       = "Gluster"
	labelGlusterPeers  = "Gluster Peers"
	labelGlusterVols   = "Gluster Volumes"
	labelUpdates       = "Available Updates"
	labelSystemRestart = "System Restart"
	labelStateTool     = "Linux Server State Tool"
)

// Aggregate folds one metrics snapshot and a resolved configuration into
// a Report. It walks a fixed metric sequence so line order never depends
// on map iteration. It is a pure function of its inputs; the caller
// supplies the evaluation time.
//
// A missing threshold entry for a core metric is a configuration omission
// and aborts the aggregation. Missing snapshot subsystems and unparseable
// values degrade to error-severity lines instead.
func Aggregate(snap *snapshot.Snapshot, cfg *config.Config, now time.Time) (*Report, error) {
	b := &builder{
		snap:   snap,
		cfg:    cfg,
		now:    now,
		report: &Report{ServerName: cfg.ServerName},
	}

	steps := []func() error{
		b.hostname,
		b.timestamp,
		b.cpu,
		b.disk,
		b.memory,
		b.swap,
		b.processes,
		b.users,
		b.network,
		b.gluster,
		b.updates,
		b.systemRestart,
		b.stateTool,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return b.report, nil
}

type builder struct {
	snap   *snapshot.Snapshot
	cfg    *config.Config
	now    time.Time
	report *Report
}

func (b *builder) add(line Line) {
	switch line.Severity {
	case Warning:
		b.report.HasWarning = true
	case Error:
		b.report.HasError = true
	}
	b.report.Lines = append(b.report.Lines, line)
}

// missing records the absence of a whole subsystem block. This is always
// an error regardless of any policy setting, because it indicates a
// broken snapshot producer rather than an intentional absence.
func (b *builder) missing(label, subsystem string) {
	b.add(Line{
		Label:    label,
		Value:    fmt.Sprintf("No %s info in server info array", subsystem),
		Severity: Error,
	})
}

// evaluated looks up a metric's thresholds, classifies the raw value and
// appends a line carrying the display text. An unparseable raw value
// degrades to an error line; a missing or unparseable threshold aborts.
func (b *builder) evaluated(key, label, raw, display string) error {
	t, err := b.cfg.Threshold(key)
	if err != nil {
		return err
	}
	kind, _ := KindOf(key)

	sev, err := Evaluate(kind, raw, t)
	if err != nil {
		if errors.Is(err, ErrUnparseableValue) {
			b.add(Line{
				Label:    label,
				Value:    fmt.Sprintf("Unparseable value %q", raw),
				Severity: Error,
			})
			return nil
		}
		return fmt.Errorf("threshold %q: %w", key, err)
	}

	b.add(Line{Label: label, Value: display, Severity: sev})
	return nil
}

func (b *builder) hostname() error {
	info := b.snap.SystemInfo
	if info == nil {
		b.missing(labelHostname, "system")
		return nil
	}
	b.add(Line{Label: labelHostname, Value: info.Hostname, Severity: OK})
	return nil
}

func (b *builder) timestamp() error {
	ts := b.snap.Timestamp
	if ts == nil {
		b.missing(labelTimestamp, "timestamp")
		return nil
	}

	t, err := b.cfg.Threshold(config.KeySnapshotAge)
	if err != nil {
		return err
	}

	// Thresholds are minutes of snapshot age.
	ageMinutes := b.now.Sub(time.Unix(ts.Unix, 0)).Minutes()
	sev, err := EvaluateValue(KindNumeric, ageMinutes, t)
	if err != nil {
		return fmt.Errorf("threshold %q: %w", config.KeySnapshotAge, err)
	}

	b.add(Line{Label: labelTimestamp, Value: ts.HumanReadable, Severity: sev})
	return nil
}

func (b *builder) cpu() error {
	cpu := b.snap.CPU
	if cpu == nil {
		b.missing(labelCPU, "cpu")
		return nil
	}
	raw := cpu.Last15MinPercentage
	return b.evaluated(config.KeyCPU, labelCPU, raw, percentDisplay(raw))
}

func (b *builder) disk() error {
	disk := b.snap.Disk
	if disk == nil {
		b.missing(labelDisk, "disk")
		return nil
	}
	display := fmt.Sprintf("%s (%s / %s)",
		disk.UsagePercentage, disk.UsageAmount, disk.TotalAvailable)
	return b.evaluated(config.KeyDisk, labelDisk, disk.UsagePercentage, display)
}

func (b *builder) memory() error {
	mem := b.snap.Memory
	if mem == nil {
		b.missing(labelMemory, "memory")
		return nil
	}
	display := fmt.Sprintf("%s (%s / %s)",
		percentDisplay(mem.UsagePercentage), mem.UsedHuman, mem.TotalHuman)
	return b.evaluated(config.KeyMemory, labelMemory, mem.UsagePercentage, display)
}

func (b *builder) swap() error {
	swap := b.snap.Swap
	if swap == nil {
		b.missing(labelSwap, "swap")
		return nil
	}

	// Any active swapping is a warning; there are no thresholds here.
	sev := OK
	if swap.Status != "Off" {
		sev = Warning
	}
	b.add(Line{Label: labelSwap, Value: swap.Status, Severity: sev})
	return nil
}

func (b *builder) processes() error {
	procs := b.snap.Processes
	if procs == nil {
		b.missing(labelProcesses, "processes")
		return nil
	}
	return b.evaluated(config.KeyProcesses, labelProcesses, procs.Amount, procs.Amount)
}

func (b *builder) users() error {
	users := b.snap.Users
	if users == nil {
		b.missing(labelUsers, "users")
		return nil
	}
	return b.evaluated(config.KeyUsers, labelUsers, users.LoggedIn, users.LoggedIn)
}

// network applies the three-way availability gate before evaluating the
// throughput triad: collector missing is an error, a collector still
// warming up is a warning, and missing triad thresholds are an error.
func (b *builder) network() error {
	net := b.snap.Network
	if net == nil {
		b.missing(labelNetwork, "network")
		return nil
	}

	if !net.IsCollectorInstalled() {
		b.add(Line{Label: labelNetwork, Value: "Vnstab is not enabled", Severity: Error})
		return nil
	}
	if !net.EnoughData() {
		b.add(Line{Label: labelNetwork, Value: "Vnstab does not have enough data yet", Severity: Warning})
		return nil
	}

	type rateMetric struct {
		key   string
		label string
		bits  string
		human string
	}
	triad := []rateMetric{
		{config.KeyNetworkUp, labelNetworkUp, net.UpstreamAvgBits, net.UpstreamAvgHuman},
		{config.KeyNetworkDown, labelNetworkDown, net.DownstreamAvgBits, net.DownstreamAvgHuman},
		{config.KeyNetworkTotal, labelNetworkTotal, net.TotalAvgBits, net.TotalAvgHuman},
	}

	for _, m := range triad {
		if _, err := b.cfg.Threshold(m.key); err != nil {
			b.add(Line{Label: labelNetwork, Value: "No network thresholds in config", Severity: Error})
			return nil
		}
	}

	for _, m := range triad {
		if err := b.evaluated(m.key, m.label, m.bits, m.human); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) gluster() error {
	gls := b.snap.Gluster
	if gls == nil {
		b.missing(labelGluster, "gluster")
		return nil
	}

	if !gls.IsInstalled() {
		b.notInstalledGluster()
		return nil
	}

	for _, key := range []string{config.KeyGlusterPeers, config.KeyGlusterVolumes} {
		if _, err := b.cfg.Threshold(key); err != nil {
			b.add(Line{Label: labelGluster, Value: "No gluster thresholds in config", Severity: Error})
			return nil
		}
	}

	if err := b.glusterPeers(gls); err != nil {
		return err
	}
	return b.glusterVolumes(gls)
}

// notInstalledGluster maps the configured policy to a severity instead of
// applying thresholds. An unset policy demands explicit configuration and
// an unrecognized one is called out as invalid; both classify as errors.
func (b *builder) notInstalledGluster() {
	msg := "Gluster is not installed. "
	var sev Severity

	switch strings.ToUpper(b.cfg.NotInstalledPolicy) {
	case "WARNING":
		sev = Warning
	case "ERROR":
		sev = Error
	case "NONE":
		sev = OK
	case "":
		msg += "Unspecified config value. Please specify 'warning', 'error', or 'none' for gluster_not_installed_handling."
		sev = Error
	default:
		msg += "Invalid config value. Please specify 'warning', 'error', or 'none' for gluster_not_installed_handling."
		sev = Error
	}

	b.add(Line{Label: labelGluster, Value: msg, Severity: sev})
}

func (b *builder) glusterPeers(gls *snapshot.Gluster) error {
	t, err := b.cfg.Threshold(config.KeyGlusterPeers)
	if err != nil {
		return err
	}

	unhealthy := gls.UnhealthyPeerCount()
	sev, err := EvaluateValue(KindCount, float64(unhealthy), t)
	if err != nil {
		return fmt.Errorf("threshold %q: %w", config.KeyGlusterPeers, err)
	}

	line := Line{
		Label: labelGlusterPeers,
		Value: fmt.Sprintf("Healthy: %d / Total: %d",
			gls.HealthyPeers, gls.NumberOfPeers),
		Severity: sev,
	}
	if unhealthy != 0 {
		line.Detail = dropBlank(gls.Peers)
	}
	b.add(line)
	return nil
}

func (b *builder) glusterVolumes(gls *snapshot.Gluster) error {
	t, err := b.cfg.Threshold(config.KeyGlusterVolumes)
	if err != nil {
		return err
	}

	unhealthy := gls.UnhealthyVolumeCount()
	sev, err := EvaluateValue(KindCount, float64(unhealthy), t)
	if err != nil {
		return fmt.Errorf("threshold %q: %w", config.KeyGlusterVolumes, err)
	}

	line := Line{
		Label: labelGlusterVols,
		Value: fmt.Sprintf("Healthy: %d / Total: %d",
			gls.HealthyVolumes, gls.NumberOfVolumes),
		Severity: sev,
	}
	if unhealthy != 0 {
		for i, name := range gls.Volumes {
			line.Volumes = append(line.Volumes, VolumeDetail{
				Name:               name,
				UnhealthyBricks:    dropBlank(nested(gls.UnhealthyBricks, i)),
				UnhealthyProcesses: dropBlank(nested(gls.UnhealthyProcesses, i)),
				ErrorsWarnings:     dropBlank(nested(gls.ErrorsWarnings, i)),
				ActiveTasks:        dropBlank(nested(gls.ActiveTasks, i)),
			})
		}
	}
	b.add(line)
	return nil
}

func (b *builder) updates() error {
	updates := b.snap.Updates
	if updates == nil {
		b.missing(labelUpdates, "updates")
		return nil
	}
	display := fmt.Sprintf("%s (%s)", updates.AvailableCount, updates.AvailableOutput)
	return b.evaluated(config.KeyUpdates, labelUpdates, updates.AvailableCount, display)
}

func (b *builder) systemRestart() error {
	restart := b.snap.SystemRestart
	if restart == nil {
		b.missing(labelSystemRestart, "system_restart")
		return nil
	}

	t, err := b.cfg.Threshold(config.KeySystemRestart)
	if err != nil {
		return err
	}

	sev, err := EvaluateValue(KindDuration, restart.TimeElapsedSeconds, t)
	if err != nil {
		return fmt.Errorf("threshold %q: %w", config.KeySystemRestart, err)
	}

	display := "No system restart required"
	if restart.RestartRequired() {
		display = fmt.Sprintf("System restart required for %s", restart.TimeElapsedHuman)
	}
	b.add(Line{Label: labelSystemRestart, Value: display, Severity: sev})
	return nil
}

// stateTool reports drift of the provisioning repository. Only the
// behind-count is thresholded, and only when non-zero; an unreachable
// remote shows up in the text without raising the severity.
func (b *builder) stateTool() error {
	tool := b.snap.StateTool
	if tool == nil {
		b.missing(labelStateTool, "linux_server_state_tool")
		return nil
	}

	t, err := b.cfg.Threshold(config.KeyRepoStateTool)
	if err != nil {
		return err
	}

	sev := OK
	var info strings.Builder

	if tool.IsRepoAccessible() {
		if tool.HasLocalChanges() {
			info.WriteString("Uncommitted local changes, ")
		}
		if tool.BehindCount > 0 {
			sev, err = EvaluateValue(KindNumeric, float64(tool.BehindCount), t)
			if err != nil {
				return fmt.Errorf("threshold %q: %w", config.KeyRepoStateTool, err)
			}
			fmt.Fprintf(&info, "Repo updateable. %d commits behind.", tool.BehindCount)
		} else {
			info.WriteString("Tool is up to date")
		}
	} else {
		info.WriteString("Remote repo Not accessible!! Check connection!! repo_accessible: ")
		info.WriteString(tool.RepoAccessible)
	}

	b.add(Line{Label: labelStateTool, Value: info.String(), Severity: sev})
	return nil
}

// percentDisplay appends a percent sign unless the raw value already
// carries one.
func percentDisplay(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.HasSuffix(v, "%") {
		return v
	}
	return v + "%"
}

// nested indexes into an index-aligned nested slice, tolerating producer
// documents whose inner slices are shorter than the volume list.
func nested(values [][]string, i int) []string {
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}

// dropBlank filters blank entries, in particular the single empty-string
// placeholder the producer emits for "no entries".
func dropBlank(items []string) []string {
	var kept []string
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			kept = append(kept, item)
		}
	}
	return kept
}
