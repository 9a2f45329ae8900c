// Package snapshot models the externally produced server metrics record.
// The watchdog only reads these documents; it never generates or mutates
// them, and the JSON field names must stay aligned with the producer.
package snapshot

// Snapshot is one server metrics record keyed by subsystem. A nil
// subsystem pointer means the block is absent from the document, which is
// itself a reportable condition for that subsystem.
type Snapshot struct {
	SystemInfo    *SystemInfo    `json:"system_info"`
	Timestamp     *Timestamp     `json:"timestamp"`
	CPU           *CPU           `json:"cpu"`
	Disk          *Disk          `json:"disk"`
	Memory        *Memory        `json:"memory"`
	Swap          *Swap          `json:"swap"`
	Processes     *Processes     `json:"processes"`
	Users         *Users         `json:"users"`
	Network       *Network       `json:"network"`
	Gluster       *Gluster       `json:"gluster"`
	Updates       *Updates       `json:"updates"`
	SystemRestart *SystemRestart `json:"system_restart"`
	StateTool     *StateTool     `json:"linux_server_state_tool"`
}

// SystemInfo identifies the reporting host.
type SystemInfo struct {
	Hostname string `json:"hostname"`
}

// Timestamp records when the snapshot was produced.
type Timestamp struct {
	Unix          int64  `json:"unix_format"`
	HumanReadable string `json:"human_readable_format"`
}

// CPU carries load figures. Percentages are strings, optionally with a
// trailing percent sign.
type CPU struct {
	Last15MinPercentage string `json:"last_15min_cpu_percentage"`
}

// Disk carries usage of the root filesystem.
type Disk struct {
	UsagePercentage string `json:"disk_usage_percentage"`
	UsageAmount     string `json:"disk_usage_amount"`
	TotalAvailable  string `json:"total_disk_avail"`
}

// Memory carries RAM usage.
type Memory struct {
	UsagePercentage string `json:"memory_usage_percentage"`
	UsedHuman       string `json:"used_memory_human"`
	TotalHuman      string `json:"total_memory_human"`
}

// Swap reports whether swapping is active. Anything other than "Off" is a
// warning condition.
type Swap struct {
	Status string `json:"swap_status"`
}

// Processes carries the process count.
type Processes struct {
	Amount string `json:"amount_processes"`
}

// Users carries the logged-in user count.
type Users struct {
	LoggedIn string `json:"logged_in_users"`
}

// Network carries vnstat-derived throughput averages. The collector needs
// a warm-up period before the averages are meaningful, signalled by
// HasEnoughData.
type Network struct {
	CollectorInstalled string `json:"is_vnstab_installed"`
	HasEnoughData      string `json:"has_vnstab_enough_data"`
	UpstreamAvgBits    string `json:"upstream_avg_bits"`
	UpstreamAvgHuman   string `json:"upstream_avg_human"`
	DownstreamAvgBits  string `json:"downstream_avg_bits"`
	DownstreamAvgHuman string `json:"downstream_avg_human"`
	TotalAvgBits       string `json:"total_network_avg_bits"`
	TotalAvgHuman      string `json:"total_network_avg_human"`
}

// Gluster carries cluster health. The per-volume slices are index-aligned
// with Volumes; inner slices may contain a single blank placeholder entry
// which readers must treat as empty.
type Gluster struct {
	Installed          string     `json:"is_gluster_installed"`
	NumberOfPeers      int        `json:"number_of_peers,string"`
	HealthyPeers       int        `json:"number_of_healthy_peers,string"`
	Peers              []string   `json:"gluster_peers"`
	NumberOfVolumes    int        `json:"number_of_volumes,string"`
	HealthyVolumes     int        `json:"number_of_healthy_volumes,string"`
	Volumes            []string   `json:"gluster_volumes"`
	UnhealthyBricks    [][]string `json:"all_unhealthy_bricks"`
	UnhealthyProcesses [][]string `json:"all_unhealthy_processes"`
	ErrorsWarnings     [][]string `json:"all_errors_warnings"`
	ActiveTasks        [][]string `json:"all_active_tasks"`
}

// IsInstalled reports whether the gluster subsystem considers itself
// installed on the host.
func (g *Gluster) IsInstalled() bool {
	return equalsTrue(g.Installed)
}

// UnhealthyPeerCount derives the number of unhealthy peers.
func (g *Gluster) UnhealthyPeerCount() int {
	return g.NumberOfPeers - g.HealthyPeers
}

// UnhealthyVolumeCount derives the number of unhealthy volumes.
func (g *Gluster) UnhealthyVolumeCount() int {
	return g.NumberOfVolumes - g.HealthyVolumes
}

// Updates carries pending package update information.
type Updates struct {
	AvailableCount  string `json:"amount_of_available_updates"`
	AvailableOutput string `json:"updates_available_output"`
}

// SystemRestart reports whether a restart is pending and for how long.
type SystemRestart struct {
	Status             string  `json:"status"`
	TimeElapsedSeconds float64 `json:"time_elapsed_seconds,string"`
	TimeElapsedHuman   string  `json:"time_elapsed_human_readable"`
}

// RestartRequired reports whether the host is waiting for a restart.
func (s *SystemRestart) RestartRequired() bool {
	return s.Status != "No restart required"
}

// StateTool reports the provisioning repository's drift from its remote.
type StateTool struct {
	RepoAccessible string `json:"repo_accessible"`
	LocalChanges   string `json:"local_changes"`
	BehindCount    int    `json:"behind_count,string"`
}

// IsRepoAccessible reports whether the remote repository was reachable.
func (s *StateTool) IsRepoAccessible() bool {
	return s.RepoAccessible == "true"
}

// HasLocalChanges reports uncommitted local modifications.
func (s *StateTool) HasLocalChanges() bool {
	return s.LocalChanges == "Yes"
}
