package config

// DefaultServerName is used until an operator sets a server name.
const DefaultServerName = "Unknown - Please set serverName"

// DefaultNotInstalledPolicy applies when no policy is configured.
const DefaultNotInstalledPolicy = PolicyError

// DefaultThresholds returns the built-in fallback threshold table used
// when no thresholds are configured or the configured JSON is invalid.
func DefaultThresholds() map[string]Threshold {
	return map[string]Threshold{
		KeySnapshotAge:    {Warning: "65", Error: "185"},
		KeyCPU:            {Warning: "80", Error: "100"},
		KeyDisk:           {Warning: "75", Error: "90"},
		KeyMemory:         {Warning: "75", Error: "90"},
		KeyNetworkUp:      {Warning: "0", Error: "0"},
		KeyNetworkDown:    {Warning: "0", Error: "0"},
		KeyNetworkTotal:   {Warning: "50000000", Error: "100000000"},
		KeyProcesses:      {Warning: "150", Error: "270"},
		KeyUsers:          {Warning: "2", Error: "3"},
		KeyUpdates:        {Warning: "10", Error: "25"},
		KeySystemRestart:  {Warning: "10d", Error: "50d"},
		KeyRepoStateTool:  {Warning: "1", Error: "5"},
		KeyGlusterPeers:   {Warning: "1", Error: "2"},
		KeyGlusterVolumes: {Warning: "1", Error: "2"},
	}
}

// DefaultFrequencies returns the built-in fallback message frequency
// table per severity level.
func DefaultFrequencies() map[string]string {
	return map[string]string{
		LevelInfo:    "1h",
		LevelWarning: "1d",
		LevelError:   "3d",
	}
}
