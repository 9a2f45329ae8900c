package ops_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverwatch/serverwatch/internal/config"
	"github.com/serverwatch/serverwatch/internal/dispatch"
	"github.com/serverwatch/serverwatch/internal/ops"
	"github.com/serverwatch/serverwatch/internal/watchdog"
)

const snapshotDoc = `{
  "system_info": {"hostname": "alpha-node"},
  "timestamp": {"unix_format": 1700000000, "human_readable_format": "2023-11-14 22:13:20"},
  "cpu": {"last_15min_cpu_percentage": "12.5"},
  "disk": {"disk_usage_percentage": "41%", "disk_usage_amount": "82G", "total_disk_avail": "200G"},
  "memory": {"memory_usage_percentage": "63", "used_memory_human": "10G", "total_memory_human": "16G"},
  "swap": {"swap_status": "Off"},
  "processes": {"amount_processes": "143"},
  "users": {"logged_in_users": "1"},
  "network": {
    "is_vnstab_installed": "TRUE", "has_vnstab_enough_data": "TRUE",
    "upstream_avg_bits": "1200000", "upstream_avg_human": "1.2 Mbit/s",
    "downstream_avg_bits": "3400000", "downstream_avg_human": "3.4 Mbit/s",
    "total_network_avg_bits": "4600000", "total_network_avg_human": "4.6 Mbit/s"
  },
  "gluster": {
    "is_gluster_installed": "TRUE",
    "number_of_peers": "3", "number_of_healthy_peers": "3", "gluster_peers": ["peer-1: ok"],
    "number_of_volumes": "1", "number_of_healthy_volumes": "1", "gluster_volumes": ["vol-data"],
    "all_unhealthy_bricks": [[""]], "all_unhealthy_processes": [[""]],
    "all_errors_warnings": [[""]], "all_active_tasks": [[""]]
  },
  "updates": {"amount_of_available_updates": "4", "updates_available_output": "security: 2"},
  "system_restart": {"status": "No restart required", "time_elapsed_seconds": "0", "time_elapsed_human_readable": ""},
  "linux_server_state_tool": {"repo_accessible": "true", "local_changes": "No", "behind_count": "0"}
}`

func newService(t *testing.T) *watchdog.Service {
	t.Helper()
	dir := t.TempDir()

	snapshotPath := filepath.Join(dir, "system_info.json")
	require.NoError(t, os.WriteFile(snapshotPath, []byte(snapshotDoc), 0o644))
	settingsPath := filepath.Join(dir, "settings.env")
	require.NoError(t, os.WriteFile(settingsPath, []byte("infoChatIDs=100200300\n"), 0o644))

	store := config.NewStore(config.StoreConfig{
		Path:   settingsPath,
		Logger: zerolog.Nop(),
		Getenv: func(string) string { return "" },
	})

	return watchdog.NewService(watchdog.ServiceConfig{
		Store:        store,
		States:       dispatch.NewMemoryStore(),
		Deliverer:    dispatch.LogDeliverer{Logger: zerolog.Nop()},
		Logger:       zerolog.Nop(),
		SnapshotPath: snapshotPath,
		Now:          func() time.Time { return time.Unix(1700000060, 0) },
	})
}

func get(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthCheck(t *testing.T) {
	router := ops.NewRouter(ops.RouterConfig{
		Version:   "1.2.3",
		BuildTime: "2024-03-01T12:00:00Z",
		Logger:    zerolog.Nop(),
		Service:   newService(t),
	})

	rec, body := get(t, router, "/ops/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestReadinessCheck(t *testing.T) {
	service := newService(t)
	router := ops.NewRouter(ops.RouterConfig{Logger: zerolog.Nop(), Service: service})

	rec, body := get(t, router, "/ops/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "starting", body["status"])

	_, err := service.RunCycle(context.Background())
	require.NoError(t, err)

	rec, body = get(t, router, "/ops/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestCycleStatus(t *testing.T) {
	service := newService(t)
	router := ops.NewRouter(ops.RouterConfig{Logger: zerolog.Nop(), Service: service})

	result, err := service.RunCycle(context.Background())
	require.NoError(t, err)

	rec, body := get(t, router, "/ops/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["cycles_total"])
	assert.Equal(t, float64(0), body["cycles_failed"])

	last, ok := body["last_cycle"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, result.ID, last["id"])
	assert.Equal(t, "OK", last["overall"])
}
