package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-console/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderSimulated, cfg.Provider)
	assert.Equal(t, 500*time.Millisecond, cfg.Simulated.Latency)
	assert.Equal(t, 300*time.Millisecond, cfg.Simulated.ReportLatency)
	assert.Equal(t, StorageMemory, cfg.Session.Storage)
	assert.Equal(t, AuthPassword, cfg.Auth.Mode)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Zero(t, cfg.Remote.Timeout)
	assert.Equal(t, BrokerNone, cfg.Events.Broker)
	assert.Equal(t, "omms:events", cfg.Events.Channel)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
provider: remote
remote:
  base_url: http://clinic.local/api
  timeout: 5s
  breaker:
    max_failures: 3
session:
  storage: redis
  redis_prefix: "console:"
auth:
  mode: api
  roles:
    "3": patient
    "4": nurse
`)
	t.Setenv("OMMS_REMOTE_RATE_LIMIT", "20")
	t.Setenv("OMMS_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderRemote, cfg.Provider)
	assert.Equal(t, "debug", cfg.Log.Level)

	client := cfg.Remote.ToClientConfig()
	assert.Equal(t, "http://clinic.local/api", client.BaseURL)
	assert.Equal(t, 5*time.Second, client.Timeout)
	assert.Equal(t, 20.0, client.RateLimit)
	assert.Equal(t, 3, client.Breaker.MaxFailures)
	assert.Equal(t, 30*time.Second, client.Breaker.Timeout)

	rc := cfg.Session.ToRedisConfig()
	assert.Equal(t, "console:", rc.Prefix)
	assert.Equal(t, "redis://localhost:6379/0", rc.URL)

	roles, err := cfg.RoleTable()
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, roles[1])
	assert.Equal(t, model.RolePatient, roles[3])
	assert.Equal(t, model.RoleNurse, roles[4])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown provider", "provider: postgres\n", `unknown provider "postgres"`},
		{"unknown storage", "session:\n  storage: disk\n", `unknown session storage "disk"`},
		{"unknown auth mode", "auth:\n  mode: oauth\n", `unknown auth mode "oauth"`},
		{"bad role id", "auth:\n  roles:\n    nurse: nurse\n", `auth.roles key "nurse" is not a role id`},
		{"bad role name", "auth:\n  roles:\n    \"5\": janitor\n", `unknown role "janitor"`},
		{"unknown broker", "events:\n  broker: kafka\n", `unknown events broker "kafka"`},
		{"broker without channel", "events:\n  broker: memory\n  channel: \"\"\n", "events.channel is required"},
		{"remote without url", "provider: remote\nremote:\n  base_url: \"\"\n", "remote.base_url is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
