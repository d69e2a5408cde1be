package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
calendar:
  calendar_id: booking@example.com
  credentials_file: /etc/bookdesk/sa.json
mail:
  admin_email: admin@example.com
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "Asia/Karachi", cfg.Calendar.Timezone)
	assert.Equal(t, "data/bookdesk.db", cfg.Database.Path)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval())
	assert.Equal(t, time.Duration(0), cfg.CacheTTL(), "caching off unless a TTL is set")

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Karachi", loc.String())
}

func TestLoadRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing calendar id",
			content: `
calendar:
  credentials_file: /etc/bookdesk/sa.json
mail:
  admin_email: admin@example.com
`,
		},
		{
			name: "missing credentials file",
			content: `
calendar:
  calendar_id: booking@example.com
mail:
  admin_email: admin@example.com
`,
		},
		{
			name: "missing admin email",
			content: `
calendar:
  calendar_id: booking@example.com
  credentials_file: /etc/bookdesk/sa.json
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_BOOKING_CALENDAR_ID", "primary@example.com")

	cfg, err := Load(writeConfig(t, `
calendar:
  calendar_id: ${TEST_BOOKING_CALENDAR_ID}
  credentials_file: /etc/bookdesk/sa.json
mail:
  admin_email: admin@example.com
`))
	require.NoError(t, err)
	assert.Equal(t, "primary@example.com", cfg.Calendar.CalendarID)
}

func TestLoadExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
calendar:
  calendar_id: booking@example.com
  credentials_file: /etc/bookdesk/sa.json
  timezone: UTC
  refresh_interval_minutes: 5
mail:
  sender: noreply@example.com
  admin_email: admin@example.com
redis:
  address: localhost:6379
  cache_ttl_seconds: 30
rate_limit:
  rps: 2
  burst: 4
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval())
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.Equal(t, float64(2), cfg.RateLimit.RPS)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
