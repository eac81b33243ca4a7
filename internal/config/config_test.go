package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mossvale.toml")
	body := `
[server]
name = "testvale"
tick_rate = "50ms"

[world]
max_x = 31
max_y = 31
seed = 99

[sim]
ticks_per_tile = 5

[database]
enabled = true
dsn = "postgres://u:p@db:5432/m"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testvale", cfg.Server.Name)
	assert.Equal(t, 50*time.Millisecond, cfg.Server.TickRate)
	assert.Equal(t, int32(31), cfg.World.MaxX)
	assert.Equal(t, int64(99), cfg.World.Seed)
	assert.Equal(t, int64(5), cfg.Sim.TicksPerTile)
	assert.True(t, cfg.Database.Enabled)

	// Untouched sections keep defaults.
	assert.Equal(t, int64(120), cfg.Sim.TicksPerHour)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadBadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nname="), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
