package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/turret/turret"
)

func writeFile(t *testing.T, data string) string {
	name := filepath.Join(t.TempDir(), "turretd.yaml")
	require.NoError(t, ioutil.WriteFile(name, []byte(data), 0644))
	return name
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, turret.DefaultConfig(), cfg.TurretConfig())
	assert.True(t, cfg.Turret.LimitActiveLow)
	assert.Equal(t, 115200, cfg.Board.Baud)
}

func TestLoad_File(t *testing.T) {
	name := writeFile(t, `
turret:
  targetSpeed: 3000
  tolerance: 150
  launchHold: 750ms
  spinUpTimeout: 0s
  limitActiveLow: false
board:
  port: /dev/ttyUSB1
http:
  addr: ":8080"
`)
	cfg, err := Load(name)
	require.NoError(t, err)

	tc := cfg.TurretConfig()
	assert.Equal(t, 3000.0, tc.TargetSpeed)
	assert.Equal(t, 150.0, tc.Tolerance)
	assert.Equal(t, 750*time.Millisecond, tc.LaunchHold)
	assert.Equal(t, time.Duration(0), tc.SpinUpTimeout)
	assert.Equal(t, .5, tc.FeedPower, "unset fields keep defaults")
	assert.False(t, cfg.Turret.LimitActiveLow)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Board.Port)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TURRET_SERIAL", "/dev/ttyS3")
	t.Setenv("TURRET_ADDR", ":7000")
	t.Setenv("TURRET_SIM", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyS3", cfg.Board.Port)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.True(t, cfg.Sim)

	t.Setenv("TURRET_SIM", "maybe")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "turret:\n  targetSpeed: [1, 2]\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "turret:\n  tagetSpeed: 100\n"))
	assert.Error(t, err, "unknown keys are rejected")

}

func TestValidate(t *testing.T) {
	cfg, err := Load(writeFile(t, "turret:\n  hoodMin: 90\n  hoodMax: 10\n"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	cfg, err = Load(writeFile(t, "board:\n  port: \"\"\n"))
	require.NoError(t, err, "a missing port may still come from the command line")
	assert.Error(t, cfg.Validate())

	cfg.Sim = true
	assert.NoError(t, cfg.Validate(), "no port needed in simulation")

	cfg.Sim = false
	cfg.Board.Port = "/dev/ttyACM0"
	assert.NoError(t, cfg.Validate())

	cfg.HTTP.StatusInterval = 0
	assert.Error(t, cfg.Validate())
}
