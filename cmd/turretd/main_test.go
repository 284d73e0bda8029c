package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/mastercactapus/turret/config"
)

func loadWithArgs(args ...string) (*config.Config, error) {
	var cfg *config.Config
	app := newApp()
	app.Action = func(c *cli.Context) error {
		var err error
		cfg, err = loadConfig(c)
		return err
	}
	err := app.Run(append([]string{"turretd"}, args...))
	return cfg, err
}

func TestLoadConfig_FlagsBeforeValidate(t *testing.T) {
	name := filepath.Join(t.TempDir(), "turretd.yaml")
	require.NoError(t, ioutil.WriteFile(name, []byte("board:\n  port: \"\"\n"), 0644))

	_, err := loadWithArgs("--config", name)
	assert.Error(t, err)

	cfg, err := loadWithArgs("--config", name, "--serial", "/dev/ttyUSB0")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Board.Port)

	cfg, err = loadWithArgs("--config", name, "--sim", "--addr", ":9000")
	require.NoError(t, err)
	assert.True(t, cfg.Sim)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
}
