// Package config loads the turretd configuration from defaults, an
// optional YAML file and the environment.
package config

import (
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/mastercactapus/turret/link"
	"github.com/mastercactapus/turret/turret"
)

type Config struct {
	Turret TurretConfig `yaml:"turret"`
	Board  BoardConfig  `yaml:"board"`
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`

	// Sim runs against simulated hardware instead of the board.
	Sim bool `yaml:"sim"`
}

type TurretConfig struct {
	TargetSpeed   float64       `yaml:"targetSpeed"`
	Tolerance     float64       `yaml:"tolerance"`
	FeedPower     float64       `yaml:"feedPower"`
	LaunchHold    time.Duration `yaml:"launchHold"`
	TickPeriod    time.Duration `yaml:"tickPeriod"`
	SpinUpTimeout time.Duration `yaml:"spinUpTimeout"`
	RotationScale float64       `yaml:"rotationScale"`
	HoodScale     float64       `yaml:"hoodScale"`
	HoodMin       float64       `yaml:"hoodMin"`
	HoodMax       float64       `yaml:"hoodMax"`

	// LimitActiveLow means the limit input reads false at the limit.
	LimitActiveLow bool `yaml:"limitActiveLow"`
}

type BoardConfig struct {
	Port           string        `yaml:"port"`
	Baud           int           `yaml:"baud"`
	CommandTimeout time.Duration `yaml:"commandTimeout"`
	PollInterval   time.Duration `yaml:"pollInterval"`
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	StatusInterval time.Duration `yaml:"statusInterval"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	t := turret.DefaultConfig()
	b := link.DefaultConfig()
	return &Config{
		Turret: TurretConfig{
			TargetSpeed:    t.TargetSpeed,
			Tolerance:      t.Tolerance,
			FeedPower:      t.FeedPower,
			LaunchHold:     t.LaunchHold,
			TickPeriod:     t.TickPeriod,
			SpinUpTimeout:  t.SpinUpTimeout,
			RotationScale:  t.RotationScale,
			HoodScale:      t.HoodScale,
			HoodMin:        t.HoodMin,
			HoodMax:        t.HoodMax,
			LimitActiveLow: true,
		},
		Board: BoardConfig{
			Port:           "/dev/ttyACM0",
			Baud:           115200,
			CommandTimeout: b.CommandTimeout,
			PollInterval:   b.PollInterval,
		},
		HTTP: HTTPConfig{
			Addr:           ":9091",
			StatusInterval: time.Second,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads the file at path (if not empty) over the defaults, then
// applies environment overrides. The result is not validated, since
// command line flags may still change it; call Validate once they have.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		err = yaml.UnmarshalStrict(data, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	}

	err := applyEnv(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("TURRET_SERIAL"); port != "" {
		cfg.Board.Port = port
	}
	if addr := os.Getenv("TURRET_ADDR"); addr != "" {
		cfg.HTTP.Addr = addr
	}
	if s := os.Getenv("TURRET_SIM"); s != "" {
		sim, err := strconv.ParseBool(s)
		if err != nil {
			return errors.Wrap(err, "TURRET_SIM")
		}
		cfg.Sim = sim
	}
	return nil
}

func (cfg *Config) Validate() error {
	err := cfg.TurretConfig().Validate()
	if err != nil {
		return errors.Wrap(err, "turret")
	}
	if !cfg.Sim {
		if cfg.Board.Port == "" {
			return errors.New("board: port is required")
		}
		if cfg.Board.Baud <= 0 {
			return errors.Errorf("board: invalid baud rate %d", cfg.Board.Baud)
		}
	}
	if cfg.Board.CommandTimeout <= 0 || cfg.Board.PollInterval <= 0 {
		return errors.New("board: timeouts must be positive")
	}
	if cfg.HTTP.StatusInterval <= 0 {
		return errors.New("http: status interval must be positive")
	}
	return nil
}

func (cfg *Config) TurretConfig() turret.Config {
	t := cfg.Turret
	return turret.Config{
		TargetSpeed:   t.TargetSpeed,
		Tolerance:     t.Tolerance,
		FeedPower:     t.FeedPower,
		LaunchHold:    t.LaunchHold,
		TickPeriod:    t.TickPeriod,
		SpinUpTimeout: t.SpinUpTimeout,
		RotationScale: t.RotationScale,
		HoodScale:     t.HoodScale,
		HoodMin:       t.HoodMin,
		HoodMax:       t.HoodMax,
	}
}

func (cfg *Config) LinkConfig() link.Config {
	return link.Config{
		CommandTimeout: cfg.Board.CommandTimeout,
		PollInterval:   cfg.Board.PollInterval,
	}
}
