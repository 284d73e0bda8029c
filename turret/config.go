package turret

import (
	"time"

	"github.com/pkg/errors"
)

// Config holds the tuning constants of a Turret.
type Config struct {
	// TargetSpeed is the flywheel launch speed in RPM.
	TargetSpeed float64

	// Tolerance is the largest velocity error (RPM) accepted as "at speed".
	Tolerance float64

	// FeedPower is the feed roller output while launching.
	FeedPower float64

	// LaunchHold is how long the feed runs to eject one ball.
	LaunchHold time.Duration

	TickPeriod time.Duration

	// SpinUpTimeout moves a spin-up that never converges to Stalled.
	// Zero waits forever.
	SpinUpTimeout time.Duration

	RotationScale float64
	HoodScale     float64
	HoodMin       float64
	HoodMax       float64
}

// DefaultConfig returns the constants the launcher was tuned with.
func DefaultConfig() Config {
	return Config{
		TargetSpeed:   100,
		Tolerance:     100 * .05,
		FeedPower:     .5,
		LaunchHold:    time.Second,
		TickPeriod:    5 * time.Millisecond,
		SpinUpTimeout: 3 * time.Second,
		RotationScale: 1 / 5.0,
		HoodScale:     1 / 5.0,
		HoodMin:       0,
		HoodMax:       90,
	}
}

func (cfg Config) Validate() error {
	switch {
	case cfg.TargetSpeed <= 0:
		return errors.Errorf("target speed must be positive (got %g)", cfg.TargetSpeed)
	case cfg.Tolerance <= 0:
		return errors.Errorf("tolerance must be positive (got %g)", cfg.Tolerance)
	case cfg.FeedPower < -1 || cfg.FeedPower > 1:
		return errors.Errorf("feed power must be within [-1,1] (got %g)", cfg.FeedPower)
	case cfg.LaunchHold <= 0:
		return errors.New("launch hold must be positive")
	case cfg.TickPeriod <= 0:
		return errors.New("tick period must be positive")
	case cfg.SpinUpTimeout < 0:
		return errors.New("spin-up timeout must not be negative")
	case cfg.HoodMin >= cfg.HoodMax:
		return errors.Errorf("hood range is empty (%g, %g)", cfg.HoodMin, cfg.HoodMax)
	}
	return nil
}
