package turret

import (
	"context"

	"github.com/pkg/errors"
)

// Turret is the aiming and firing controller for the launcher.
//
// Launch, SpinTurret and ChangeHoodPositionBy are called from the operator
// side; firing itself happens on the sequencer goroutine.
type Turret struct {
	hw  Hardware
	cfg Config

	seq  *Sequencer
	rot  *Rotator
	hood *Hood
}

// Status is a snapshot of the turret for reporting.
type Status struct {
	State         LaunchState
	TurnDirection TurnDirection
	HoodAngle     float64
	VelocityError float64
	AtLimit       bool
}

func New(hw Hardware, cfg Config) (*Turret, error) {
	if err := hw.validate(); err != nil {
		return nil, errors.Wrap(err, "hardware")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}

	hw.Flywheel.SetTargetSpeed(0)
	hw.Flywheel.DisableVelocityControl()

	return &Turret{
		hw:   hw,
		cfg:  cfg,
		seq:  NewSequencer(hw.Flywheel, hw.Feed, cfg),
		rot:  NewRotator(hw.Rotator, hw.Limit, cfg.RotationScale),
		hood: NewHood(hw.Hood, cfg.HoodScale, cfg.HoodMin, cfg.HoodMax),
	}, nil
}

// Start runs the launch sequencer in the background.
func (t *Turret) Start(ctx context.Context) error { return t.seq.Start(ctx) }

// Stop halts the launch sequencer and turns off the flywheel and feed.
func (t *Turret) Stop() { t.seq.Stop() }

// Launch fires the loaded ball. It is ignored unless the turret is Stopped.
func (t *Turret) Launch() bool { return t.seq.Launch() }

// Reset clears a Stalled spin-up.
func (t *Turret) Reset() bool { return t.seq.Reset() }

func (t *Turret) SpinTurret(power float64) float64 { return t.rot.Spin(power) }

func (t *Turret) ChangeHoodPositionBy(speed float64) bool { return t.hood.ChangePositionBy(speed) }

func (t *Turret) HoodAngle() float64 { return t.hood.Angle() }

func (t *Turret) TurnDirection() TurnDirection { return t.rot.Direction() }

func (t *Turret) State() LaunchState { return t.seq.State() }

func (t *Turret) Changes() <-chan Transition { return t.seq.Changes() }

func (t *Turret) Config() Config { return t.cfg }

func (t *Turret) Status() Status {
	return Status{
		State:         t.seq.State(),
		TurnDirection: t.rot.Direction(),
		HoodAngle:     t.hood.Angle(),
		VelocityError: t.hw.Flywheel.VelocityError(),
		AtLimit:       t.hw.Limit.AtLimit(),
	}
}
