package turret

import "github.com/pkg/errors"

// A Flywheel is a velocity-controlled launch wheel.
type Flywheel interface {
	EnableVelocityControl()
	DisableVelocityControl()
	SetTargetSpeed(rpm float64)

	// VelocityError is the signed closed-loop error in RPM.
	VelocityError() float64
}

// A Drive is an open-loop motor output in [-1, 1].
type Drive interface {
	SetPower(p float64)
}

type HoodActuator interface {
	Angle() float64
	SetAngle(deg float64)
}

type LimitSensor interface {
	AtLimit() bool
}

// DigitalInput is a raw digital pin.
type DigitalInput interface {
	Get() bool
}

// DigitalLimit maps a raw input level to the at-limit condition.
//
// With ActiveLow set, a false reading means the turret is at its limit,
// which is how a pulled-up hall sensor reports. Check against the wiring.
type DigitalLimit struct {
	Input     DigitalInput
	ActiveLow bool
}

func (l DigitalLimit) AtLimit() bool { return l.Input.Get() != l.ActiveLow }

// Hardware is the set of actuators and sensors a Turret drives.
type Hardware struct {
	Flywheel Flywheel
	Rotator  Drive
	Feed     Drive
	Hood     HoodActuator
	Limit    LimitSensor
}

func (hw Hardware) validate() error {
	switch {
	case hw.Flywheel == nil:
		return errors.New("missing flywheel")
	case hw.Rotator == nil:
		return errors.New("missing rotator drive")
	case hw.Feed == nil:
		return errors.New("missing feed drive")
	case hw.Hood == nil:
		return errors.New("missing hood actuator")
	case hw.Limit == nil:
		return errors.New("missing limit sensor")
	}
	return nil
}
