package turret

import "encoding/json"

// LaunchState is the current step of the launch sequencer.
type LaunchState int32

const (
	Stopped LaunchState = iota
	SpinningUp
	Launching

	// Stalled means the flywheel never reached speed. Cleared by Reset.
	Stalled
)

func (s LaunchState) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case SpinningUp:
		return "Spinning Up"
	case Launching:
		return "Launching"
	case Stalled:
		return "Stalled"
	}
	return "Unknown"
}

func (s LaunchState) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// TurnDirection is the last direction the rotator was commanded in.
type TurnDirection int32

const (
	None TurnDirection = iota
	Clockwise
	Counterclockwise
)

func directionOf(power float64) TurnDirection {
	switch {
	case power > 0:
		return Clockwise
	case power < 0:
		return Counterclockwise
	}
	return None
}

func (d TurnDirection) String() string {
	switch d {
	case Clockwise:
		return "Clockwise"
	case Counterclockwise:
		return "Counterclockwise"
	}
	return "None"
}

func (d TurnDirection) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }
