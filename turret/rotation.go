package turret

import (
	"math"
	"sync"
)

// Rotator turns the turret base from operator power, refusing to keep
// pushing in the direction that tripped the limit sensor.
//
// There is only one limit sensor, so which end of travel was reached is
// inferred from the last commanded direction.
type Rotator struct {
	drive Drive
	limit LimitSensor
	scale float64

	mx  sync.Mutex
	dir TurnDirection
}

func NewRotator(drive Drive, limit LimitSensor, scale float64) *Rotator {
	return &Rotator{drive: drive, limit: limit, scale: scale}
}

// Spin sends power, attenuated by the configured scale, to the rotator and
// returns what was actually applied. A power that is not a finite number
// is treated as 0.
func (r *Rotator) Spin(power float64) float64 {
	r.mx.Lock()
	defer r.mx.Unlock()

	if math.IsNaN(power) || math.IsInf(power, 0) {
		power = 0
	}

	applied := power * r.scale
	dir := directionOf(power)
	if r.limit.AtLimit() && dir != None && dir == r.dir {
		applied = 0
	}
	r.dir = dir

	r.drive.SetPower(applied)
	return applied
}

func (r *Rotator) Direction() TurnDirection {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.dir
}
