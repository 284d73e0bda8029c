// Package sim provides simulated launcher hardware for running the turret
// without the controller board attached.
package sim

import (
	"sync"
	"time"

	"github.com/felixge/pidctrl"
)

// Flywheel models a launch wheel under closed-loop velocity control.
type Flywheel struct {
	mx  sync.Mutex
	pid *pidctrl.PIDController

	enabled  bool
	target   float64
	velocity float64

	// MaxAccel is RPM/s at full output, Drag is the fraction of speed
	// lost per second.
	MaxAccel float64
	Drag     float64
}

func NewFlywheel() *Flywheel {
	return &Flywheel{
		pid:      pidctrl.NewPIDController(.02, .01, 0).SetOutputLimits(-1, 1),
		MaxAccel: 2000,
		Drag:     .5,
	}
}

func (f *Flywheel) EnableVelocityControl() {
	f.mx.Lock()
	f.enabled = true
	f.mx.Unlock()
}

func (f *Flywheel) DisableVelocityControl() {
	f.mx.Lock()
	f.enabled = false
	f.mx.Unlock()
}

func (f *Flywheel) SetTargetSpeed(rpm float64) {
	f.mx.Lock()
	f.target = rpm
	f.pid.Set(rpm)
	f.mx.Unlock()
}

func (f *Flywheel) VelocityError() float64 {
	f.mx.Lock()
	defer f.mx.Unlock()
	return f.target - f.velocity
}

func (f *Flywheel) Velocity() float64 {
	f.mx.Lock()
	defer f.mx.Unlock()
	return f.velocity
}

// Step advances the model by dt. With control disabled the wheel coasts.
func (f *Flywheel) Step(dt time.Duration) {
	f.mx.Lock()
	defer f.mx.Unlock()

	var out float64
	if f.enabled {
		out = f.pid.UpdateDuration(f.velocity, dt)
	}
	f.velocity += (out*f.MaxAccel - f.Drag*f.velocity) * dt.Seconds()
}
