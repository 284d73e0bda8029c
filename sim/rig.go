package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/mastercactapus/turret/turret"
)

type Drive struct {
	mx    sync.Mutex
	power float64
}

func (d *Drive) SetPower(p float64) {
	d.mx.Lock()
	d.power = math.Max(-1, math.Min(1, p))
	d.mx.Unlock()
}

func (d *Drive) Power() float64 {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.power
}

type Hood struct {
	mx    sync.Mutex
	angle float64
}

func (h *Hood) Angle() float64 {
	h.mx.Lock()
	defer h.mx.Unlock()
	return h.angle
}

func (h *Hood) SetAngle(deg float64) {
	h.mx.Lock()
	h.angle = deg
	h.mx.Unlock()
}

// Input is a digital input pin.
type Input struct {
	mx    sync.Mutex
	level bool
}

func (in *Input) Get() bool {
	in.mx.Lock()
	defer in.mx.Unlock()
	return in.level
}

func (in *Input) Set(level bool) {
	in.mx.Lock()
	in.level = level
	in.mx.Unlock()
}

// Rig is a complete simulated launcher. The turret base slews at
// SlewRate deg/s at full power and the hall sensor trips (reads low) past
// LimitAngle either side of center.
type Rig struct {
	Flywheel *Flywheel
	Rotator  *Drive
	Feed     *Drive
	Hood     *Hood
	Limit    *Input

	SlewRate   float64
	LimitAngle float64

	mx      sync.Mutex
	heading float64
}

func NewRig() *Rig {
	r := &Rig{
		Flywheel:   NewFlywheel(),
		Rotator:    &Drive{},
		Feed:       &Drive{},
		Hood:       &Hood{angle: 45},
		Limit:      &Input{level: true},
		SlewRate:   90,
		LimitAngle: 170,
	}
	return r
}

func (r *Rig) Heading() float64 {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.heading
}

// Step advances every simulated mechanism by dt.
func (r *Rig) Step(dt time.Duration) {
	r.Flywheel.Step(dt)

	r.mx.Lock()
	r.heading += r.Rotator.Power() * r.SlewRate * dt.Seconds()
	r.heading = math.Max(-180, math.Min(180, r.heading))
	tripped := math.Abs(r.heading) >= r.LimitAngle
	r.mx.Unlock()

	r.Limit.Set(!tripped)
}

func (r *Rig) Run(ctx context.Context, period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Step(period)
		}
	}
}

// Hardware wires the rig into a turret.Hardware. The simulated hall
// sensor is active low.
func (r *Rig) Hardware() turret.Hardware {
	return turret.Hardware{
		Flywheel: r.Flywheel,
		Rotator:  r.Rotator,
		Feed:     r.Feed,
		Hood:     r.Hood,
		Limit:    turret.DigitalLimit{Input: r.Limit, ActiveLow: true},
	}
}
