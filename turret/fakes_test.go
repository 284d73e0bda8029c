package turret

import "sync"

type fakeFlywheel struct {
	mx      sync.Mutex
	enabled bool
	target  float64
	err     float64
}

func (f *fakeFlywheel) EnableVelocityControl()  { f.mx.Lock(); f.enabled = true; f.mx.Unlock() }
func (f *fakeFlywheel) DisableVelocityControl() { f.mx.Lock(); f.enabled = false; f.mx.Unlock() }
func (f *fakeFlywheel) SetTargetSpeed(rpm float64) {
	f.mx.Lock()
	f.target = rpm
	f.mx.Unlock()
}
func (f *fakeFlywheel) VelocityError() float64 {
	f.mx.Lock()
	defer f.mx.Unlock()
	return f.err
}
func (f *fakeFlywheel) setError(e float64) { f.mx.Lock(); f.err = e; f.mx.Unlock() }
func (f *fakeFlywheel) snapshot() (bool, float64) {
	f.mx.Lock()
	defer f.mx.Unlock()
	return f.enabled, f.target
}

type fakeDrive struct {
	mx      sync.Mutex
	history []float64
}

func (d *fakeDrive) SetPower(p float64) { d.mx.Lock(); d.history = append(d.history, p); d.mx.Unlock() }
func (d *fakeDrive) last() float64 {
	d.mx.Lock()
	defer d.mx.Unlock()
	if len(d.history) == 0 {
		return 0
	}
	return d.history[len(d.history)-1]
}
func (d *fakeDrive) powers() []float64 {
	d.mx.Lock()
	defer d.mx.Unlock()
	return append([]float64(nil), d.history...)
}

type fakeHood struct{ angle float64 }

func (h *fakeHood) Angle() float64       { return h.angle }
func (h *fakeHood) SetAngle(deg float64) { h.angle = deg }

type fakeLimit struct{ at bool }

func (l *fakeLimit) AtLimit() bool { return l.at }

type fakeInput bool

func (i fakeInput) Get() bool { return bool(i) }
