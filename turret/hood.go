package turret

import "sync"

// Hood moves the hood in small steps within (min, max), exclusive.
type Hood struct {
	act      HoodActuator
	scale    float64
	min, max float64

	mx sync.Mutex
}

func NewHood(act HoodActuator, scale, min, max float64) *Hood {
	return &Hood{act: act, scale: scale, min: min, max: max}
}

// ChangePositionBy moves the hood by speed*scale degrees from wherever the
// actuator currently is. Moves that would leave the range are ignored.
func (h *Hood) ChangePositionBy(speed float64) bool {
	h.mx.Lock()
	defer h.mx.Unlock()

	next := h.act.Angle() + speed*h.scale
	// NaN fails both comparisons, so test for inclusion
	if !(next > h.min && next < h.max) {
		return false
	}
	h.act.SetAngle(next)
	return true
}

func (h *Hood) Angle() float64 { return h.act.Angle() }
