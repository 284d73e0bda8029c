package link

import (
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mastercactapus/turret/turret"
)

// Config tunes the board connection.
type Config struct {
	CommandTimeout time.Duration
	PollInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		CommandTimeout: 250 * time.Millisecond,
		PollInterval:   20 * time.Millisecond,
	}
}

// Adapter exposes the board as turret hardware. Sensor values come from
// the most recent status report.
type Adapter struct {
	*Conn

	mx    sync.Mutex
	last  Status
	state chan Status
}

var (
	_ turret.Flywheel     = &Adapter{}
	_ turret.HoodActuator = &Adapter{}
	_ turret.DigitalInput = &Adapter{}
	_ turret.Drive        = Drive{}
)

func NewAdapter(rw io.ReadWriter, cfg Config) *Adapter {
	adapter := &Adapter{
		Conn:  NewConn(rw, cfg.CommandTimeout),
		state: make(chan Status, 1),
	}
	go adapter.pollLoop(cfg.PollInterval)
	go adapter.readLoop()

	return adapter
}

// State delivers status reports as they arrive; reports are dropped if
// nobody is receiving.
func (adapter *Adapter) State() <-chan Status { return adapter.state }

func (adapter *Adapter) CurrentState() Status {
	adapter.mx.Lock()
	defer adapter.mx.Unlock()
	return adapter.last
}

func (adapter *Adapter) pollLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-adapter.closeCh:
			return
		case <-t.C:
			err := adapter.WriteByte('?')
			if err != nil && !adapter.isClosed() {
				log.Println("ERROR: status poll:", err)
			}
		}
	}
}

func (adapter *Adapter) readLoop() {
	for {
		line, err := adapter.ReadLine()
		if err != nil {
			if !adapter.isClosed() {
				log.Println("ERROR: read from board:", err)
			}
			return
		}
		if len(line) == 0 {
			continue
		}
		switch {
		case line[0] == '<':
			adapter.mx.Lock()
			stat, err := parseStatus(adapter.last, line)
			if err == nil {
				adapter.last = *stat
			}
			adapter.mx.Unlock()
			if err != nil {
				log.Println("ERROR: parse status:", err)
				continue
			}
			select {
			case adapter.state <- *stat:
			default:
			}
		case strings.HasPrefix(line, "Turret"):
			log.Println("Controller reset:", line)
		}
	}
}

func (adapter *Adapter) command(line string) bool {
	err := adapter.Command(line)
	if err != nil {
		log.Printf("ERROR: board command: %+v", err)
		return false
	}
	return true
}

func (adapter *Adapter) EnableVelocityControl()  { adapter.command("FW ON") }
func (adapter *Adapter) DisableVelocityControl() { adapter.command("FW OFF") }

func (adapter *Adapter) SetTargetSpeed(rpm float64) {
	adapter.command("FW " + formatFloat(rpm, 3))
}

func (adapter *Adapter) VelocityError() float64 { return adapter.CurrentState().VelocityError }

func (adapter *Adapter) Angle() float64 { return adapter.CurrentState().HoodAngle }

// SetAngle moves the hood. The cached angle is updated once the board
// accepts the move so a following Angle call sees it.
func (adapter *Adapter) SetAngle(deg float64) {
	if !adapter.command("HOOD " + formatFloat(deg, 3)) {
		return
	}
	adapter.mx.Lock()
	adapter.last.HoodAngle = deg
	adapter.mx.Unlock()
}

// Get returns the raw level of the limit input.
func (adapter *Adapter) Get() bool { return adapter.CurrentState().Limit }

// Drive is an open-loop motor channel on the board.
type Drive struct {
	adapter *Adapter
	name    string
}

func (d Drive) SetPower(p float64) {
	d.adapter.command(d.name + " " + formatFloat(p, 4))
}

func (adapter *Adapter) Rotator() Drive { return Drive{adapter: adapter, name: "ROT"} }
func (adapter *Adapter) Feed() Drive    { return Drive{adapter: adapter, name: "FEED"} }

// Hardware wires every channel of the board into a turret.Hardware.
func (adapter *Adapter) Hardware(limitActiveLow bool) turret.Hardware {
	return turret.Hardware{
		Flywheel: adapter,
		Rotator:  adapter.Rotator(),
		Feed:     adapter.Feed(),
		Hood:     adapter,
		Limit:    turret.DigitalLimit{Input: adapter, ActiveLow: limitActiveLow},
	}
}
