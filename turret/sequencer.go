package turret

import (
	"context"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// A Transition is a single LaunchState change.
type Transition struct {
	From LaunchState
	To   LaunchState
	At   time.Time
}

// Sequencer spins up the flywheel and fires once a launch is requested.
//
// The state machine only runs on the goroutine started by Start; one
// transition is evaluated per tick.
type Sequencer struct {
	flywheel Flywheel
	feed     Drive
	cfg      Config

	state   int32
	request launchRequest
	changes chan Transition

	// lmx orders Launch/Reset against the sequencer leaving Stopped, so a
	// request can never be left pending across a whole fire cycle.
	lmx sync.Mutex

	spinStart time.Time

	mx     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSequencer(flywheel Flywheel, feed Drive, cfg Config) *Sequencer {
	return &Sequencer{
		flywheel: flywheel,
		feed:     feed,
		cfg:      cfg,
		request:  newLaunchRequest(),
		changes:  make(chan Transition, 64),
	}
}

// State never blocks.
func (s *Sequencer) State() LaunchState { return LaunchState(atomic.LoadInt32(&s.state)) }

// Changes delivers state transitions. Transitions are dropped if the
// channel is not drained.
func (s *Sequencer) Changes() <-chan Transition { return s.changes }

// Launch requests a fire cycle. Nothing happens, and false is returned,
// unless the sequencer is Stopped with no request pending.
func (s *Sequencer) Launch() bool {
	s.lmx.Lock()
	defer s.lmx.Unlock()
	if s.State() != Stopped {
		return false
	}
	return s.request.post()
}

// Reset clears a Stalled sequencer back to Stopped.
func (s *Sequencer) Reset() bool {
	s.lmx.Lock()
	defer s.lmx.Unlock()
	if s.State() != Stalled {
		return false
	}
	s.setState(Stalled, Stopped)
	return true
}

// Start runs the state machine in the background until Stop is called or
// ctx is done. Either way the feed and flywheel are turned off on exit.
// Stop must be called before starting again.
func (s *Sequencer) Start(ctx context.Context) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.done != nil {
		return errors.New("sequencer already running")
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	return nil
}

// Stop ends the background goroutine, which cuts the feed and flywheel and
// returns the sequencer to Stopped. An in-progress launch hold is cut short.
func (s *Sequencer) Stop() {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.done == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

func (s *Sequencer) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	log.Println("Launch sequencer starting...")
	defer log.Println("Launch sequencer stopped.")
	defer s.shutdown()

	t := time.NewTicker(s.cfg.TickPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.step(ctx)
		}
	}
}

// shutdown leaves the outputs off and the sequencer Stopped, however the
// run loop ended.
func (s *Sequencer) shutdown() {
	s.feed.SetPower(0)
	s.flywheel.SetTargetSpeed(0)
	s.flywheel.DisableVelocityControl()

	s.lmx.Lock()
	s.request.drain()
	if from := s.State(); from != Stopped {
		s.setState(from, Stopped)
	}
	s.lmx.Unlock()
}

func (s *Sequencer) step(ctx context.Context) {
	switch s.State() {
	case Stopped:
		s.lmx.Lock()
		ok := s.request.take()
		if ok {
			s.spinStart = time.Now()
			s.setState(Stopped, SpinningUp)
		}
		s.lmx.Unlock()
		if !ok {
			return
		}
		s.flywheel.EnableVelocityControl()
		s.flywheel.SetTargetSpeed(s.cfg.TargetSpeed)

	case SpinningUp:
		if math.Abs(s.flywheel.VelocityError()) < s.cfg.Tolerance {
			s.feed.SetPower(s.cfg.FeedPower)
			s.setState(SpinningUp, Launching)
			return
		}
		if s.cfg.SpinUpTimeout > 0 && time.Since(s.spinStart) > s.cfg.SpinUpTimeout {
			log.Printf("ERROR: flywheel did not reach %g RPM within %s", s.cfg.TargetSpeed, s.cfg.SpinUpTimeout)
			s.flywheel.SetTargetSpeed(0)
			s.flywheel.DisableVelocityControl()
			s.setState(SpinningUp, Stalled)
		}

	case Launching:
		s.hold(ctx)
		s.feed.SetPower(0)
		s.setState(Launching, Stopped)
	}
}

// hold keeps the feed running for LaunchHold. Cancellation ends the wait
// early and is otherwise treated as a completed hold.
func (s *Sequencer) hold(ctx context.Context) {
	t := time.NewTimer(s.cfg.LaunchHold)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
		log.Printf("ERROR: launch hold interrupted: %+v", ctx.Err())
	}
}

func (s *Sequencer) setState(from, to LaunchState) {
	atomic.StoreInt32(&s.state, int32(to))
	select {
	case s.changes <- Transition{From: from, To: to, At: time.Now()}:
	default:
	}
}
