package turret

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.LaunchHold = 10 * time.Millisecond
	cfg.TickPeriod = time.Millisecond
	cfg.SpinUpTimeout = 0
	return cfg
}

func drainChanges(s *Sequencer) []Transition {
	var res []Transition
	for {
		select {
		case tr := <-s.Changes():
			res = append(res, tr)
		default:
			return res
		}
	}
}

func TestSequencer_FireCycle(t *testing.T) {
	fw := &fakeFlywheel{err: 100}
	var feed fakeDrive
	s := NewSequencer(fw, &feed, testConfig())
	ctx := context.Background()

	assert.Equal(t, Stopped, s.State())
	s.step(ctx)
	assert.Equal(t, Stopped, s.State(), "no request, no spin-up")

	assert.True(t, s.Launch())
	assert.False(t, s.Launch(), "request already pending")

	s.step(ctx)
	assert.Equal(t, SpinningUp, s.State())
	enabled, target := fw.snapshot()
	assert.True(t, enabled)
	assert.Equal(t, 100.0, target)

	// no re-trigger while in flight
	assert.False(t, s.Launch())
	assert.False(t, s.request.pending())
	assert.Equal(t, SpinningUp, s.State())

	fw.setError(-10)
	s.step(ctx)
	assert.Equal(t, SpinningUp, s.State())
	assert.Empty(t, feed.powers())

	fw.setError(3)
	s.step(ctx)
	assert.Equal(t, Launching, s.State())
	assert.Equal(t, .5, feed.last())
	assert.False(t, s.Launch())

	start := time.Now()
	s.step(ctx)
	assert.True(t, time.Since(start) >= 10*time.Millisecond, "feed held for the launch time")
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, []float64{.5, 0}, feed.powers())

	var seen []LaunchState
	for _, tr := range drainChanges(s) {
		seen = append(seen, tr.From, tr.To)
	}
	assert.Equal(t, []LaunchState{Stopped, SpinningUp, SpinningUp, Launching, Launching, Stopped}, seen)

	assert.True(t, s.Launch(), "can fire again once stopped")
}

func TestSequencer_ToleranceIsStrict(t *testing.T) {
	fw := &fakeFlywheel{err: 5}
	s := NewSequencer(fw, &fakeDrive{}, testConfig())
	ctx := context.Background()

	s.Launch()
	s.step(ctx)
	s.step(ctx)
	assert.Equal(t, SpinningUp, s.State())

	fw.setError(-4.99)
	s.step(ctx)
	assert.Equal(t, Launching, s.State())
}

func TestSequencer_NoTimeoutHoldsForever(t *testing.T) {
	fw := &fakeFlywheel{err: 50}
	s := NewSequencer(fw, &fakeDrive{}, testConfig())
	ctx := context.Background()

	s.Launch()
	s.step(ctx)
	s.spinStart = time.Now().Add(-time.Hour)
	for i := 0; i < 100; i++ {
		s.step(ctx)
	}
	assert.Equal(t, SpinningUp, s.State())
}

func TestSequencer_Stall(t *testing.T) {
	cfg := testConfig()
	cfg.SpinUpTimeout = 5 * time.Millisecond
	fw := &fakeFlywheel{err: 50}
	s := NewSequencer(fw, &fakeDrive{}, cfg)
	ctx := context.Background()

	s.Launch()
	s.step(ctx)
	s.step(ctx)
	assert.Equal(t, SpinningUp, s.State())

	s.spinStart = time.Now().Add(-10 * time.Millisecond)
	s.step(ctx)
	assert.Equal(t, Stalled, s.State())
	enabled, target := fw.snapshot()
	assert.False(t, enabled)
	assert.Equal(t, 0.0, target)

	assert.False(t, s.Launch(), "stalled turret does not fire")
	fw.setError(0)
	s.step(ctx)
	assert.Equal(t, Stalled, s.State(), "stalled until reset")

	assert.True(t, s.Reset())
	assert.Equal(t, Stopped, s.State())
	assert.False(t, s.Reset())
	assert.True(t, s.Launch())
}

func TestSequencer_HoldInterrupted(t *testing.T) {
	cfg := testConfig()
	cfg.LaunchHold = time.Hour
	fw := &fakeFlywheel{}
	var feed fakeDrive
	s := NewSequencer(fw, &feed, cfg)

	s.Launch()
	s.step(context.Background())
	s.step(context.Background())
	require.Equal(t, Launching, s.State())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.step(ctx)
	assert.Equal(t, Stopped, s.State(), "interrupted hold counts as complete")
	assert.Equal(t, 0.0, feed.last())
}

func TestSequencer_Background(t *testing.T) {
	fw := &fakeFlywheel{}
	var feed fakeDrive
	s := NewSequencer(fw, &feed, testConfig())

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))

	for i := 0; i < 3; i++ {
		require.Eventually(t, s.Launch, time.Second, time.Millisecond)
		assert.Eventually(t, func() bool {
			return s.State() == Stopped && len(feed.powers()) == 2*(i+1)
		}, time.Second, time.Millisecond)
	}
	s.Stop()
	s.Stop()

	allowed := map[[2]LaunchState]bool{
		{Stopped, SpinningUp}:   true,
		{SpinningUp, Launching}: true,
		{Launching, Stopped}:    true,
	}
	changes := drainChanges(s)
	assert.Len(t, changes, 9)
	for _, tr := range changes {
		assert.True(t, allowed[[2]LaunchState{tr.From, tr.To}], "unexpected transition %s -> %s", tr.From, tr.To)
	}

	enabled, target := fw.snapshot()
	assert.False(t, enabled)
	assert.Equal(t, 0.0, target)
}

func TestSequencer_StopMidLaunch(t *testing.T) {
	cfg := testConfig()
	cfg.LaunchHold = time.Hour
	fw := &fakeFlywheel{}
	var feed fakeDrive
	s := NewSequencer(fw, &feed, cfg)

	require.NoError(t, s.Start(context.Background()))
	s.Launch()
	require.Eventually(t, func() bool { return s.State() == Launching }, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() { s.Stop(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop did not interrupt the launch hold")
	}
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, 0.0, feed.last())

	// restartable
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestSequencer_StopDropsRequest(t *testing.T) {
	s := NewSequencer(&fakeFlywheel{err: 100}, &fakeDrive{}, testConfig())
	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	// not running, request stays pending until the next Start
	assert.True(t, s.Launch())
	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return s.State() == SpinningUp }, time.Second, time.Millisecond)
	s.Stop()
	assert.Equal(t, Stopped, s.State())
	assert.False(t, s.request.pending())
}

func TestSequencer_ContextDone(t *testing.T) {
	cfg := testConfig()
	cfg.LaunchHold = time.Hour
	fw := &fakeFlywheel{}
	var feed fakeDrive
	s := NewSequencer(fw, &feed, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	s.Launch()
	require.Eventually(t, func() bool { return s.State() == Launching }, time.Second, time.Millisecond)
	assert.Equal(t, .5, feed.last())

	// outputs go off without anyone calling Stop
	cancel()
	assert.Eventually(t, func() bool {
		enabled, target := fw.snapshot()
		return !enabled && target == 0 && feed.last() == 0 && s.State() == Stopped
	}, time.Second, time.Millisecond)

	s.Stop()
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
