package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitFor(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal(msg)
	}
}

func TestTickSchedulerRunsScheduledCallback(t *testing.T) {
	s := newTickScheduler(500)
	defer s.stop()

	ran := make(chan struct{})
	s.NextFrame(func() { close(ran) })
	s.start()

	waitFor(t, ran, "scheduled callback never ran")
}

func TestTickSchedulerCancelPreventsRun(t *testing.T) {
	s := newTickScheduler(500)
	defer s.stop()

	canceledRan := make(chan struct{})
	cancel := s.NextFrame(func() { close(canceledRan) })
	cancel()
	s.start()

	// A later registration still runs, proving ticks are flowing while the
	// canceled one stays dead.
	ran := make(chan struct{})
	s.NextFrame(func() { close(ran) })
	waitFor(t, ran, "replacement callback never ran")

	select {
	case <-canceledRan:
		t.Fatal("canceled callback ran")
	default:
	}
}

func TestTickSchedulerRunsCallbackOnce(t *testing.T) {
	s := newTickScheduler(500)
	defer s.stop()

	runs := make(chan struct{}, 8)
	s.NextFrame(func() { runs <- struct{}{} })
	s.start()

	waitFor(t, runs, "callback never ran")
	select {
	case <-runs:
		t.Fatal("single registration ran more than once")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTickSchedulerFrameHook(t *testing.T) {
	s := newTickScheduler(500)
	defer s.stop()

	hooked := make(chan struct{})
	var once bool
	s.setFrameHook(func() {
		if !once {
			once = true
			close(hooked)
		}
	})
	s.start()

	waitFor(t, hooked, "frame hook never ran")
}

func TestTickSchedulerStopIdempotent(t *testing.T) {
	s := newTickScheduler(500)
	s.start()
	s.stop()
	assert.NotPanics(t, func() { s.stop() })
}

func TestTickSchedulerDefaultRate(t *testing.T) {
	s := newTickScheduler(0)
	assert.Equal(t, time.Second/60, s.interval)
}
