package engine

import (
	"log"
	"sync"
	"time"
)

// frameToken identifies one scheduled callback so a cancel only removes its
// own registration.
type frameToken struct {
	fn func()
}

// tickScheduler is the viewer's built-in FrameScheduler: a ticker-driven
// goroutine that runs at most one scheduled callback per tick. It is the
// process-side equivalent of a display-refresh frame callback.
type tickScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	pending *frameToken
	onFrame func()

	running  bool
	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
}

// newTickScheduler creates a scheduler ticking at the given frame rate.
// A non-positive fps falls back to 60, standing in for display refresh.
func newTickScheduler(fps float64) *tickScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &tickScheduler{
		interval: time.Duration(float64(time.Second) / fps),
		quit:     make(chan struct{}),
	}
}

// NextFrame schedules fn to run once on the next tick. Only the most recent
// registration survives; the sync loop schedules exactly one per frame.
func (s *tickScheduler) NextFrame(fn func()) (cancel func()) {
	tok := &frameToken{fn: fn}
	s.mu.Lock()
	s.pending = tok
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		if s.pending == tok {
			s.pending = nil
		}
		s.mu.Unlock()
	}
}

// setFrameHook registers a function run every tick, scheduled callback or not.
func (s *tickScheduler) setFrameHook(fn func()) {
	s.mu.Lock()
	s.onFrame = fn
	s.mu.Unlock()
}

// start launches the tick goroutine. Safe to call once.
func (s *tickScheduler) start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()
}

// stop halts the tick goroutine and waits for it to exit. Safe to call
// multiple times; subsequent calls are no-ops.
func (s *tickScheduler) stop() {
	s.quitOnce.Do(func() {
		close(s.quit)
	})
	s.wg.Wait()
}

// run is the tick goroutine. Recovers from panics inside frame callbacks to
// avoid crashing the whole process.
func (s *tickScheduler) run() {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("frame scheduler recovered from panic: %v", r)
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			s.mu.Lock()
			tok := s.pending
			s.pending = nil
			hook := s.onFrame
			s.mu.Unlock()

			if tok != nil {
				tok.fn()
			}
			if hook != nil {
				hook()
			}
		}
	}
}
