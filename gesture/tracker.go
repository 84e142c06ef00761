package gesture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/phanxgames/spruce"
)

// ErrTrackerRunning is returned by Start while a detection loop is live.
var ErrTrackerRunning = errors.New("tracker already running")

// DefaultInterval matches a 30 fps capture.
const DefaultInterval = 33 * time.Millisecond

// LandmarkSource produces hand landmarks, typically from a camera and a
// detection model. Detect reports ok=false when no hand is visible.
type LandmarkSource interface {
	Open(ctx context.Context) error
	Detect(ctx context.Context) (hand Hand, ok bool, err error)
	Close() error
}

// Tracker polls a LandmarkSource on its own goroutine and publishes each
// reading to the shared signals. It is the only writer of the gesture
// derived fields while running.
type Tracker struct {
	signals  *spruce.Signals
	source   LandmarkSource
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	handMu  sync.Mutex
	hand    Hand
	hasHand bool
}

// NewTracker creates a stopped tracker. interval <= 0 selects DefaultInterval.
func NewTracker(signals *spruce.Signals, source LandmarkSource, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tracker{signals: signals, source: source, interval: interval}
}

// Running reports whether the detection loop is live.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runningLocked()
}

func (t *Tracker) runningLocked() bool {
	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Start opens the source and launches the detection loop. The loop ends
// when ctx is cancelled or Stop is called; either way the signals return
// to neutral and the camera flag is cleared.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.runningLocked() {
		return ErrTrackerRunning
	}
	if err := t.source.Open(ctx); err != nil {
		return fmt.Errorf("open landmark source: %w", err)
	}

	if t.cancel != nil {
		t.cancel()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.signals.SetCameraActive(true)
	log.Printf("[Tracker] started (interval %v)", t.interval)

	go t.loop(loopCtx, t.done)
	return nil
}

// Stop ends the detection loop and waits for it to exit. Once Stop
// returns, openness is 0, rotation is zero, the gesture is None and the
// camera flag is false. Stop on a stopped tracker is a no-op.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel, t.done = nil, nil
}

// Toggle starts a stopped tracker or stops a running one.
func (t *Tracker) Toggle(ctx context.Context) error {
	if t.Running() {
		t.Stop()
		return nil
	}
	return t.Start(ctx)
}

func (t *Tracker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer t.shutdown()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hand, ok, err := t.source.Detect(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !failing {
					log.Printf("[Tracker] detect failed: %v", err)
					failing = true
				}
				t.setHand(Hand{}, false)
				t.signals.ResetGesture()
				continue
			}
			if failing {
				log.Printf("[Tracker] detect recovered")
				failing = false
			}
			t.setHand(hand, ok)
			if !ok {
				// Other fields keep their last value.
				t.signals.SetGesture(spruce.GestureNone)
				continue
			}
			r := Measure(&hand)
			r.Publish(t.signals)
		}
	}
}

// LastHand returns the most recent detection, for overlays. ok is false
// when no hand is visible or the tracker is stopped.
func (t *Tracker) LastHand() (Hand, bool) {
	t.handMu.Lock()
	defer t.handMu.Unlock()
	return t.hand, t.hasHand
}

func (t *Tracker) setHand(h Hand, ok bool) {
	t.handMu.Lock()
	t.hand, t.hasHand = h, ok
	t.handMu.Unlock()
}

func (t *Tracker) shutdown() {
	t.setHand(Hand{}, false)
	if err := t.source.Close(); err != nil {
		log.Printf("[Tracker] close source: %v", err)
	}
	t.signals.ResetGesture()
	t.signals.SetCameraActive(false)
	log.Printf("[Tracker] stopped")
}
