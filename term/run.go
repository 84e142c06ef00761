package term

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/spruce"
)

// Options configures Run.
type Options struct {
	// FrameRate is the target frames per second; 0 selects 30.
	FrameRate int
	// Sink receives the sculpture's events.
	Sink spruce.EventSink
}

// Run drives the sculpture on screen until ctx is cancelled or the user
// presses q or Escape. Space toggles between open palm and closed fist;
// the mouse acts as the repulsion pointer. screen must not be initialized.
func Run(ctx context.Context, screen tcell.Screen, s *spruce.Sculpture, opts Options) error {
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	fps := opts.FrameRate
	if fps <= 0 {
		fps = 30
	}
	if opts.Sink != nil {
		s.SetEventSink(opts.Sink)
	}
	r := NewRenderer(screen, s.NewBuffers(), s.Config().TreeHeight)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	start := time.Now()
	var pointer mgl32.Vec2

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
					return nil
				}
				if ev.Rune() == ' ' {
					toggleGesture(s.Signals())
				}
			case *tcell.EventMouse:
				x, y := ev.Position()
				pointer = pointerNDC(screen, x, y)
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			frame := s.Update(time.Since(start).Seconds(), pointer)
			r.Draw(&frame)
		}
	}
}

// toggleGesture flips between the two morph gestures. Terminals report no
// key releases, so a hold cannot be detected.
func toggleGesture(sig *spruce.Signals) {
	if sig.Gesture() == spruce.GestureOpenPalm {
		sig.SetGesture(spruce.GestureClosedFist)
		return
	}
	sig.SetGesture(spruce.GestureOpenPalm)
}

func pointerNDC(screen tcell.Screen, x, y int) mgl32.Vec2 {
	w, h := screen.Size()
	if w == 0 || h == 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{
		float32(x)/float32(w)*2 - 1,
		-(float32(y)/float32(h)*2 - 1),
	}
}
