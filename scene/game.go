// Package scene hosts a spruce.Sculpture in an ebiten window: an orbit
// camera that dollies with the phase, a batched glow renderer, a status
// overlay and keyboard/mouse bindings for the input signals.
package scene

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/spruce"
	"github.com/phanxgames/spruce/gesture"
)

// wheelStep is the openness change per wheel notch.
const wheelStep = 0.05

// RunConfig configures the window and optional collaborators.
type RunConfig struct {
	Title         string
	Width, Height int
	// Tracker, when set, is toggled with the C key. Stopping it resets the
	// gesture signals.
	Tracker *gesture.Tracker
	// Pointer, when set, follows the mouse and the wheel sets its openness.
	// It is normally the Tracker's source.
	Pointer *gesture.PointerSource
	// Sinks receive the sculpture's events in addition to the camera.
	Sinks []spruce.EventSink
	// HideOverlay disables the status panel.
	HideOverlay bool
	// StaticCamera disables the slow orbit around the sculpture.
	StaticCamera bool
}

// Game implements ebiten.Game around a sculpture.
type Game struct {
	sculpture *spruce.Sculpture
	signals   *spruce.Signals
	camera    *Camera
	renderer  *Renderer
	overlay   *Overlay
	cfg       RunConfig

	ctx     context.Context
	elapsed float64
	frame   spruce.Frame
}

// NewGame wires the sculpture to a camera and renderer. It attaches a
// buffer for every category and installs the event sink chain.
func NewGame(ctx context.Context, s *spruce.Sculpture, cfg RunConfig) *Game {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	cam := NewCamera(float64(cfg.Width), float64(cfg.Height))
	cam.AutoRotate = !cfg.StaticCamera
	bufs := s.NewBuffers()

	sinks := append(spruce.MultiSink{cam}, cfg.Sinks...)
	s.SetEventSink(sinks)

	g := &Game{
		sculpture: s,
		signals:   s.Signals(),
		camera:    cam,
		renderer:  NewRenderer(cam, bufs, s.Config().TreeHeight),
		cfg:       cfg,
		ctx:       ctx,
	}
	if !cfg.HideOverlay {
		g.overlay = NewOverlay()
	}
	return g
}

// Camera returns the scene camera.
func (g *Game) Camera() *Camera { return g.camera }

// Frame returns the summary of the last update.
func (g *Game) Frame() spruce.Frame { return g.frame }

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || g.ctx.Err() != nil {
		return ebiten.Termination
	}
	dt := 1 / float64(ebiten.TPS())
	g.elapsed += dt

	g.handleInput()

	cx, cy := ebiten.CursorPosition()
	g.frame = g.sculpture.Update(g.elapsed, g.camera.PointerNDC(cx, cy))
	g.camera.Update(float32(dt))
	if g.overlay != nil {
		g.overlay.Update(dt)
	}
	return nil
}

func (g *Game) handleInput() {
	tracking := g.cfg.Tracker != nil && g.cfg.Tracker.Running()

	if g.cfg.Tracker != nil && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if err := g.cfg.Tracker.Toggle(g.ctx); err != nil {
			log.Printf("[Scene] toggle tracker: %v", err)
		}
		tracking = g.cfg.Tracker.Running()
	}

	if p := g.cfg.Pointer; p != nil {
		cx, cy := ebiten.CursorPosition()
		p.SetCursor(float64(cx)/g.camera.Width, float64(cy)/g.camera.Height)
		if _, wy := ebiten.Wheel(); wy != 0 {
			p.SetOpenness(p.Openness() + wy*wheelStep)
		}
	}

	// Keyboard gesture only while the tracker is not publishing.
	if !tracking {
		if ebiten.IsKeyPressed(ebiten.KeySpace) {
			g.signals.SetGesture(spruce.GestureOpenPalm)
		} else if inpututil.IsKeyJustReleased(ebiten.KeySpace) {
			g.signals.SetGesture(spruce.GestureClosedFist)
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, &g.frame)
	if g.overlay == nil {
		return
	}
	var hand *gesture.Hand
	if g.cfg.Tracker != nil {
		if h, ok := g.cfg.Tracker.LastHand(); ok {
			hand = &h
		}
	}
	g.overlay.Draw(screen, Status{
		Phase:        g.frame.Phase,
		Gesture:      g.signals.Gesture(),
		CameraActive: g.signals.CameraActive(),
		T:            g.frame.T,
	}, hand)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.camera.SetViewport(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run opens a window and blocks until it is closed or ctx is cancelled.
// A running tracker is stopped before Run returns.
func Run(ctx context.Context, s *spruce.Sculpture, cfg RunConfig) error {
	g := NewGame(ctx, s, cfg)
	defer func() {
		if cfg.Tracker != nil {
			cfg.Tracker.Stop()
		}
	}()

	title := cfg.Title
	if title == "" {
		title = "spruce"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run scene: %w", err)
	}
	return nil
}
