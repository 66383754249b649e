// Package render implements the drawing sink the simulator hands its
// gathered positions to each step: clear the frame, plot every body,
// and present. The SDL-backed implementation mirrors the teacher's
// own DrawParticles/Run shape; a headless implementation backs tests
// and the ranks that do not own the window.
package render

import (
	"image/color"
	"runtime"

	"github.com/whyrusleeping/sdl"
)

// Renderer is the minimal rasterization sink the simulator addresses
// in simulation coordinates; rescaling to pixel space is the
// renderer's own concern.
type Renderer interface {
	Clear(background color.RGBA)
	DrawPoint(x, y float64, c color.RGBA)
	Present()
	Close()
}

// SDL backs Renderer with an actual window via
// github.com/whyrusleeping/sdl, the same library and call shape the
// teacher's Simulation.DrawParticles/Run use.
type SDL struct {
	width, height int
	scale         float64
	originX       int
	originY       int

	screen     *sdl.Display
	screenRect sdl.Rect
}

// NewSDL opens a width x height window titled title and returns a
// Renderer backed by it. scale is the number of simulation-coordinate
// units per pixel; simulation coordinates are expected to be
// centered near the origin, which is placed at the window's center.
func NewSDL(width, height int, scale float64, title string) (*SDL, error) {
	runtime.LockOSThread()
	if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
		return nil, err
	}

	screen, err := sdl.NewDisplay(width, height, sdl.WINDOW_OPENGL)
	if err != nil {
		sdl.Quit()
		return nil, err
	}
	screen.SetTitle(title)

	r := &SDL{
		width: width, height: height, scale: scale,
		originX: width / 2, originY: height / 2,
		screen: screen,
	}
	r.screenRect.X = sdl.Int(width)
	r.screenRect.Y = sdl.Int(height)
	return r, nil
}

// Clear fills the frame with background.
func (r *SDL) Clear(background color.RGBA) {
	r.screen.SetDrawColor(background)
	r.screen.DrawRect(r.screenRect)
	r.screen.Clear()
}

// DrawPoint plots one body at simulation coordinates (x, y) in color c.
func (r *SDL) DrawPoint(x, y float64, c color.RGBA) {
	px := int(x/r.scale) + r.originX
	py := int(y/r.scale) + r.originY
	r.screen.SetDrawColor(c)
	r.screen.DrawPoint(px, py)
}

// Present flips the frame to the screen.
func (r *SDL) Present() {
	r.screen.Present()
}

// Close tears down SDL.
func (r *SDL) Close() {
	sdl.Quit()
}

// Memory is a headless Renderer recording what was drawn, for tests
// and for runs with no display attached.
type Memory struct {
	Background color.RGBA
	Points     []Point
	Frames     int
}

// Point is one plotted body, recorded verbatim in simulation
// coordinates (no pixel rescaling — that is an SDL-only concern).
type Point struct {
	X, Y  float64
	Color color.RGBA
}

// NewMemory returns an empty headless renderer.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Clear(background color.RGBA) {
	m.Background = background
	m.Points = m.Points[:0]
}

func (m *Memory) DrawPoint(x, y float64, c color.RGBA) {
	m.Points = append(m.Points, Point{X: x, Y: y, Color: c})
}

func (m *Memory) Present() {
	m.Frames++
}

func (m *Memory) Close() {}
