// package surface provides the render-target surfaces the two engines draw
// into. An overlay pair is two stacked surfaces: an opaque back surface for
// the globe and a transparent-framebuffer front surface for the point cloud,
// so the globe shows through wherever the point cloud leaves alpha at zero.
package surface

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Surface is one render target. It carries the platform surface descriptor a
// rendering engine needs plus the input callbacks its navigation controls
// consume.
type Surface interface {
	// SetResizeCallback sets the function called when the surface is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = zoom in)
	SetScrollCallback(callback func(delta float32))

	// SetMouseDownCallback sets the callback for primary mouse button press.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseDownCallback(callback func(x, y int32))

	// SetMouseUpCallback sets the callback for primary mouse button release.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseUpCallback(callback func(x, y int32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating
	// a WebGPU surface on this render target. Platform-appropriate (Windows
	// HWND, X11, Wayland, macOS Metal).
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil if not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true while the surface is open.
	//
	// Returns:
	//   - bool: true if the surface has not been closed
	IsRunning() bool

	// Close destroys the surface and releases platform resources.
	//
	// Returns:
	//   - error: error if the surface was never initialized
	Close() error

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineSurface is the implementation of the Surface interface.
type engineSurface struct {
	title       string
	width       int
	height      int
	transparent bool

	// overlayOf, when set, positions this surface exactly over another one so
	// the two composite visually as front/back layers.
	overlayOf *engineSurface

	// internalSurface holds the platform-specific state (glfwSurface).
	internalSurface any

	onResize    func(width, height int)
	onScroll    func(delta float32)
	onMouseDown func(x, y int32)
	onMouseUp   func(x, y int32)
	onMouseMove func(x, y int32)
}

var _ Surface = &engineSurface{}

// NewSurface creates a render-target surface with the specified options.
//
// Parameters:
//   - options: functional options to configure the surface
//
// Returns:
//   - Surface: the configured surface
//   - error: error if platform window creation fails
func NewSurface(options ...SurfaceBuilderOption) (Surface, error) {
	s := &engineSurface{
		title:  "pointglobe",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(s)
	}
	if err := newPlatformSurface(s); err != nil {
		return nil, fmt.Errorf("creating surface %q: %w", s.title, err)
	}
	return s, nil
}

// NewOverlayPair creates the back (globe) and front (point cloud) surfaces of
// an overlay session. The front surface is transparent and positioned exactly
// over the back one. On any failure both surfaces are released.
//
// Parameters:
//   - width, height: initial surface size in pixels
//
// Returns:
//   - front: the transparent point-cloud surface
//   - back: the opaque globe surface
//   - err: error if either platform window could not be created
func NewOverlayPair(width, height int) (front, back Surface, err error) {
	b, err := NewSurface(
		WithTitle("pointglobe — globe"),
		WithWidth(width),
		WithHeight(height),
	)
	if err != nil {
		return nil, nil, err
	}
	f, err := NewSurface(
		WithTitle("pointglobe — point cloud"),
		WithWidth(width),
		WithHeight(height),
		WithTransparentFramebuffer(),
		WithOverlayOf(b),
	)
	if err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	return f, b, nil
}

func (s *engineSurface) SetResizeCallback(callback func(width, height int)) {
	s.onResize = callback
}

func (s *engineSurface) SetScrollCallback(callback func(delta float32)) {
	s.onScroll = callback
}

func (s *engineSurface) SetMouseDownCallback(callback func(x, y int32)) {
	s.onMouseDown = callback
}

func (s *engineSurface) SetMouseUpCallback(callback func(x, y int32)) {
	s.onMouseUp = callback
}

func (s *engineSurface) SetMouseMoveCallback(callback func(x, y int32)) {
	s.onMouseMove = callback
}

func (s *engineSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(s)
}

func (s *engineSurface) IsRunning() bool {
	return platformIsRunningCheck(s)
}

func (s *engineSurface) Close() error {
	return platformCloseSurface(s)
}

func (s *engineSurface) Width() int {
	return s.width
}

func (s *engineSurface) Height() int {
	return s.height
}
