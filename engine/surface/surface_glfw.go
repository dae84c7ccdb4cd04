package surface

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwSurface holds the GLFW-specific surface state.
type glfwSurface struct {
	parent  *engineSurface
	window  *glfw.Window
	running bool
}

// The GLFW library is initialized once per process and terminated when the
// last surface closes. An overlay session owns two surfaces, so init is
// refcounted instead of tied to a single window's lifetime.
var (
	glfwMu       sync.Mutex
	glfwRefCount int
)

func glfwRetain() error {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	if glfwRefCount == 0 {
		if err := glfw.Init(); err != nil {
			return fmt.Errorf("failed to initialize GLFW: %v", err)
		}
	}
	glfwRefCount++
	return nil
}

func glfwRelease() {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	glfwRefCount--
	if glfwRefCount == 0 {
		glfw.Terminate()
	}
}

// newPlatformSurface creates the GLFW window with input callbacks and stores
// it as the internal surface.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformSurface(s *engineSurface) error {
	runtime.LockOSThread()

	if err := glfwRetain(); err != nil {
		return err
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	// A transparent framebuffer lets the point-cloud surface composite over
	// the globe surface behind it wherever nothing is drawn.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_wnd
	if s.transparent {
		glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)
	} else {
		glfw.WindowHint(glfw.TransparentFramebuffer, glfw.False)
	}

	// A front overlay surface has no chrome of its own and stays above its
	// back surface in the z-order.
	if s.overlayOf != nil {
		glfw.WindowHint(glfw.Decorated, glfw.False)
		glfw.WindowHint(glfw.Floating, glfw.True)
	} else {
		glfw.WindowHint(glfw.Decorated, glfw.True)
		glfw.WindowHint(glfw.Floating, glfw.False)
	}

	win, err := glfw.CreateWindow(s.width, s.height, s.title, nil, nil)
	if err != nil {
		glfwRelease()
		return fmt.Errorf("failed to create GLFW window: %v", err)
	}

	gs := &glfwSurface{
		parent:  s,
		window:  win,
		running: true,
	}
	s.internalSurface = gs

	if s.overlayOf != nil {
		if back, ok := s.overlayOf.internalSurface.(*glfwSurface); ok {
			x, y := back.window.GetPos()
			win.SetPos(x, y)
		}
	}

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetScrollCallback
	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		if s.onScroll != nil {
			s.onScroll(float32(yoff))
		}
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetMouseButtonCallback
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft {
			xpos, ypos := win.GetCursorPos()
			switch action {
			case glfw.Press:
				if s.onMouseDown != nil {
					s.onMouseDown(int32(xpos), int32(ypos))
				}
			case glfw.Release:
				if s.onMouseUp != nil {
					s.onMouseUp(int32(xpos), int32(ypos))
				}
			}
		}
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetCursorPosCallback
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if s.onMouseMove != nil {
			s.onMouseMove(int32(xpos), int32(ypos))
		}
	})

	// Use framebuffer size callback for pixel-accurate resize events.
	// On high-DPI displays (e.g., macOS Retina), framebuffer size differs from window size.
	// The renderer requires pixel dimensions for correct surface configuration.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		s.width = width
		s.height = height
		if s.onResize != nil {
			s.onResize(width, height)
		}
	})

	// Update stored dimensions to reflect actual framebuffer size (may differ from requested on high-DPI).
	fbWidth, fbHeight := win.GetFramebufferSize()
	s.width = fbWidth
	s.height = fbHeight

	return nil
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
// Uses the wgpuglfw bridge package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(s *engineSurface) *wgpu.SurfaceDescriptor {
	if s.internalSurface == nil {
		return nil
	}
	gs := s.internalSurface.(*glfwSurface)
	return wgpuglfw.GetSurfaceDescriptor(gs.window)
}

// platformIsRunningCheck returns whether the GLFW window is still active.
// Returns false if the internal surface is nil, the running flag is cleared,
// or GLFW reports ShouldClose.
//
// Parameters:
//   - s: the engineSurface to check
//
// Returns:
//   - bool: true if the surface is still running
func platformIsRunningCheck(s *engineSurface) bool {
	if s.internalSurface == nil {
		return false
	}
	gs := s.internalSurface.(*glfwSurface)
	return gs.running && !gs.window.ShouldClose()
}

// platformCloseSurface destroys the GLFW window and releases the library
// reference. Closing an already-closed surface is a no-op.
//
// Parameters:
//   - s: the engineSurface to close
//
// Returns:
//   - error: error if the surface is not initialized
func platformCloseSurface(s *engineSurface) error {
	if s.internalSurface == nil {
		return fmt.Errorf("surface is not initialized")
	}
	gs := s.internalSurface.(*glfwSurface)
	if !gs.running {
		return nil
	}
	gs.running = false
	gs.window.SetShouldClose(true)
	gs.window.Destroy()
	glfwRelease()
	return nil
}

// ProcessEvents polls GLFW for pending input and window events without
// blocking. Call once per frame from the thread that created the surfaces.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func ProcessEvents() {
	glfw.PollEvents()
}
