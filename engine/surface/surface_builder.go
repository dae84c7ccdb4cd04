package surface

// SurfaceBuilderOption is a functional option for configuring an
// engineSurface. Use the With* functions to create options.
type SurfaceBuilderOption func(s *engineSurface)

// WithTitle sets the surface title displayed in the title bar.
//
// Parameters:
//   - title: the title text
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithTitle(title string) SurfaceBuilderOption {
	return func(s *engineSurface) {
		s.title = title
	}
}

// WithWidth sets the initial surface width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithWidth(width int) SurfaceBuilderOption {
	return func(s *engineSurface) {
		s.width = width
	}
}

// WithHeight sets the initial surface height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithHeight(height int) SurfaceBuilderOption {
	return func(s *engineSurface) {
		s.height = height
	}
}

// WithTransparentFramebuffer requests an alpha-blended framebuffer so the
// surface composites over whatever is behind it.
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithTransparentFramebuffer() SurfaceBuilderOption {
	return func(s *engineSurface) {
		s.transparent = true
	}
}

// WithOverlayOf stacks this surface directly over another one: undecorated,
// floating, matching the other surface's position and size.
//
// Parameters:
//   - back: the surface to overlay
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithOverlayOf(back Surface) SurfaceBuilderOption {
	return func(s *engineSurface) {
		if bs, ok := back.(*engineSurface); ok {
			s.overlayOf = bs
		}
	}
}
