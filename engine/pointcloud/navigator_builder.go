package pointcloud

import "github.com/golang/geo/r3"

// NavigatorBuilderOption is a functional option for configuring a Navigator.
// Use the With* functions to create options.
type NavigatorBuilderOption func(n *navigatorImpl)

// WithPivot sets the initial orbit pivot point.
//
// Parameters:
//   - pivot: the pivot in projected coordinates
//
// Returns:
//   - NavigatorBuilderOption: option function to apply
func WithPivot(pivot r3.Vector) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.pivot = pivot
	}
}

// WithRadius sets the initial orbit radius.
//
// Parameters:
//   - radius: orbit distance in projected length units
//
// Returns:
//   - NavigatorBuilderOption: option function to apply
func WithRadius(radius float64) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.radius = radius
	}
}

// WithRadiusLimits bounds how close and how far the camera may orbit.
//
// Parameters:
//   - min, max: radius limits in projected length units
//
// Returns:
//   - NavigatorBuilderOption: option function to apply
func WithRadiusLimits(min, max float64) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.minRadius = min
		n.maxRadius = max
	}
}

// WithElevationLimits bounds the orbit elevation angle.
//
// Parameters:
//   - min, max: elevation limits in radians
//
// Returns:
//   - NavigatorBuilderOption: option function to apply
func WithElevationLimits(min, max float64) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.minElevation = min
		n.maxElevation = max
	}
}

// WithAngles sets the initial azimuth and elevation.
//
// Parameters:
//   - azimuth, elevation: angles in radians
//
// Returns:
//   - NavigatorBuilderOption: option function to apply
func WithAngles(azimuth, elevation float64) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.azimuth = azimuth
		n.elevation = elevation
	}
}

// WithZoomSpeed sets the radius change per zoom increment.
//
// Parameters:
//   - speed: zoom speed in projected length units
//
// Returns:
//   - NavigatorBuilderOption: option function to apply
func WithZoomSpeed(speed float64) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.zoomSpeed = speed
	}
}

// WithPanSpeed sets the translation distance per pan increment.
//
// Parameters:
//   - speed: pan speed in projected length units
//
// Returns:
//   - NavigatorBuilderOption: option function to apply
func WithPanSpeed(speed float64) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.panSpeed = speed
	}
}
