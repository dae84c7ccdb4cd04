package common

import (
	"math"

	"github.com/golang/geo/r3"
)

// FeetToMeters is the international foot in meters, the linear unit ratio used
// when reconciling point-cloud heights (feet) against globe heights (meters).
const FeetToMeters = 0.3048

// DegToRad converts degrees to radians.
//
// Parameters:
//   - deg: angle in degrees
//
// Returns:
//   - float64: angle in radians
func DegToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// RadToDeg converts radians to degrees.
//
// Parameters:
//   - rad: angle in radians
//
// Returns:
//   - float64: angle in degrees
func RadToDeg(rad float64) float64 {
	return rad * (180.0 / math.Pi)
}

// HorizontalFov derives the horizontal field of view from a vertical field of
// view and an aspect ratio. Both angles are in radians.
//
// Parameters:
//   - verticalFov: vertical field of view in radians
//   - aspect: surface width divided by height
//
// Returns:
//   - float64: horizontal field of view in radians
func HorizontalFov(verticalFov, aspect float64) float64 {
	return 2.0 * math.Atan(math.Tan(verticalFov/2.0)*aspect)
}

// VerticalFov recovers the vertical field of view from a horizontal field of
// view and an aspect ratio. Inverse of HorizontalFov.
//
// Parameters:
//   - horizontalFov: horizontal field of view in radians
//   - aspect: surface width divided by height
//
// Returns:
//   - float64: vertical field of view in radians
func VerticalFov(horizontalFov, aspect float64) float64 {
	return 2.0 * math.Atan(math.Tan(horizontalFov/2.0)/aspect)
}

// ValidGeodetic reports whether a longitude/latitude pair is finite and within
// the geodetic domain (|lon| <= 180, |lat| <= 90). Forward projection of
// coordinates outside a CRS's defined area can produce values that fail this
// check; callers must not build globe camera commands from them.
//
// Parameters:
//   - lon: longitude in degrees
//   - lat: latitude in degrees
//
// Returns:
//   - bool: true if the pair is usable as a geodetic coordinate
func ValidGeodetic(lon, lat float64) bool {
	if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return false
	}
	return math.Abs(lon) <= 180.0 && math.Abs(lat) <= 90.0
}

// Finite reports whether f is neither NaN nor infinite.
//
// Parameters:
//   - f: value to check
//
// Returns:
//   - bool: true if f is a finite number
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// SurfaceNormal returns the outward unit normal of the WGS84 ellipsoid at the
// given geodetic longitude/latitude, in earth-fixed coordinates. Geodetic
// latitude is defined by the ellipsoid normal, so no flattening terms appear.
//
// Parameters:
//   - lonDeg: longitude in degrees
//   - latDeg: latitude in degrees
//
// Returns:
//   - r3.Vector: the unit surface normal
func SurfaceNormal(lonDeg, latDeg float64) r3.Vector {
	lon := DegToRad(lonDeg)
	lat := DegToRad(latDeg)
	cosLat := math.Cos(lat)
	return r3.Vector{
		X: cosLat * math.Cos(lon),
		Y: cosLat * math.Sin(lon),
		Z: math.Sin(lat),
	}
}
