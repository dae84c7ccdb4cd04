// package common contains common types that are used throughout this viewer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"strings"

	"github.com/golang/geo/r3"
)

// AnchorLocation is the externally supplied geodetic reference for a session.
// It is immutable once the session starts.
type AnchorLocation struct {
	// Latitude is the geodetic latitude in degrees.
	Latitude float64

	// Longitude is the geodetic longitude in degrees.
	Longitude float64

	// GroundElevation is the elevation of the dataset's ground datum, expressed
	// in the point cloud's own length unit (typically feet).
	GroundElevation float64
}

// CrsDescriptor describes the projected coordinate reference system a point
// cloud is stored in. The projection string syntax belongs to the external
// projection library, not to this module.
type CrsDescriptor struct {
	// ProjectionString is an opaque projection definition (datum, units,
	// projection parameters). Empty means "unknown CRS".
	ProjectionString string
}

// Empty reports whether the descriptor carries no usable projection definition.
//
// Returns:
//   - bool: true if the projection string is empty or whitespace
func (d CrsDescriptor) Empty() bool {
	return strings.TrimSpace(d.ProjectionString) == ""
}

// CameraPose is the per-frame snapshot of the point-cloud engine's active
// camera. Poses are ephemeral; they are read, consumed, and discarded every
// frame and never persisted.
type CameraPose struct {
	// Position is the camera's world-space position in projected coordinates.
	Position r3.Vector

	// Target is the current view pivot/target in projected coordinates.
	Target r3.Vector

	// FieldOfViewDegrees is the camera's vertical field of view.
	FieldOfViewDegrees float64

	// AspectRatio is the render surface width divided by height.
	AspectRatio float64
}

// GeodeticPoint3 is a position in geodetic coordinates: longitude/latitude in
// degrees plus height in meters above the WGS84 ellipsoid.
type GeodeticPoint3 struct {
	Longitude float64
	Latitude  float64
	Height    float64
}

// Bounds is an axis-aligned bounding box in projected coordinates, used by
// fit-to-bounds camera framing.
type Bounds struct {
	Min r3.Vector
	Max r3.Vector
}

// Center returns the midpoint of the bounding box.
//
// Returns:
//   - r3.Vector: the box center
func (b Bounds) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extents along each axis.
//
// Returns:
//   - r3.Vector: per-axis extent (Max - Min)
func (b Bounds) Size() r3.Vector {
	return b.Max.Sub(b.Min)
}
