package pointcloud

import (
	"math"
	"sync"

	"github.com/golang/geo/r3"

	"github.com/surveyviz/pointglobe/common"
)

// navigatorImpl is the single implementation of Navigator. Supports both
// orbit and planar controls simultaneously. Orbit methods modify spherical
// coordinates around the pivot and recompute position; planar methods
// translate both position and pivot along local camera axes, preserving the
// orbit relationship.
//
// The navigator works in the dataset's projected coordinate space: x east,
// y north, z up, lengths in the dataset's unit.
type navigatorImpl struct {
	mu sync.Mutex

	position r3.Vector
	pivot    r3.Vector

	// Spherical coordinates (offset from pivot)
	radius    float64
	azimuth   float64 // horizontal angle around the z axis
	elevation float64 // vertical angle from the horizontal plane

	minRadius    float64
	maxRadius    float64
	minElevation float64
	maxElevation float64

	zoomSpeed float64
	panSpeed  float64

	fovDegrees float64
	aspect     float64
}

// Navigator drives the point-cloud camera and exposes its pose for the
// per-frame globe sync. A geospatial engine feeds surface input (drag,
// scroll) into it; headless callers set the pose directly.
type Navigator interface {
	// Pose returns the current camera pose in projected coordinates.
	//
	// Returns:
	//   - common.CameraPose: position, pivot target, fov, and aspect
	Pose() common.CameraPose

	// Pivot returns the orbit pivot point.
	//
	// Returns:
	//   - r3.Vector: the pivot in projected coordinates
	Pivot() r3.Vector

	// SetPivot moves the orbit pivot, keeping the current radius and angles.
	//
	// Parameters:
	//   - pivot: the new pivot point
	SetPivot(pivot r3.Vector)

	// Radius returns the orbit distance from pivot to camera.
	//
	// Returns:
	//   - float64: the radius in projected length units
	Radius() float64

	// SetRadius sets the orbit distance, clamped to the configured limits.
	//
	// Parameters:
	//   - radius: the new radius
	SetRadius(radius float64)

	// Zoom moves the camera toward (positive delta) or away from the pivot.
	//
	// Parameters:
	//   - delta: scroll-style zoom increment
	Zoom(delta float64)

	// OrbitBy rotates the camera around the pivot. Elevation is clamped so
	// the camera never crosses the pole or dips under the horizon.
	//
	// Parameters:
	//   - dAzimuth: azimuth change in radians
	//   - dElevation: elevation change in radians
	OrbitBy(dAzimuth, dElevation float64)

	// PanRight translates camera and pivot along the camera's right axis.
	//
	// Parameters:
	//   - delta: pan distance multiplier
	PanRight(delta float64)

	// PanForward translates camera and pivot along the view direction.
	//
	// Parameters:
	//   - delta: pan distance multiplier
	PanForward(delta float64)

	// PanUp translates camera and pivot along the camera's up axis.
	//
	// Parameters:
	//   - delta: pan distance multiplier
	PanUp(delta float64)

	// FitToBounds re-centers the pivot on the bounds and backs the camera off
	// far enough that the whole box fits in the vertical field of view.
	//
	// Parameters:
	//   - b: the bounds to frame
	FitToBounds(b common.Bounds)

	// SetFieldOfView sets the vertical field of view carried in the pose.
	//
	// Parameters:
	//   - degrees: field of view in degrees
	SetFieldOfView(degrees float64)

	// SetAspect sets the aspect ratio (width / height) carried in the pose.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float64)
}

var _ Navigator = &navigatorImpl{}

// NewNavigator creates a navigator with sensible defaults for an aerial
// survey dataset: pitched down at the pivot from a few hundred units out.
//
// Parameters:
//   - options: functional options to configure the navigator
//
// Returns:
//   - Navigator: the newly created navigator
func NewNavigator(options ...NavigatorBuilderOption) Navigator {
	n := &navigatorImpl{
		radius:    250.0,
		azimuth:   0.0,
		elevation: math.Pi / 6,

		minRadius:    1.0,
		maxRadius:    50_000.0,
		minElevation: 0.05,
		maxElevation: math.Pi/2 - 0.1,

		zoomSpeed: 15.0,
		panSpeed:  1.0,

		fovDegrees: 60.0,
		aspect:     16.0 / 9.0,
	}
	for _, option := range options {
		option(n)
	}
	// Options may set radius or elevation outside the (possibly also
	// overridden) limits; bring the initial state inside them so the first
	// pose already honors the same bounds every later interaction does.
	n.radius = clamp(n.radius, n.minRadius, n.maxRadius)
	n.elevation = clamp(n.elevation, n.minElevation, n.maxElevation)
	n.updatePosition()
	return n
}

// updatePosition recomputes the camera position from spherical coordinates.
// Must be called whenever radius, azimuth, elevation, or pivot changes.
// Caller must hold the mutex.
func (n *navigatorImpl) updatePosition() {
	cosElev := math.Cos(n.elevation)
	n.position = r3.Vector{
		X: n.pivot.X + n.radius*cosElev*math.Sin(n.azimuth),
		Y: n.pivot.Y + n.radius*cosElev*math.Cos(n.azimuth),
		Z: n.pivot.Z + n.radius*math.Sin(n.elevation),
	}
}

// localAxes computes the camera's local coordinate axes with world up (0,0,1).
// Returns zero vectors if position and pivot coincide or the camera looks
// straight down. Caller must hold the mutex.
func (n *navigatorImpl) localAxes() (right, up, forward r3.Vector) {
	backward := n.position.Sub(n.pivot)
	if backward.Norm() < 1e-12 {
		return
	}
	backward = backward.Normalize()

	worldUp := r3.Vector{X: 0, Y: 0, Z: 1}
	right = worldUp.Cross(backward)
	if right.Norm() < 1e-12 {
		return r3.Vector{}, r3.Vector{}, r3.Vector{}
	}
	right = right.Normalize()

	up = backward.Cross(right)
	forward = backward.Mul(-1)
	return right, up, forward
}

func (n *navigatorImpl) Pose() common.CameraPose {
	n.mu.Lock()
	defer n.mu.Unlock()
	return common.CameraPose{
		Position:           n.position,
		Target:             n.pivot,
		FieldOfViewDegrees: n.fovDegrees,
		AspectRatio:        n.aspect,
	}
}

func (n *navigatorImpl) Pivot() r3.Vector {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pivot
}

func (n *navigatorImpl) SetPivot(pivot r3.Vector) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pivot = pivot
	n.updatePosition()
}

func (n *navigatorImpl) Radius() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.radius
}

func (n *navigatorImpl) SetRadius(radius float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.radius = clamp(radius, n.minRadius, n.maxRadius)
	n.updatePosition()
}

func (n *navigatorImpl) Zoom(delta float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.radius = clamp(n.radius-delta*n.zoomSpeed, n.minRadius, n.maxRadius)
	n.updatePosition()
}

func (n *navigatorImpl) OrbitBy(dAzimuth, dElevation float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.azimuth += dAzimuth
	n.elevation = clamp(n.elevation+dElevation, n.minElevation, n.maxElevation)
	n.updatePosition()
}

func (n *navigatorImpl) PanRight(delta float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	right, _, _ := n.localAxes()
	offset := right.Mul(delta * n.panSpeed)
	n.pivot = n.pivot.Add(offset)
	n.position = n.position.Add(offset)
}

func (n *navigatorImpl) PanForward(delta float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _, forward := n.localAxes()
	offset := forward.Mul(delta * n.panSpeed)
	n.pivot = n.pivot.Add(offset)
	n.position = n.position.Add(offset)
}

func (n *navigatorImpl) PanUp(delta float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, up, _ := n.localAxes()
	offset := up.Mul(delta * n.panSpeed)
	n.pivot = n.pivot.Add(offset)
	n.position = n.position.Add(offset)
}

func (n *navigatorImpl) FitToBounds(b common.Bounds) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pivot = b.Center()

	// Back off far enough that the bounding sphere fits the vertical fov.
	diagonal := b.Size().Norm()
	if diagonal > 0 {
		vfov := common.DegToRad(n.fovDegrees)
		n.radius = clamp(diagonal/(2*math.Tan(vfov/2)), n.minRadius, n.maxRadius)
	}
	n.updatePosition()
}

func (n *navigatorImpl) SetFieldOfView(degrees float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fovDegrees = degrees
}

func (n *navigatorImpl) SetAspect(aspect float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.aspect = aspect
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
