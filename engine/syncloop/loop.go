// package syncloop drives the per-frame camera handoff from the point-cloud
// engine to the globe engine. Each tick renders the point cloud, transforms
// its camera through the coordinate bridge, validates the result, and issues
// a matching globe camera command before rendering the globe.
package syncloop

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"github.com/golang/geo/r3"

	"github.com/surveyviz/pointglobe/common"
	"github.com/surveyviz/pointglobe/engine/bridge"
	"github.com/surveyviz/pointglobe/engine/globe"
	"github.com/surveyviz/pointglobe/engine/pointcloud"
)

// State is the loop's lifecycle state.
type State int32

const (
	// StateIdle means the loop has been created but not started.
	StateIdle State = iota

	// StateRunning means ticks are being scheduled every frame.
	StateRunning

	// StateStopped is terminal: a stopped loop is never restarted. A new
	// session creates a fresh loop instance instead.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FrameScheduler is the cooperative frame-scheduling primitive the loop runs
// on. Everything the loop does is interleaved on one logical thread; there is
// no parallel tick execution.
type FrameScheduler interface {
	// NextFrame schedules fn to run once on the next frame.
	//
	// Parameters:
	//   - fn: the callback to run
	//
	// Returns:
	//   - func(): cancels the callback if it has not yet run
	NextFrame(fn func()) (cancel func())
}

// Stats counts tick outcomes for the session. All counters are cumulative.
type Stats struct {
	// Ticks is the total number of ticks executed.
	Ticks uint64

	// Synced is the number of ticks that issued a globe camera command.
	Synced uint64

	// SkippedDistance counts ticks aborted by the distance guard.
	SkippedDistance uint64

	// SkippedValidity counts ticks aborted by the geodetic validity guard.
	SkippedValidity uint64

	// SkippedHeight counts ticks aborted by the height guard.
	SkippedHeight uint64

	// RenderErrors counts render-time exceptions caught from either engine.
	RenderErrors uint64
}

// loopImpl is the implementation of the Loop interface.
type loopImpl struct {
	pc  pointcloud.PointCloudEngineAPI
	gl  globe.GlobeEngineAPI
	br  bridge.Bridge // nil: degraded mode, each engine independently navigable
	sch FrameScheduler

	distanceBound float64
	minHeight     float64
	maxHeight     float64
	unitToMeters  float64

	state  atomic.Int32
	mu     sync.Mutex
	cancel func()

	ticks           atomic.Uint64
	synced          atomic.Uint64
	skippedDistance atomic.Uint64
	skippedValidity atomic.Uint64
	skippedHeight   atomic.Uint64
	renderErrors    atomic.Uint64

	// Guard and render failures are logged once per session, not once per
	// frame, so a runaway camera cannot flood the log.
	logDistanceOnce sync.Once
	logValidityOnce sync.Once
	logHeightOnce   sync.Once
	logPcRenderOnce sync.Once
	logGlRenderOnce sync.Once
}

// Loop is the per-frame camera synchronization task. Lifecycle:
// Idle → Running → Stopped, with Stopped terminal for the session.
type Loop interface {
	// Start transitions Idle → Running and schedules the first tick.
	//
	// Returns:
	//   - error: error if the loop is not Idle
	Start() error

	// Stop transitions Running → Stopped and cancels the next scheduled tick.
	// An in-flight tick always completes; Stop only prevents the next one.
	// Safe to call in any state.
	Stop()

	// State returns the loop's current lifecycle state.
	//
	// Returns:
	//   - State: the current state
	State() State

	// Stats returns a snapshot of the loop's tick counters.
	//
	// Returns:
	//   - Stats: cumulative tick outcome counts
	Stats() Stats
}

var _ Loop = &loopImpl{}

// NewLoop creates a camera sync loop over the two engines. A nil bridge is
// accepted and puts the loop in degraded mode: both engines still render each
// tick but no globe camera commands are issued.
//
// Parameters:
//   - pc: the point-cloud engine (renders first, owns the frame clock)
//   - gl: the globe engine
//   - br: the coordinate bridge, or nil for degraded mode
//   - sch: the frame scheduler ticks run on
//   - options: functional options for guard thresholds and unit ratio
//
// Returns:
//   - Loop: the new loop, in Idle state
func NewLoop(pc pointcloud.PointCloudEngineAPI, gl globe.GlobeEngineAPI, br bridge.Bridge, sch FrameScheduler, options ...LoopBuilderOption) Loop {
	l := &loopImpl{
		pc:            pc,
		gl:            gl,
		br:            br,
		sch:           sch,
		distanceBound: 4_000_000,
		minHeight:     -1_000,
		maxHeight:     100_000,
		unitToMeters:  common.FeetToMeters,
	}
	for _, opt := range options {
		opt(l)
	}
	l.state.Store(int32(StateIdle))
	return l
}

func (l *loopImpl) Start() error {
	if !l.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return fmt.Errorf("sync loop cannot start from state %s", l.State())
	}
	l.schedule()
	return nil
}

func (l *loopImpl) Stop() {
	if !l.state.CompareAndSwap(int32(StateRunning), int32(StateStopped)) {
		return
	}
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mu.Unlock()
}

func (l *loopImpl) State() State {
	return State(l.state.Load())
}

func (l *loopImpl) Stats() Stats {
	return Stats{
		Ticks:           l.ticks.Load(),
		Synced:          l.synced.Load(),
		SkippedDistance: l.skippedDistance.Load(),
		SkippedValidity: l.skippedValidity.Load(),
		SkippedHeight:   l.skippedHeight.Load(),
		RenderErrors:    l.renderErrors.Load(),
	}
}

// schedule books the next tick with the frame scheduler.
func (l *loopImpl) schedule() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.State() != StateRunning {
		return
	}
	l.cancel = l.sch.NextFrame(l.tick)
}

// tick executes one frame of the synchronization algorithm, then reschedules
// itself. The loop continues regardless of per-tick failures; a bad frame is
// skipped and the next good frame self-corrects the globe pose.
func (l *loopImpl) tick() {
	if l.State() != StateRunning {
		return
	}
	defer l.schedule()
	l.ticks.Add(1)

	// The point cloud renders first: it owns the simulation clock, and its
	// post-update camera is what this tick mirrors onto the globe.
	if err := l.pc.Render(); err != nil {
		l.renderErrors.Add(1)
		l.logPcRenderOnce.Do(func() {
			log.Printf("[SyncLoop] point cloud render failed (logged once per session): %v", err)
		})
	}

	l.syncGlobeCamera()

	if err := l.gl.Render(); err != nil {
		l.renderErrors.Add(1)
		l.logGlRenderOnce.Do(func() {
			log.Printf("[SyncLoop] globe render failed (logged once per session): %v", err)
		})
	}
}

// syncGlobeCamera derives this tick's globe camera command from the
// point-cloud camera. Any guard failure aborts the sync for this tick without
// touching the globe camera; the point-cloud view stays fully usable.
func (l *loopImpl) syncGlobeCamera() {
	if l.br == nil {
		return
	}

	pose := l.pc.ActiveCamera()

	// Distance guard: a camera implausibly far from the CRS origin (for
	// example during runaway interactive flight) produces meaningless
	// transform output with catastrophic numerical error.
	if math.Abs(pose.Position.X) > l.distanceBound || math.Abs(pose.Position.Y) > l.distanceBound ||
		math.Abs(pose.Target.X) > l.distanceBound || math.Abs(pose.Target.Y) > l.distanceBound {
		l.skippedDistance.Add(1)
		l.logDistanceOnce.Do(func() {
			log.Printf("[SyncLoop] camera beyond distance guard (%.0f units); skipping globe sync (logged once per session)", l.distanceBound)
		})
		return
	}

	camLon, camLat := l.br.Forward(pose.Position.X, pose.Position.Y)
	targetLon, targetLat := l.br.Forward(pose.Target.X, pose.Target.Y)

	// Validity guard: the forward transform is only defined inside the CRS
	// domain and signals out-of-domain input as non-finite or out-of-range.
	if !common.ValidGeodetic(camLon, camLat) || !common.ValidGeodetic(targetLon, targetLat) {
		l.skippedValidity.Add(1)
		l.logValidityOnce.Do(func() {
			log.Printf("[SyncLoop] transform produced invalid geodetic coordinates; skipping globe sync (logged once per session)")
		})
		return
	}

	// Height reconciliation: the point cloud's vertical coordinate is in the
	// dataset's length unit relative to its own ground datum; the globe wants
	// meters above the ellipsoid. Subtracting the ground offset first keeps
	// the scalar flat-earth approximation the rest of the pipeline assumes.
	height := (pose.Position.Z - l.br.GroundElevationOffset()) * l.unitToMeters
	if !common.Finite(height) || height < l.minHeight || height > l.maxHeight {
		l.skippedHeight.Add(1)
		l.logHeightOnce.Do(func() {
			log.Printf("[SyncLoop] reconciled height %.1f m outside [%.0f, %.0f]; skipping globe sync (logged once per session)", height, l.minHeight, l.maxHeight)
		})
		return
	}

	direction := pose.Target.Sub(pose.Position)
	if direction.Norm() == 0 {
		// Degenerate pose: camera and pivot coincide. Look straight down.
		direction = r3.Vector{X: 0, Y: 0, Z: -1}
	} else {
		direction = direction.Normalize()
	}

	l.gl.SetCameraView(globe.CameraCommand{
		Destination: common.GeodeticPoint3{
			Longitude: camLon,
			Latitude:  camLat,
			Height:    height,
		},
		Direction:  direction,
		Up:         common.SurfaceNormal(camLon, camLat),
		FrustumFov: l.frustumFov(pose),
	})
	l.synced.Add(1)
}

// frustumFov reconciles the point-cloud camera's vertical field of view with
// the globe frustum. Portrait surfaces take the vertical fov directly; wide
// surfaces take the derived horizontal fov, because landscape views must
// preserve horizontal framing to keep the two renders aligned.
func (l *loopImpl) frustumFov(pose common.CameraPose) float64 {
	vfov := common.DegToRad(pose.FieldOfViewDegrees)
	if pose.AspectRatio < 1 {
		return vfov
	}
	return common.HorizontalFov(vfov, pose.AspectRatio)
}
