// package engine assembles a point-cloud-over-globe viewer session: a globe
// engine rendering into a back surface, a point-cloud engine compositing over
// it through a transparent front surface, and the camera sync loop keeping the
// two views aligned.
package engine

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/geo/r3"

	"github.com/surveyviz/pointglobe/common"
	"github.com/surveyviz/pointglobe/config"
	"github.com/surveyviz/pointglobe/engine/baselayer"
	"github.com/surveyviz/pointglobe/engine/bridge"
	"github.com/surveyviz/pointglobe/engine/globe"
	"github.com/surveyviz/pointglobe/engine/loader"
	"github.com/surveyviz/pointglobe/engine/pointcloud"
	"github.com/surveyviz/pointglobe/engine/profiler"
	"github.com/surveyviz/pointglobe/engine/surface"
	"github.com/surveyviz/pointglobe/engine/syncloop"
)

// GlobeFactory creates a globe engine rendering into the given surface. The
// surface is nil when the viewer runs headless.
type GlobeFactory func(s surface.Surface) (globe.GlobeEngineAPI, error)

// PointCloudFactory creates a point-cloud engine rendering into the given
// surface. The surface is nil when the viewer runs headless.
type PointCloudFactory func(s surface.Surface) (pointcloud.PointCloudEngineAPI, error)

// viewerImpl is the implementation of the Viewer interface.
type viewerImpl struct {
	cfg *config.Config

	globeEng globe.GlobeEngineAPI
	pcEng    pointcloud.PointCloudEngineAPI

	frontSurface surface.Surface
	backSurface  surface.Surface

	sch      syncloop.FrameScheduler
	ownedSch *tickScheduler

	ldr loader.Loader

	projProvider   bridge.ProjectionProvider
	projOverridden bool

	prof             *profiler.Profiler
	profilingEnabled bool

	readyCallback func(gl globe.GlobeEngineAPI, pc pointcloud.PointCloudEngineAPI)
	readyOnce     sync.Once
	readyFired    atomic.Bool

	quitChannel chan struct{}
	quitOnce    sync.Once

	mu       sync.Mutex
	loop     syncloop.Loop
	downOnce bool
}

// Viewer is a single overlay viewer session. Construction brings both engines
// up in order (globe first, then point cloud); Teardown releases them.
type Viewer interface {
	// Globe returns the session's globe engine.
	//
	// Returns:
	//   - globe.GlobeEngineAPI: the globe engine
	Globe() globe.GlobeEngineAPI

	// PointCloud returns the session's point-cloud engine.
	//
	// Returns:
	//   - pointcloud.PointCloudEngineAPI: the point-cloud engine
	PointCloud() pointcloud.PointCloudEngineAPI

	// LoadPointCloud loads the configured dataset, builds the coordinate
	// bridge, and starts the camera sync loop. With no dataset URL configured
	// the session stays globe-only and the call is a no-op.
	//
	// A load failure is returned as an error and leaves the session exactly as
	// it was: the globe keeps rendering and a later retry is safe.
	//
	// Parameters:
	//   - ctx: cancels the in-flight load
	//
	// Returns:
	//   - error: error if the dataset could not be loaded
	LoadPointCloud(ctx context.Context) error

	// SetBaseLayer swaps the globe's background imagery. Camera pose, the sync
	// loop, and all point-cloud state are untouched.
	//
	// Parameters:
	//   - kind: the imagery style to install
	//
	// Returns:
	//   - error: error if the kind is unknown
	SetBaseLayer(kind globe.ImageryKind) error

	// SyncState returns the camera sync loop's lifecycle state, or StateIdle
	// when no loop exists yet.
	//
	// Returns:
	//   - syncloop.State: the loop state
	SyncState() syncloop.State

	// SyncStats returns a snapshot of the sync loop's tick counters. Zero
	// value when no loop exists.
	//
	// Returns:
	//   - syncloop.Stats: cumulative tick outcome counts
	SyncStats() syncloop.Stats

	// Run starts the frame scheduler and blocks until the session quits:
	// Teardown is called, or every surface closes. Call from the main thread
	// when the session owns surfaces.
	Run()

	// Teardown releases the session in order: sync loop, datasets, point-cloud
	// engine, globe engine, surfaces, scheduler. Every step is attempted even
	// when earlier ones fail; repeated calls are no-ops.
	//
	// Returns:
	//   - error: the accumulated step failures, or nil
	Teardown() error
}

var _ Viewer = &viewerImpl{}

// NewViewer boots a viewer session from the config. The globe engine is
// created and configured first so there is always a basemap to show; the
// point-cloud engine comes up second and composites over it. A factory
// failure tears down whatever was already created and is returned as an
// error.
//
// Parameters:
//   - cfg: the session configuration
//   - options: functional options (engine factories, surfaces, scheduler, ...)
//
// Returns:
//   - Viewer: the bootstrapped session
//   - error: error if the config is invalid or an engine fails to come up
func NewViewer(cfg *config.Config, options ...ViewerBuilderOption) (Viewer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("viewer config: %w", err)
	}

	b := &viewerBuilder{}
	for _, opt := range options {
		opt(b)
	}
	if b.globeFactory == nil {
		return nil, fmt.Errorf("viewer requires a globe engine factory")
	}
	if b.pcFactory == nil {
		return nil, fmt.Errorf("viewer requires a point-cloud engine factory")
	}

	v := &viewerImpl{
		cfg:              cfg,
		ldr:              b.ldr,
		projProvider:     b.projProvider,
		projOverridden:   b.projOverridden,
		profilingEnabled: b.profilingEnabled,
		readyCallback:    b.readyCallback,
		quitChannel:      make(chan struct{}),
	}

	if b.surfaceWidth > 0 && b.surfaceHeight > 0 {
		front, back, err := surface.NewOverlayPair(b.surfaceWidth, b.surfaceHeight)
		if err != nil {
			return nil, fmt.Errorf("creating overlay surfaces: %w", err)
		}
		v.frontSurface = front
		v.backSurface = back
	}

	globeEng, err := b.globeFactory(v.backSurface)
	if err != nil {
		v.closeSurfaces()
		return nil, fmt.Errorf("bootstrapping globe engine: %w", err)
	}
	v.globeEng = globeEng

	// The globe starts as a bare basemap: no widgets, no atmosphere, imagery
	// per config, camera parked above the anchor until the dataset arrives.
	globeEng.SetChrome(globe.Chrome{})
	globeEng.SetSceneEffects(globe.SceneEffects{})
	if err := baselayer.Set(globeEng, globe.ImageryKind(cfg.BaseLayer)); err != nil {
		_ = globeEng.Destroy()
		v.closeSurfaces()
		return nil, fmt.Errorf("bootstrapping globe engine: %w", err)
	}
	anchor := common.AnchorLocation{
		Latitude:        cfg.Anchor.Latitude,
		Longitude:       cfg.Anchor.Longitude,
		GroundElevation: cfg.Anchor.GroundElevation,
	}
	globeEng.SetCameraView(placeholderPose(anchor, cfg.FieldOfView))

	pcEng, err := b.pcFactory(v.frontSurface)
	if err != nil {
		_ = globeEng.Destroy()
		v.closeSurfaces()
		return nil, fmt.Errorf("bootstrapping point-cloud engine: %w", err)
	}
	v.pcEng = pcEng

	// A fully transparent clear color is what makes the overlay work: pixels
	// the point cloud leaves untouched show the globe behind them.
	pcEng.SetClearColor(0, 0, 0, 0)
	pcEng.SetEyeDomeLighting(true)
	pcEng.SetFieldOfView(cfg.FieldOfView)
	pcEng.SetPointBudget(cfg.PointBudget)
	pcEng.SetNavigationMode(pointcloud.NavigationGeospatial)

	if b.sch != nil {
		v.sch = b.sch
	} else {
		v.ownedSch = newTickScheduler(cfg.FrameRateLimit)
		v.sch = v.ownedSch
	}
	if v.ldr == nil {
		v.ldr = loader.NewLoader()
	}

	if v.profilingEnabled {
		v.prof = profiler.NewProfiler()
	}
	if v.ownedSch != nil {
		v.ownedSch.setFrameHook(v.onFrame)
	}

	// First frame: globe below, point cloud (still empty) above. Success
	// means the session is presentable and the ready callback fires.
	if err := v.globeEng.Render(); err != nil {
		log.Printf("[Viewer] first globe render failed: %v", err)
	} else if err := v.pcEng.Render(); err != nil {
		log.Printf("[Viewer] first point cloud render failed: %v", err)
	} else {
		v.notifyReady()
	}

	return v, nil
}

func (v *viewerImpl) Globe() globe.GlobeEngineAPI {
	return v.globeEng
}

func (v *viewerImpl) PointCloud() pointcloud.PointCloudEngineAPI {
	return v.pcEng
}

func (v *viewerImpl) LoadPointCloud(ctx context.Context) error {
	if v.cfg.PointCloudURL == "" {
		log.Printf("[Viewer] no dataset configured; running globe-only")
		return nil
	}

	// The receive is ctx-guarded so a canceled session never blocks here,
	// even if the worker pool drops the task and the result never arrives.
	var res loader.Result
	select {
	case res = <-v.ldr.Load(ctx, v.pcEng, v.cfg.PointCloudURL, v.cfg.DatasetName):
	case <-ctx.Done():
		return fmt.Errorf("loading point cloud %s: %w", v.cfg.PointCloudURL, ctx.Err())
	}
	if res.Failed() {
		return fmt.Errorf("loading point cloud %s: %w", v.cfg.PointCloudURL, res.Err)
	}
	if res.Handle == nil {
		return fmt.Errorf("loading point cloud %s: loader delivered no result", v.cfg.PointCloudURL)
	}

	anchor := common.AnchorLocation{
		Latitude:        v.cfg.Anchor.Latitude,
		Longitude:       v.cfg.Anchor.Longitude,
		GroundElevation: v.cfg.Anchor.GroundElevation,
	}
	crs := res.Handle.Crs
	if crs.Empty() && v.cfg.CrsProjection != "" {
		crs = common.CrsDescriptor{ProjectionString: v.cfg.CrsProjection}
	}

	var buildOpts []bridge.BuildOption
	if v.projOverridden {
		buildOpts = append(buildOpts, bridge.WithProvider(v.projProvider))
	}
	// A missing bridge is not an error: the loop runs degraded and each
	// engine stays independently navigable.
	br, _ := bridge.Build(crs, anchor, buildOpts...)

	loop := syncloop.NewLoop(v.pcEng, v.globeEng, br, readyRetryScheduler{inner: v.sch, v: v},
		syncloop.WithDistanceBound(v.cfg.Guards.DistanceBound),
		syncloop.WithHeightEnvelope(v.cfg.Guards.MinHeight, v.cfg.Guards.MaxHeight),
		syncloop.WithUnitRatio(v.cfg.Guards.UnitRatio),
	)

	v.mu.Lock()
	if v.loop != nil {
		// Loops are single-use: a replaced dataset gets a fresh one.
		v.loop.Stop()
	}
	v.loop = loop
	v.mu.Unlock()

	if v.prof != nil {
		v.prof.SetSyncStatsSource(loop)
	}
	if err := loop.Start(); err != nil {
		return fmt.Errorf("starting camera sync: %w", err)
	}
	return nil
}

func (v *viewerImpl) SetBaseLayer(kind globe.ImageryKind) error {
	return baselayer.Set(v.globeEng, kind)
}

func (v *viewerImpl) SyncState() syncloop.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loop == nil {
		return syncloop.StateIdle
	}
	return v.loop.State()
}

func (v *viewerImpl) SyncStats() syncloop.Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loop == nil {
		return syncloop.Stats{}
	}
	return v.loop.Stats()
}

func (v *viewerImpl) Run() {
	if v.ownedSch != nil {
		v.ownedSch.start()
	}

	if v.frontSurface == nil && v.backSurface == nil {
		<-v.quitChannel
		return
	}

	// Surfaces require event polling on the thread that created them.
	for {
		select {
		case <-v.quitChannel:
			return
		default:
			surface.ProcessEvents()
			if !v.surfacesRunning() {
				v.signalQuit()
				return
			}
			time.Sleep(time.Millisecond)
		}
	}
}

func (v *viewerImpl) surfacesRunning() bool {
	front := v.frontSurface == nil || v.frontSurface.IsRunning()
	back := v.backSurface == nil || v.backSurface.IsRunning()
	return front && back
}

func (v *viewerImpl) closeSurfaces() {
	if v.frontSurface != nil {
		_ = v.frontSurface.Close()
	}
	if v.backSurface != nil {
		_ = v.backSurface.Close()
	}
}

// signalQuit closes the quit channel to unblock Run.
// Uses sync.Once to ensure the channel is only closed once.
func (v *viewerImpl) signalQuit() {
	v.quitOnce.Do(func() {
		close(v.quitChannel)
	})
}

func (v *viewerImpl) notifyReady() {
	if v.readyCallback == nil {
		return
	}
	v.readyOnce.Do(func() {
		v.readyFired.Store(true)
		v.readyCallback(v.globeEng, v.pcEng)
	})
}

// onFrame runs once per owned-scheduler tick, scheduled callback or not.
func (v *viewerImpl) onFrame() {
	v.maybeRetryReady()
	if v.prof != nil {
		v.prof.Tick()
	}
}

// maybeRetryReady re-attempts the first-render handshake on a later frame when
// the bootstrap render failed transiently, so the ready callback still fires
// exactly once as soon as both engines produce a good frame.
func (v *viewerImpl) maybeRetryReady() {
	if v.readyCallback == nil || v.readyFired.Load() {
		return
	}
	v.mu.Lock()
	down := v.downOnce
	v.mu.Unlock()
	if down {
		return
	}
	if err := v.globeEng.Render(); err != nil {
		return
	}
	if err := v.pcEng.Render(); err != nil {
		return
	}
	v.notifyReady()
}

// readyRetryScheduler wraps the session scheduler so each sync-loop frame also
// re-attempts the ready handshake until it succeeds. Sessions on an injected
// scheduler have no tick hook, so this is their retry path.
type readyRetryScheduler struct {
	inner syncloop.FrameScheduler
	v     *viewerImpl
}

func (s readyRetryScheduler) NextFrame(fn func()) (cancel func()) {
	return s.inner.NextFrame(func() {
		fn()
		s.v.maybeRetryReady()
	})
}

// placeholderPose parks the globe camera above the anchor, pitched down, until
// the dataset loads and the sync loop takes over the camera.
func placeholderPose(anchor common.AnchorLocation, fovDegrees float64) globe.CameraCommand {
	up := common.SurfaceNormal(anchor.Longitude, anchor.Latitude)
	lon := common.DegToRad(anchor.Longitude)
	lat := common.DegToRad(anchor.Latitude)
	north := r3.Vector{
		X: -math.Sin(lat) * math.Cos(lon),
		Y: -math.Sin(lat) * math.Sin(lon),
		Z: math.Cos(lat),
	}
	pitch := common.DegToRad(config.DefaultPlaceholderPitch)
	direction := north.Mul(math.Cos(pitch)).Add(up.Mul(math.Sin(pitch))).Normalize()

	return globe.CameraCommand{
		Destination: common.GeodeticPoint3{
			Longitude: anchor.Longitude,
			Latitude:  anchor.Latitude,
			Height:    config.DefaultPlaceholderAltitude,
		},
		Direction:  direction,
		Up:         up,
		FrustumFov: common.DegToRad(fovDegrees),
	}
}
