package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golang/geo/r3"

	"github.com/surveyviz/pointglobe/common"
	"github.com/surveyviz/pointglobe/config"
	"github.com/surveyviz/pointglobe/engine/bridge"
	"github.com/surveyviz/pointglobe/engine/globe"
	"github.com/surveyviz/pointglobe/engine/loader"
	"github.com/surveyviz/pointglobe/engine/pointcloud"
	"github.com/surveyviz/pointglobe/engine/surface"
	"github.com/surveyviz/pointglobe/engine/syncloop"
)

// callRecorder collects cross-fake call ordering for teardown tests.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *callRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeGlobe struct {
	rec *callRecorder

	provider    globe.ImageryProvider
	hasProvider bool
	commands    []globe.CameraCommand
	chrome      []globe.Chrome
	effects     []globe.SceneEffects

	renderErr  error
	renders    int
	destroyErr error
	destroyed  bool
}

func (g *fakeGlobe) SetImageryProvider(p globe.ImageryProvider) {
	g.provider = p
	g.hasProvider = true
}
func (g *fakeGlobe) ImageryProvider() (globe.ImageryProvider, bool) { return g.provider, g.hasProvider }
func (g *fakeGlobe) SetCameraView(cmd globe.CameraCommand)          { g.commands = append(g.commands, cmd) }
func (g *fakeGlobe) SetSceneEffects(fx globe.SceneEffects)          { g.effects = append(g.effects, fx) }
func (g *fakeGlobe) SetChrome(c globe.Chrome)                       { g.chrome = append(g.chrome, c) }
func (g *fakeGlobe) Render() error {
	g.renders++
	return g.renderErr
}
func (g *fakeGlobe) Destroy() error {
	if g.rec != nil {
		g.rec.record("globe.Destroy")
	}
	g.destroyed = true
	return g.destroyErr
}
func (g *fakeGlobe) IsDestroyed() bool { return g.destroyed }

type fakePointCloud struct {
	rec *callRecorder

	pose common.CameraPose

	handle  *pointcloud.Handle
	loadErr error

	attached  []*pointcloud.Handle
	clears    int
	budget    int
	edl       bool
	fov       float64
	clear     [4]float64
	nav       pointcloud.NavigationMode
	renderErr error
	renders   int
	destroyed bool
}

func (f *fakePointCloud) ActiveCamera() common.CameraPose { return f.pose }
func (f *fakePointCloud) FitToBounds(common.Bounds)       {}
func (f *fakePointCloud) LoadDataset(ctx context.Context, url, name string) (*pointcloud.Handle, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	h := *f.handle
	h.URL = url
	h.Name = name
	return &h, nil
}
func (f *fakePointCloud) AttachDataset(h *pointcloud.Handle) { f.attached = append(f.attached, h) }
func (f *fakePointCloud) Datasets() []*pointcloud.Handle     { return f.attached }
func (f *fakePointCloud) ClearDatasets() {
	if f.rec != nil {
		f.rec.record("pc.ClearDatasets")
	}
	f.attached = nil
	f.clears++
}
func (f *fakePointCloud) SetPointBudget(n int)          { f.budget = n }
func (f *fakePointCloud) SetEyeDomeLighting(on bool)    { f.edl = on }
func (f *fakePointCloud) SetFieldOfView(fov float64)    { f.fov = fov }
func (f *fakePointCloud) SetClearColor(r, g, b, a float64) {
	f.clear = [4]float64{r, g, b, a}
}
func (f *fakePointCloud) SetNavigationMode(m pointcloud.NavigationMode) { f.nav = m }
func (f *fakePointCloud) Render() error {
	f.renders++
	return f.renderErr
}
func (f *fakePointCloud) Destroy() error {
	if f.rec != nil {
		f.rec.record("pc.Destroy")
	}
	f.destroyed = true
	return nil
}
func (f *fakePointCloud) IsDestroyed() bool { return f.destroyed }

// manualScheduler hands control of frame timing to the test.
type manualScheduler struct {
	mu      sync.Mutex
	pending func()
}

func (m *manualScheduler) NextFrame(fn func()) (cancel func()) {
	m.mu.Lock()
	m.pending = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.pending = nil
		m.mu.Unlock()
	}
}

func (m *manualScheduler) frame() {
	m.mu.Lock()
	fn := m.pending
	m.pending = nil
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// planeTransform is a local tangent-plane stand-in for a real projection.
type planeTransform struct {
	originX, originY     float64
	originLon, originLat float64
	degPerUnit           float64
}

func (p *planeTransform) Forward(x, y float64) (lon, lat float64) {
	return p.originLon + (x-p.originX)*p.degPerUnit, p.originLat + (y-p.originY)*p.degPerUnit
}

func (p *planeTransform) Inverse(lon, lat float64) (x, y float64, err error) {
	return p.originX + (lon-p.originLon)/p.degPerUnit, p.originY + (lat-p.originLat)/p.degPerUnit, nil
}

type fakeProvider struct{}

func (fakeProvider) Compile(string) (bridge.Transform, error) {
	return &planeTransform{
		originX: 500000, originY: 1700000,
		originLon: -86, originLat: 40,
		degPerUnit: 1e-6,
	}, nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.PointCloudURL = "https://tiles.example.com/job42/cloud.js"
	cfg.DatasetName = "job42"
	cfg.Anchor = config.AnchorConfig{Latitude: 40, Longitude: -86, GroundElevation: 800}
	return cfg
}

func testViewerHandle() *pointcloud.Handle {
	return &pointcloud.Handle{
		Crs: common.CrsDescriptor{ProjectionString: "+proj=tmerc +datum=NAD83 +units=us-ft"},
		Bounds: common.Bounds{
			Min: r3.Vector{X: 499000, Y: 1699000, Z: 700},
			Max: r3.Vector{X: 501000, Y: 1701000, Z: 950},
		},
	}
}

func TestBootstrapOrderAndDefaults(t *testing.T) {
	gl := &fakeGlobe{}
	pc := &fakePointCloud{handle: testViewerHandle()}

	var order []string
	v, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) {
			order = append(order, "globe")
			return gl, nil
		}),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) {
			order = append(order, "pointcloud")
			return pc, nil
		}),
	)
	require.NoError(t, err)
	defer func() { _ = v.Teardown() }()

	assert.Equal(t, []string{"globe", "pointcloud"}, order)

	// Globe comes up as a bare basemap with the placeholder pose.
	require.Len(t, gl.chrome, 1)
	assert.Equal(t, globe.Chrome{}, gl.chrome[0])
	require.Len(t, gl.effects, 1)
	assert.Equal(t, globe.SceneEffects{}, gl.effects[0])
	require.True(t, gl.hasProvider)
	assert.Equal(t, globe.ImagerySatellite, gl.provider.Kind)

	require.Len(t, gl.commands, 1)
	cmd := gl.commands[0]
	assert.Equal(t, -86.0, cmd.Destination.Longitude)
	assert.Equal(t, 40.0, cmd.Destination.Latitude)
	assert.Equal(t, config.DefaultPlaceholderAltitude, cmd.Destination.Height)
	assert.InDelta(t, 1.0, cmd.Direction.Norm(), 1e-12)
	assert.InDelta(t, 1.0, cmd.Up.Norm(), 1e-12)
	// Pitched down: the view direction dips below the local horizon.
	assert.Negative(t, cmd.Direction.Dot(cmd.Up))

	// Point cloud defaults for overlay compositing.
	assert.True(t, pc.edl)
	assert.Equal(t, config.DefaultFieldOfView, pc.fov)
	assert.Equal(t, config.DefaultPointBudget, pc.budget)
	assert.Equal(t, [4]float64{0, 0, 0, 0}, pc.clear)
	assert.Equal(t, pointcloud.NavigationGeospatial, pc.nav)
}

func TestBootstrapGlobeFailure(t *testing.T) {
	boom := errors.New("no adapter")
	_, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return nil, boom }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) {
			t.Fatal("point-cloud factory must not run when the globe fails")
			return nil, nil
		}),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestBootstrapPointCloudFailureDestroysGlobe(t *testing.T) {
	gl := &fakeGlobe{}
	boom := errors.New("device lost")
	_, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return gl, nil }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) { return nil, boom }),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, gl.destroyed, "a half-bootstrapped session must not leak the globe engine")
}

func TestReadyCallbackFiresOnce(t *testing.T) {
	gl := &fakeGlobe{}
	pc := &fakePointCloud{handle: testViewerHandle()}

	ready := 0
	v, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return gl, nil }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) { return pc, nil }),
		WithReadyCallback(func(g globe.GlobeEngineAPI, p pointcloud.PointCloudEngineAPI) {
			ready++
			assert.Same(t, gl, g)
			assert.Same(t, pc, p)
		}),
	)
	require.NoError(t, err)
	defer func() { _ = v.Teardown() }()

	assert.Equal(t, 1, ready)
	assert.Equal(t, 1, gl.renders)
	assert.Equal(t, 1, pc.renders)
}

func TestReadyCallbackRetriedAfterRenderFailure(t *testing.T) {
	gl := &fakeGlobe{renderErr: errors.New("swapchain out of date")}
	pc := &fakePointCloud{handle: testViewerHandle()}
	sch := &manualScheduler{}

	ready := 0
	v, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return gl, nil }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) { return pc, nil }),
		WithScheduler(sch),
		WithProjectionProvider(fakeProvider{}),
		WithReadyCallback(func(globe.GlobeEngineAPI, pointcloud.PointCloudEngineAPI) { ready++ }),
	)
	require.NoError(t, err, "a failed first render degrades, it does not abort the session")
	defer func() { _ = v.Teardown() }()

	assert.Zero(t, ready, "the handshake waits for a good frame")

	require.NoError(t, v.LoadPointCloud(context.Background()))
	sch.frame()
	assert.Zero(t, ready, "still no good globe frame")

	gl.renderErr = nil
	sch.frame()
	assert.Equal(t, 1, ready, "first good frame completes the handshake")

	sch.frame()
	assert.Equal(t, 1, ready, "the callback never fires twice")
}

func TestLoadPointCloudStartsSync(t *testing.T) {
	gl := &fakeGlobe{}
	pc := &fakePointCloud{
		handle: testViewerHandle(),
		pose: common.CameraPose{
			Position:           r3.Vector{X: 500000, Y: 1700000, Z: 800 + 1200/0.3048},
			Target:             r3.Vector{X: 500000, Y: 1700400, Z: 800},
			FieldOfViewDegrees: 60,
			AspectRatio:        16.0 / 9.0,
		},
	}
	sch := &manualScheduler{}

	v, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return gl, nil }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) { return pc, nil }),
		WithScheduler(sch),
		WithProjectionProvider(fakeProvider{}),
	)
	require.NoError(t, err)
	defer func() { _ = v.Teardown() }()

	require.NoError(t, v.LoadPointCloud(context.Background()))
	assert.Equal(t, syncloop.StateRunning, v.SyncState())
	require.Len(t, pc.attached, 1)

	sch.frame()

	stats := v.SyncStats()
	assert.Equal(t, uint64(1), stats.Ticks)
	assert.Equal(t, uint64(1), stats.Synced)
	// One placeholder pose at bootstrap plus one synced command.
	require.Len(t, gl.commands, 2)
	synced := gl.commands[1]
	assert.InDelta(t, -86.0, synced.Destination.Longitude, 1e-9)
	assert.InDelta(t, 40.0, synced.Destination.Latitude, 1e-9)
	assert.InDelta(t, 1200.0, synced.Destination.Height, 1e-6)
}

func TestLoadPointCloudFailureLeavesSessionUsable(t *testing.T) {
	gl := &fakeGlobe{}
	pc := &fakePointCloud{loadErr: errors.New("404 not found")}

	v, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return gl, nil }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) { return pc, nil }),
	)
	require.NoError(t, err)
	defer func() { _ = v.Teardown() }()

	err = v.LoadPointCloud(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "404 not found")

	assert.Equal(t, syncloop.StateIdle, v.SyncState())
	assert.Empty(t, pc.attached)
	assert.False(t, gl.destroyed)
}

// stalledLoader never delivers a result, standing in for a worker pool that
// dropped the task.
type stalledLoader struct{}

func (stalledLoader) Load(context.Context, pointcloud.PointCloudEngineAPI, string, string) <-chan loader.Result {
	return make(chan loader.Result)
}

func TestLoadPointCloudHonorsContextCancellation(t *testing.T) {
	gl := &fakeGlobe{}
	pc := &fakePointCloud{handle: testViewerHandle()}

	v, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return gl, nil }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) { return pc, nil }),
		WithLoader(stalledLoader{}),
	)
	require.NoError(t, err)
	defer func() { _ = v.Teardown() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = v.LoadPointCloud(ctx)
	require.Error(t, err, "a dropped load must not block the session forever")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, syncloop.StateIdle, v.SyncState())
}

func TestLoadPointCloudGlobeOnly(t *testing.T) {
	gl := &fakeGlobe{}
	pc := &fakePointCloud{}
	cfg := testConfig()
	cfg.PointCloudURL = ""

	v, err := NewViewer(cfg,
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return gl, nil }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) { return pc, nil }),
	)
	require.NoError(t, err)
	defer func() { _ = v.Teardown() }()

	require.NoError(t, v.LoadPointCloud(context.Background()))
	assert.Equal(t, syncloop.StateIdle, v.SyncState())
}

func TestSetBaseLayerLeavesCameraAlone(t *testing.T) {
	gl := &fakeGlobe{}
	pc := &fakePointCloud{handle: testViewerHandle()}

	v, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return gl, nil }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) { return pc, nil }),
	)
	require.NoError(t, err)
	defer func() { _ = v.Teardown() }()

	commandsBefore := len(gl.commands)
	budgetBefore := pc.budget

	require.NoError(t, v.SetBaseLayer(globe.ImageryStreets))
	assert.Equal(t, globe.ImageryStreets, gl.provider.Kind)
	assert.Len(t, gl.commands, commandsBefore, "imagery swap must not move the camera")
	assert.Equal(t, budgetBefore, pc.budget)

	assert.Error(t, v.SetBaseLayer(globe.ImageryKind("terrain")))
	assert.Equal(t, globe.ImageryStreets, gl.provider.Kind, "failed swap must not change the layer")
}

func TestTeardownOrderAndIdempotence(t *testing.T) {
	rec := &callRecorder{}
	gl := &fakeGlobe{rec: rec}
	pc := &fakePointCloud{rec: rec, handle: testViewerHandle()}
	sch := &manualScheduler{}

	v, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return gl, nil }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) { return pc, nil }),
		WithScheduler(sch),
		WithProjectionProvider(fakeProvider{}),
	)
	require.NoError(t, err)
	require.NoError(t, v.LoadPointCloud(context.Background()))

	require.NoError(t, v.Teardown())
	assert.Equal(t, []string{"pc.ClearDatasets", "pc.Destroy", "globe.Destroy"}, rec.snapshot())
	assert.Equal(t, syncloop.StateIdle, v.SyncState())

	// Second teardown is a no-op.
	require.NoError(t, v.Teardown())
	assert.Equal(t, 1, pc.clears)
	assert.Len(t, rec.snapshot(), 3)
}

func TestTeardownContinuesPastFailures(t *testing.T) {
	rec := &callRecorder{}
	gl := &fakeGlobe{rec: rec, destroyErr: errors.New("context already lost")}
	pc := &fakePointCloud{rec: rec, handle: testViewerHandle()}

	v, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return gl, nil }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) { return pc, nil }),
	)
	require.NoError(t, err)

	err = v.Teardown()
	require.Error(t, err)
	assert.ErrorContains(t, err, "context already lost")
	// Every step still ran.
	assert.Equal(t, []string{"pc.ClearDatasets", "pc.Destroy", "globe.Destroy"}, rec.snapshot())
}

func TestTeardownSkipsAlreadyDestroyedEngines(t *testing.T) {
	rec := &callRecorder{}
	gl := &fakeGlobe{rec: rec}
	pc := &fakePointCloud{rec: rec, handle: testViewerHandle()}

	v, err := NewViewer(testConfig(),
		WithGlobeEngine(func(_ surface.Surface) (globe.GlobeEngineAPI, error) { return gl, nil }),
		WithPointCloudEngine(func(_ surface.Surface) (pointcloud.PointCloudEngineAPI, error) { return pc, nil }),
	)
	require.NoError(t, err)

	gl.destroyed = true
	require.NoError(t, v.Teardown())
	assert.NotContains(t, rec.snapshot(), "globe.Destroy")
}
