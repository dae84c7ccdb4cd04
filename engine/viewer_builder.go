package engine

import (
	"github.com/surveyviz/pointglobe/engine/bridge"
	"github.com/surveyviz/pointglobe/engine/globe"
	"github.com/surveyviz/pointglobe/engine/loader"
	"github.com/surveyviz/pointglobe/engine/pointcloud"
	"github.com/surveyviz/pointglobe/engine/syncloop"
)

// viewerBuilder collects construction-time settings before the session is
// bootstrapped.
type viewerBuilder struct {
	globeFactory GlobeFactory
	pcFactory    PointCloudFactory

	surfaceWidth  int
	surfaceHeight int

	sch syncloop.FrameScheduler
	ldr loader.Loader

	projProvider   bridge.ProjectionProvider
	projOverridden bool

	profilingEnabled bool
	readyCallback    func(gl globe.GlobeEngineAPI, pc pointcloud.PointCloudEngineAPI)
}

// ViewerBuilderOption is a functional option for configuring a Viewer.
// Use the With* functions to create options.
type ViewerBuilderOption func(b *viewerBuilder)

// WithGlobeEngine sets the factory that creates the globe engine. Required.
//
// Parameters:
//   - factory: creates the globe engine for the session's back surface
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithGlobeEngine(factory GlobeFactory) ViewerBuilderOption {
	return func(b *viewerBuilder) {
		b.globeFactory = factory
	}
}

// WithPointCloudEngine sets the factory that creates the point-cloud engine.
// Required.
//
// Parameters:
//   - factory: creates the point-cloud engine for the session's front surface
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithPointCloudEngine(factory PointCloudFactory) ViewerBuilderOption {
	return func(b *viewerBuilder) {
		b.pcFactory = factory
	}
}

// WithOverlaySurfaces makes the viewer create an on-screen overlay surface
// pair of the given size. Without this option the viewer runs headless and
// both factories receive a nil surface.
//
// Parameters:
//   - width, height: initial surface size in pixels
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithOverlaySurfaces(width, height int) ViewerBuilderOption {
	return func(b *viewerBuilder) {
		b.surfaceWidth = width
		b.surfaceHeight = height
	}
}

// WithScheduler replaces the viewer's own frame scheduler. The caller becomes
// responsible for driving it.
//
// Parameters:
//   - sch: the scheduler sync-loop ticks run on
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithScheduler(sch syncloop.FrameScheduler) ViewerBuilderOption {
	return func(b *viewerBuilder) {
		b.sch = sch
	}
}

// WithLoader replaces the default dataset loader.
//
// Parameters:
//   - l: the loader to use
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithLoader(l loader.Loader) ViewerBuilderOption {
	return func(b *viewerBuilder) {
		b.ldr = l
	}
}

// WithProjectionProvider overrides the projection provider used to build the
// coordinate bridge. Passing nil disables camera synchronization entirely.
//
// Parameters:
//   - p: the projection provider, or nil
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithProjectionProvider(p bridge.ProjectionProvider) ViewerBuilderOption {
	return func(b *viewerBuilder) {
		b.projProvider = p
		b.projOverridden = true
	}
}

// WithProfiling enables per-second performance and sync-counter logging.
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithProfiling() ViewerBuilderOption {
	return func(b *viewerBuilder) {
		b.profilingEnabled = true
	}
}

// WithReadyCallback registers a function invoked once, after the first
// successful render of both engines, with handles to both so external tool
// panels can attach.
//
// Parameters:
//   - callback: the function to invoke
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithReadyCallback(callback func(gl globe.GlobeEngineAPI, pc pointcloud.PointCloudEngineAPI)) ViewerBuilderOption {
	return func(b *viewerBuilder) {
		b.readyCallback = callback
	}
}
