package globe

import (
	"github.com/golang/geo/r3"

	"github.com/surveyviz/pointglobe/common"
)

// CameraCommand is a single "set camera view" instruction issued to the globe
// engine. Commands are ephemeral: one is built and consumed per synchronized
// frame, and none is ever constructed from non-finite or out-of-domain
// geodetic values.
type CameraCommand struct {
	// Destination is the camera position in geodetic coordinates.
	Destination common.GeodeticPoint3

	// Direction is the normalized view direction in earth-fixed coordinates.
	Direction r3.Vector

	// Up is the up vector, the geodetic surface normal at the destination.
	// A fixed world-up is wrong on a curved globe.
	Up r3.Vector

	// FrustumFov is the frustum field of view in radians. Globe engines apply
	// it to the horizontal axis when the surface is wider than tall and to the
	// vertical axis otherwise, which is why landscape aspect ratios hand over
	// a derived horizontal angle.
	FrustumFov float64
}

// SceneEffects controls the globe's atmospheric rendering. Everything is
// disabled for overlay compositing so the point-cloud surface blends over a
// clean background.
type SceneEffects struct {
	Atmosphere bool
	Fog        bool
	Sun        bool
	Moon       bool
}

// Chrome controls the globe engine's built-in UI widgets. The overlay viewer
// disables all of them; an external collaborator owns layout and navigation.
type Chrome struct {
	Timeline          bool
	AnimationControls bool
	AttributionWidget bool
}

// GlobeEngineAPI is the capability surface this module requires from a globe
// rendering engine. Any geodetic renderer can be substituted behind it; the
// viewer never reaches past this interface.
type GlobeEngineAPI interface {
	// SetImageryProvider replaces the background imagery layer stack with the
	// single given provider. Must not alter camera state.
	//
	// Parameters:
	//   - provider: the imagery provider to install
	SetImageryProvider(provider ImageryProvider)

	// ImageryProvider returns the currently installed imagery provider.
	//
	// Returns:
	//   - ImageryProvider: the active provider
	//   - bool: false if no provider is installed
	ImageryProvider() (ImageryProvider, bool)

	// SetCameraView positions the globe camera according to the command.
	//
	// Parameters:
	//   - cmd: destination, direction, up vector, and frustum field of view
	SetCameraView(cmd CameraCommand)

	// SetSceneEffects toggles atmospheric effects.
	//
	// Parameters:
	//   - fx: the effect flags to apply
	SetSceneEffects(fx SceneEffects)

	// SetChrome toggles the engine's built-in UI widgets.
	//
	// Parameters:
	//   - c: the widget flags to apply
	SetChrome(c Chrome)

	// Render draws one globe frame.
	//
	// Returns:
	//   - error: error if the frame could not be rendered
	Render() error

	// Destroy releases the engine's resources. Implementations may return an
	// error when called on an already-destroyed engine; callers treat that as
	// non-fatal during teardown.
	//
	// Returns:
	//   - error: error if destruction fails
	Destroy() error

	// IsDestroyed reports whether Destroy has completed.
	//
	// Returns:
	//   - bool: true once the engine is destroyed
	IsDestroyed() bool
}
