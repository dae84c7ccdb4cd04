package pointcloud

import (
	"context"

	"github.com/surveyviz/pointglobe/common"
)

// NavigationMode selects the input control scheme of the point-cloud engine.
type NavigationMode int

const (
	// NavigationGeospatial pans over the dataset with a fixed up axis, the
	// appropriate scheme for surveyed geospatial data.
	NavigationGeospatial NavigationMode = iota

	// NavigationOrbit is a free orbit around a pivot point.
	NavigationOrbit
)

// PointCloudEngineAPI is the capability surface this module requires from a
// point-cloud rendering engine. The engine exclusively owns the loaded
// dataset handles; the viewer mutates them only through this interface.
type PointCloudEngineAPI interface {
	// ActiveCamera returns the current camera pose, including the view
	// pivot/target. Read once per frame by the sync loop.
	//
	// Returns:
	//   - common.CameraPose: the active camera's pose
	ActiveCamera() common.CameraPose

	// FitToBounds frames the camera so the given bounds fill the view.
	//
	// Parameters:
	//   - b: dataset bounds in projected coordinates
	FitToBounds(b common.Bounds)

	// LoadDataset fetches and parses a dataset manifest. Blocking; callers run
	// it off the frame loop. The returned handle is not yet attached to the
	// scene.
	//
	// Parameters:
	//   - ctx: cancels the load when the session is torn down mid-flight
	//   - url: manifest location
	//   - name: display name for the dataset
	//
	// Returns:
	//   - *Handle: the loaded dataset
	//   - error: error if the fetch or parse fails
	LoadDataset(ctx context.Context, url, name string) (*Handle, error)

	// AttachDataset adds a loaded dataset to the engine's scene.
	//
	// Parameters:
	//   - h: the dataset handle to attach
	AttachDataset(h *Handle)

	// Datasets returns the attached dataset handles.
	//
	// Returns:
	//   - []*Handle: the scene's dataset list
	Datasets() []*Handle

	// ClearDatasets detaches every dataset from the scene. Used by teardown,
	// which must not assume a per-dataset remove primitive exists.
	ClearDatasets()

	// SetPointBudget bounds the number of points rendered per frame.
	//
	// Parameters:
	//   - budget: maximum rendered points per frame
	SetPointBudget(budget int)

	// SetEyeDomeLighting toggles eye-dome-lighting depth shading.
	//
	// Parameters:
	//   - enabled: whether EDL is active
	SetEyeDomeLighting(enabled bool)

	// SetFieldOfView sets the camera's vertical field of view.
	//
	// Parameters:
	//   - degrees: vertical field of view in degrees
	SetFieldOfView(degrees float64)

	// SetClearColor sets the clear color and alpha of the render surface. An
	// alpha of zero makes the globe visible behind the point cloud.
	//
	// Parameters:
	//   - r, g, b, a: color components in [0, 1]
	SetClearColor(r, g, b, a float64)

	// SetNavigationMode selects the input control scheme.
	//
	// Parameters:
	//   - mode: the navigation mode to use
	SetNavigationMode(mode NavigationMode)

	// Render updates the simulation clock and draws one point-cloud frame.
	// Runs first within a tick; this engine owns the frame's time delta.
	//
	// Returns:
	//   - error: error if the frame could not be rendered
	Render() error

	// Destroy releases the engine's resources.
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
