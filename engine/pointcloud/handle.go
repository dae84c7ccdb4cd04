package pointcloud

import "github.com/surveyviz/pointglobe/common"

// Handle is a loaded dataset's scene node plus its appearance state. Handles
// are exclusively owned by the engine that loaded them; their lifetime is
// contained within the owning session's lifetime and they are released
// deterministically at teardown.
type Handle struct {
	// Name is the dataset's display name.
	Name string

	// URL is the manifest location the dataset was loaded from.
	URL string

	// Crs describes the projected CRS the dataset is stored in. May be empty,
	// in which case camera synchronization is disabled for the session.
	Crs common.CrsDescriptor

	// Bounds is the dataset's bounding box in projected coordinates.
	Bounds common.Bounds

	// Appearance is the dataset's render appearance. Mutated by external
	// appearance controls; the viewer only sets the defaults.
	Appearance Appearance
}
