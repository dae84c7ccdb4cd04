package bridge

import (
	"log"

	"github.com/surveyviz/pointglobe/common"
)

// bridgeImpl is the implementation of the Bridge interface.
type bridgeImpl struct {
	transform             Transform
	groundElevationOffset float64
}

// Bridge carries the forward transform from a dataset's projected CRS to
// geodetic longitude/latitude, plus the dataset's ground-elevation offset.
// A session holds at most one Bridge; a new dataset load replaces it entirely.
type Bridge interface {
	// Forward transforms projected x/y to geodetic lon/lat in degrees. It
	// never fails: out-of-domain inputs may yield non-finite or out-of-range
	// values, which the caller must validate before use.
	//
	// Parameters:
	//   - x, y: projected coordinates
	//
	// Returns:
	//   - lon, lat: geodetic coordinates in degrees, possibly non-finite
	Forward(x, y float64) (lon, lat float64)

	// GroundElevationOffset returns the dataset's ground datum elevation in
	// the point cloud's length unit. Subtracted from the camera's vertical
	// coordinate so height is expressed relative to the ellipsoid rather than
	// the dataset's own ground reference.
	//
	// Returns:
	//   - float64: the ground elevation offset
	GroundElevationOffset() float64
}

var _ Bridge = &bridgeImpl{}

// Build constructs a Bridge from a CRS descriptor and an anchor location. A
// missing descriptor or an unavailable/failed projection compile is not an
// error: it returns false and the session runs with synchronization disabled.
//
// Parameters:
//   - descriptor: the dataset's projected CRS definition
//   - anchor: the session anchor; its ground elevation becomes the offset
//   - options: functional options (projection provider override)
//
// Returns:
//   - Bridge: the constructed bridge, or nil
//   - bool: false if synchronization must stay disabled for this session
func Build(descriptor common.CrsDescriptor, anchor common.AnchorLocation, options ...BuildOption) (Bridge, bool) {
	cfg := &buildConfig{provider: defaultProvider()}
	for _, opt := range options {
		opt(cfg)
	}

	if descriptor.Empty() {
		log.Printf("[Bridge] no CRS descriptor; camera synchronization disabled")
		return nil, false
	}
	if cfg.provider == nil {
		log.Printf("[Bridge] no projection provider available; camera synchronization disabled")
		return nil, false
	}

	transform, err := cfg.provider.Compile(descriptor.ProjectionString)
	if err != nil {
		log.Printf("[Bridge] projection compile failed; camera synchronization disabled: %v", err)
		return nil, false
	}

	return &bridgeImpl{
		transform:             transform,
		groundElevationOffset: anchor.GroundElevation,
	}, true
}

func (b *bridgeImpl) Forward(x, y float64) (lon, lat float64) {
	return b.transform.Forward(x, y)
}

func (b *bridgeImpl) GroundElevationOffset() float64 {
	return b.groundElevationOffset
}
