package bridge

import (
	"fmt"
	"math"

	"github.com/twpayne/go-proj/v10"
)

// Transform maps between a projected CRS and geodetic WGS84 lon/lat.
type Transform interface {
	// Forward maps projected x/y to lon/lat degrees. Never fails; may return
	// non-finite values for inputs outside the CRS domain.
	//
	// Parameters:
	//   - x, y: projected coordinates
	//
	// Returns:
	//   - lon, lat: geodetic coordinates in degrees
	Forward(x, y float64) (lon, lat float64)

	// Inverse maps lon/lat degrees back to projected x/y.
	//
	// Parameters:
	//   - lon, lat: geodetic coordinates in degrees
	//
	// Returns:
	//   - x, y: projected coordinates
	//   - error: error if the inverse projection fails
	Inverse(lon, lat float64) (x, y float64, err error)
}

// ProjectionProvider compiles an opaque projection-definition string into a
// Transform. The string's syntax belongs to the underlying library.
type ProjectionProvider interface {
	// Compile builds the forward/inverse transform for the given projection
	// definition.
	//
	// Parameters:
	//   - projString: projection definition (datum, units, parameters)
	//
	// Returns:
	//   - Transform: the compiled transform
	//   - error: error if the definition is malformed or the library is unavailable
	Compile(projString string) (Transform, error)
}

// geodeticTarget is the transform target: WGS84 lon/lat in degrees, axis
// order fixed by the proj string so no visualization normalization is needed.
const geodeticTarget = "+proj=longlat +datum=WGS84 +no_defs"

// projProvider compiles projection strings through the PROJ library.
type projProvider struct{}

var _ ProjectionProvider = projProvider{}

// defaultProvider returns the PROJ-backed provider.
func defaultProvider() ProjectionProvider {
	return projProvider{}
}

func (projProvider) Compile(projString string) (Transform, error) {
	pj, err := proj.NewCRSToCRS(projString, geodeticTarget, nil)
	if err != nil {
		return nil, fmt.Errorf("compiling projection %q: %w", projString, err)
	}
	return &projTransform{pj: pj}, nil
}

// projTransform adapts a PROJ transformation to the Transform interface.
type projTransform struct {
	pj *proj.PJ
}

var _ Transform = &projTransform{}

func (t *projTransform) Forward(x, y float64) (lon, lat float64) {
	coord, err := t.pj.Forward(proj.NewCoord(x, y, 0, 0))
	if err != nil {
		// Out-of-domain inputs surface as non-finite output; the sync loop's
		// validity guard drops them.
		return math.NaN(), math.NaN()
	}
	return coord.X(), coord.Y()
}

func (t *projTransform) Inverse(lon, lat float64) (x, y float64, err error) {
	coord, err := t.pj.Inverse(proj.NewCoord(lon, lat, 0, 0))
	if err != nil {
		return 0, 0, fmt.Errorf("inverse projection: %w", err)
	}
	return coord.X(), coord.Y(), nil
}
