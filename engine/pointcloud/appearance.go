package pointcloud

// PointShape selects how individual points are rasterized.
type PointShape int

const (
	// ShapeCircle renders points as circular splats.
	ShapeCircle PointShape = iota

	// ShapeSquare renders points as screen-aligned squares.
	ShapeSquare
)

// DisplayMode selects the attribute points are colored by.
type DisplayMode int

const (
	// DisplayRGB colors points by their stored color.
	DisplayRGB DisplayMode = iota

	// DisplayElevation colors points by height.
	DisplayElevation

	// DisplayIntensity colors points by return intensity.
	DisplayIntensity
)

// Appearance is the mutable render appearance of a dataset.
type Appearance struct {
	// PointSize is the splat size in pixels.
	PointSize float64

	// Shape is the point rasterization shape.
	Shape PointShape

	// Mode is the coloring mode.
	Mode DisplayMode

	// Opacity is the dataset opacity in [0, 1].
	Opacity float64
}

// DefaultAppearance returns the appearance applied to every freshly loaded
// dataset: unit point size, circular splats, RGB coloring, full opacity.
//
// Returns:
//   - Appearance: the default appearance
func DefaultAppearance() Appearance {
	return Appearance{
		PointSize: 1.0,
		Shape:     ShapeCircle,
		Mode:      DisplayRGB,
		Opacity:   1.0,
	}
}
