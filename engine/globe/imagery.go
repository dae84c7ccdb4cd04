package globe

// ImageryKind identifies a background imagery style.
type ImageryKind string

const (
	// ImagerySatellite selects aerial/satellite imagery.
	ImagerySatellite ImageryKind = "satellite"

	// ImageryStreets selects street-map imagery.
	ImageryStreets ImageryKind = "streets"
)

// ImageryProvider describes one background imagery layer: its kind, tile
// source, and the attribution string the provider's license requires.
type ImageryProvider struct {
	Kind        ImageryKind
	URL         string
	Attribution string
}

// Valid reports whether the kind names a known imagery style.
//
// Returns:
//   - bool: true for satellite or streets
func (k ImageryKind) Valid() bool {
	return k == ImagerySatellite || k == ImageryStreets
}
