// package baselayer swaps the globe's background imagery without touching any
// camera or point-cloud state.
package baselayer

import (
	"fmt"

	"github.com/surveyviz/pointglobe/engine/globe"
)

// catalog maps each layer kind to its imagery provider definition, including
// the attribution string each source's license requires.
var catalog = map[globe.ImageryKind]globe.ImageryProvider{
	globe.ImagerySatellite: {
		Kind:        globe.ImagerySatellite,
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Esri, Maxar, Earthstar Geographics, and the GIS User Community",
	},
	globe.ImageryStreets: {
		Kind:        globe.ImageryStreets,
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
	},
}

// Set replaces the globe's imagery layer stack with exactly one provider
// matching kind. It affects only the background imagery: camera pose, point
// budget, and all point-cloud state are untouched. Calling it again with the
// same kind is visually a no-op, though the provider object is re-created.
//
// Parameters:
//   - eng: the globe engine to update
//   - kind: the imagery style to install
//
// Returns:
//   - error: error if the kind is unknown
func Set(eng globe.GlobeEngineAPI, kind globe.ImageryKind) error {
	provider, ok := catalog[kind]
	if !ok {
		return fmt.Errorf("unknown base layer kind %q", kind)
	}
	eng.SetImageryProvider(provider)
	return nil
}

// Provider returns the catalog entry for a layer kind.
//
// Parameters:
//   - kind: the imagery style to look up
//
// Returns:
//   - globe.ImageryProvider: the provider definition
//   - bool: false if the kind is unknown
func Provider(kind globe.ImageryKind) (globe.ImageryProvider, bool) {
	p, ok := catalog[kind]
	return p, ok
}
