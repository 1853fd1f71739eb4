// Package scene assembles the renderable map scene from the session state:
// one base tile layer, zero-or-one of each result overlay with its fixed
// styling, and an optional viewport fit.
package scene

import (
	"github.com/mbetancur/basinview/internal/geo"
	"github.com/mbetancur/basinview/internal/session"
)

// Default view over the Bogotá savanna, matching the delineator's coverage.
var (
	DefaultCenter = geo.Coordinate{Lat: 4.6, Lon: -74.1}
	DefaultZoom   = 9
)

// TileLayer describes the base map tiles.
type TileLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"maxZoom"`
}

// Style carries the Leaflet-compatible styling of one overlay.
type Style struct {
	Color       string  `json:"color,omitempty"`
	Weight      int     `json:"weight,omitempty"`
	FillColor   string  `json:"fillColor,omitempty"`
	FillOpacity float64 `json:"fillOpacity,omitempty"`
	Radius      int     `json:"radius,omitempty"`
}

// Overlay is one named, styled geometry layer of the scene.
type Overlay struct {
	Name    string                 `json:"name"`
	Kind    string                 `json:"kind"` // fill | line | marker
	Tooltip string                 `json:"tooltip"`
	Style   Style                  `json:"style"`
	Data    *geo.FeatureCollection `json:"data"`
}

// Scene is the full renderable map state sent to the frontend.
type Scene struct {
	Base        TileLayer            `json:"base"`
	Center      geo.Coordinate       `json:"center"`
	Zoom        int                  `json:"zoom"`
	Overlays    []Overlay            `json:"overlays"`
	FitBounds   *geo.Viewport        `json:"fitBounds,omitempty"`
	Status      session.Status       `json:"status"`
	LastClick   *geo.Coordinate      `json:"lastClick,omitempty"`
	LayerErrors []session.LayerError `json:"layerErrors"`
}

var baseLayer = TileLayer{
	Name:        "OpenStreetMap",
	URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
	Attribution: "&copy; OpenStreetMap contributors",
	MaxZoom:     19,
}

// Compose builds the scene for the given session state. Deterministic: the
// same state always yields the same scene. When the run carries no viewport
// the scene omits FitBounds and the map keeps its prior view.
func Compose(st session.State, status session.Status) Scene {
	sc := Scene{
		Base:        baseLayer,
		Center:      DefaultCenter,
		Zoom:        DefaultZoom,
		Overlays:    []Overlay{},
		Status:      status,
		LastClick:   st.LastClick,
		LayerErrors: []session.LayerError{},
	}

	run := st.Run
	if run == nil {
		return sc
	}

	sc.LayerErrors = append(sc.LayerErrors, run.LayerErrors...)
	if run.Viewport != nil {
		sc.Center = run.Viewport.Center
		sc.FitBounds = run.Viewport
	}

	if run.Primary != nil {
		sc.Overlays = append(sc.Overlays, Overlay{
			Name:    "Watershed",
			Kind:    "fill",
			Tooltip: "Watershed",
			Style:   Style{Color: "red", Weight: 3, FillColor: "#fdd", FillOpacity: 0.4},
			Data:    run.Primary,
		})
	}
	if fc := run.Overlay(session.OverlayStreams); fc != nil {
		sc.Overlays = append(sc.Overlays, Overlay{
			Name:    "Rivers",
			Kind:    "line",
			Tooltip: "Rivers",
			Style:   Style{Color: "blue", Weight: 2},
			Data:    fc,
		})
	}
	if fc := run.Overlay(session.OverlayRequestedPoint); fc != nil {
		sc.Overlays = append(sc.Overlays, Overlay{
			Name:    "Requested",
			Kind:    "marker",
			Tooltip: "Requested outlet",
			Style:   Style{Color: "cyan", Radius: 6},
			Data:    fc,
		})
	}
	// The snapped marker uses a distinct color so the user can see how far the
	// outlet was moved onto the stream network.
	if fc := run.Overlay(session.OverlaySnapPoint); fc != nil {
		sc.Overlays = append(sc.Overlays, Overlay{
			Name:    "Snapped to river centerline",
			Kind:    "marker",
			Tooltip: "Snapped outlet",
			Style:   Style{Color: "magenta", Radius: 6},
			Data:    fc,
		})
	}

	return sc
}
