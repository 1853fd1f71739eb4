package scene

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mbetancur/basinview/internal/geo"
	"github.com/mbetancur/basinview/internal/session"
)

func pointFC(x, y float64) *geo.FeatureCollection {
	fc := geo.NewFeatureCollection()
	fc.Features = append(fc.Features, geo.Feature{
		Type:     "Feature",
		Geometry: &geo.Geometry{Type: "Point", Coordinates: []float64{x, y}},
	})
	return fc
}

func overlayNames(sc Scene) []string {
	names := make([]string, 0, len(sc.Overlays))
	for _, ol := range sc.Overlays {
		names = append(names, ol.Name)
	}
	return names
}

func TestComposeEmptySession(t *testing.T) {
	sc := Compose(session.State{}, session.StatusIdle)

	require.Equal(t, DefaultCenter, sc.Center)
	require.Equal(t, DefaultZoom, sc.Zoom)
	require.Equal(t, "OpenStreetMap", sc.Base.Name)
	require.Empty(t, sc.Overlays)
	require.Nil(t, sc.FitBounds)
	require.Equal(t, session.StatusIdle, sc.Status)

	// Empty slices stay [] on the wire, never null.
	raw, err := json.Marshal(sc)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"overlays":[]`)
	require.Contains(t, string(raw), `"layerErrors":[]`)
}

func TestComposeFullResult(t *testing.T) {
	vp := &geo.Viewport{
		Center:    geo.Coordinate{Lat: 4.65, Lon: -74.05},
		SouthWest: geo.Coordinate{Lat: 4.4, Lon: -74.2},
		NorthEast: geo.Coordinate{Lat: 4.9, Lon: -73.9},
	}
	st := session.State{
		LastClick: &geo.Coordinate{Lat: 4.6, Lon: -74.1},
		Run: &session.RunResult{
			ID:      "run-1",
			Primary: pointFC(-74.0, 4.6),
			Overlays: map[session.OverlayKind]*geo.FeatureCollection{
				session.OverlayStreams:        pointFC(-74.0, 4.6),
				session.OverlaySnapPoint:      pointFC(-74.04, 4.66),
				session.OverlayRequestedPoint: pointFC(-74.05, 4.65),
			},
			Viewport: vp,
		},
	}

	sc := Compose(st, session.StatusReady)
	require.Equal(t, []string{"Watershed", "Rivers", "Requested", "Snapped to river centerline"}, overlayNames(sc))
	require.Equal(t, vp, sc.FitBounds)
	require.Equal(t, vp.Center, sc.Center)
	require.Equal(t, st.LastClick, sc.LastClick)

	watershed := sc.Overlays[0]
	require.Equal(t, "fill", watershed.Kind)
	require.Equal(t, Style{Color: "red", Weight: 3, FillColor: "#fdd", FillOpacity: 0.4}, watershed.Style)

	snapped := sc.Overlays[3]
	require.Equal(t, "marker", snapped.Kind)
	require.Equal(t, Style{Color: "magenta", Radius: 6}, snapped.Style)
}

func TestComposeMissingOverlaysOmitted(t *testing.T) {
	st := session.State{
		Run: &session.RunResult{
			ID:      "run-1",
			Primary: pointFC(-74.0, 4.6),
			Overlays: map[session.OverlayKind]*geo.FeatureCollection{
				session.OverlayStreams: pointFC(-74.0, 4.6),
			},
			LayerErrors: []session.LayerError{
				{Layer: string(session.OverlaySnapPoint), Message: "snap point layer not found"},
				{Layer: string(session.OverlayRequestedPoint), Message: "requested point layer not found"},
			},
		},
	}

	sc := Compose(st, session.StatusReady)
	require.Equal(t, []string{"Watershed", "Rivers"}, overlayNames(sc))
	require.Len(t, sc.LayerErrors, 2)
}

func TestComposeNoViewportKeepsDefaultView(t *testing.T) {
	st := session.State{
		Run: &session.RunResult{
			ID:          "run-1",
			Primary:     pointFC(-74.0, 4.6),
			LayerErrors: []session.LayerError{{Layer: "primary", Message: "watershed layer has invalid bounds"}},
		},
	}

	sc := Compose(st, session.StatusReady)
	require.Nil(t, sc.FitBounds)
	require.Equal(t, DefaultCenter, sc.Center)
	require.Len(t, sc.Overlays, 1)
}

func TestComposeDeterministic(t *testing.T) {
	st := session.State{
		LastClick: &geo.Coordinate{Lat: 4.6, Lon: -74.1},
		Run: &session.RunResult{
			ID:      "run-1",
			Primary: pointFC(-74.0, 4.6),
			Overlays: map[session.OverlayKind]*geo.FeatureCollection{
				session.OverlaySnapPoint:      pointFC(-74.04, 4.66),
				session.OverlayStreams:        pointFC(-74.0, 4.6),
				session.OverlayRequestedPoint: pointFC(-74.05, 4.65),
			},
		},
	}

	first, err := json.Marshal(Compose(st, session.StatusReady))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(Compose(st, session.StatusReady))
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}
