package geo

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoordinateValid(t *testing.T) {
	valid := []Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 4.65, Lon: -74.05},
		{Lat: -90, Lon: 180},
		{Lat: 90, Lon: -180},
	}
	for _, c := range valid {
		require.True(t, c.Valid(), "expected %+v to be valid", c)
	}

	invalid := []Coordinate{
		{Lat: 91, Lon: 0},
		{Lat: -90.01, Lon: 0},
		{Lat: 0, Lon: 180.5},
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.Inf(1)},
	}
	for _, c := range invalid {
		require.False(t, c.Valid(), "expected %+v to be invalid", c)
	}
}

func TestExtentFromPolygon(t *testing.T) {
	fc := NewFeatureCollection()
	fc.Features = append(fc.Features, Feature{
		Type: "Feature",
		Geometry: &Geometry{
			Type: "Polygon",
			Coordinates: [][][]float64{{
				{-74.2, 4.4}, {-73.9, 4.4}, {-73.9, 4.9}, {-74.2, 4.9}, {-74.2, 4.4},
			}},
		},
	})

	ext := fc.Extent()
	require.True(t, ext.Valid())
	require.Equal(t, Extent{-74.2, 4.4, -73.9, 4.9}, ext)
}

func TestExtentOfEmptyCollectionIsInvalid(t *testing.T) {
	ext := NewFeatureCollection().Extent()
	require.False(t, ext.Valid())
}

func TestExtentWithNaNIsInvalid(t *testing.T) {
	fc := NewFeatureCollection()
	fc.Features = append(fc.Features, Feature{
		Type: "Feature",
		Geometry: &Geometry{
			Type:        "Point",
			Coordinates: []float64{math.NaN(), 1.0},
		},
	})
	require.False(t, fc.Extent().Valid())
}

func TestExtentAfterJSONRoundTrip(t *testing.T) {
	fc := NewFeatureCollection()
	fc.Features = append(fc.Features, Feature{
		Type: "Feature",
		Geometry: &Geometry{
			Type:        "LineString",
			Coordinates: [][]float64{{-74.1, 4.5}, {-74.0, 4.7}},
		},
		Properties: map[string]any{"name": "q1"},
	})

	raw, err := json.Marshal(fc)
	require.NoError(t, err)

	// Unmarshalled coordinates arrive as []any; the extent walker must
	// handle both shapes.
	var decoded FeatureCollection
	require.NoError(t, json.Unmarshal(raw, &decoded))

	ext := decoded.Extent()
	require.True(t, ext.Valid())
	require.Equal(t, Extent{-74.1, 4.5, -74.0, 4.7}, ext)
}
