package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is finite and inside the WGS84 domain.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Geometry is a GeoJSON geometry. Coordinates hold nested float64 slices
// whose depth depends on Type.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns an empty collection with the type field set.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// MarshalJSONString serializes the collection as a GeoJSON string.
func (fc *FeatureCollection) MarshalJSONString() (string, error) {
	data, err := json.Marshal(fc)
	if err != nil {
		return "", fmt.Errorf("marshal feature collection: %w", err)
	}
	return string(data), nil
}

// Extent is a bounding box in [minX, minY, maxX, maxY] order.
type Extent [4]float64

// EmptyExtent returns an extent that no position has expanded yet.
// It is invalid until the first Expand call.
func EmptyExtent() Extent {
	return Extent{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

// Expand grows the extent to include the position (x, y).
func (e *Extent) Expand(x, y float64) {
	if x < e[0] {
		e[0] = x
	}
	if y < e[1] {
		e[1] = y
	}
	if x > e[2] {
		e[2] = x
	}
	if y > e[3] {
		e[3] = y
	}
}

// Valid reports whether all four values are finite. An extent computed from
// zero positions, or from positions carrying NaN, is invalid.
func (e Extent) Valid() bool {
	for _, v := range e {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Extent computes the combined extent of every geometry in the collection.
func (fc *FeatureCollection) Extent() Extent {
	ext := EmptyExtent()
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		walkPositions(f.Geometry.Coordinates, func(x, y float64) {
			ext.Expand(x, y)
		})
	}
	return ext
}

// walkPositions visits every (x, y) position in a GeoJSON coordinates value.
// It accepts both the concrete nested slices produced by the WKB decoder and
// the []any shape produced by encoding/json.
func walkPositions(coords any, fn func(x, y float64)) {
	switch v := coords.(type) {
	case []float64:
		if len(v) >= 2 {
			fn(v[0], v[1])
		}
	case [][]float64:
		for _, p := range v {
			walkPositions(p, fn)
		}
	case [][][]float64:
		for _, p := range v {
			walkPositions(p, fn)
		}
	case [][][][]float64:
		for _, p := range v {
			walkPositions(p, fn)
		}
	case []any:
		if len(v) == 0 {
			return
		}
		if x, ok := v[0].(float64); ok {
			if len(v) >= 2 {
				if y, ok := v[1].(float64); ok {
					fn(x, y)
				}
			}
			return
		}
		for _, p := range v {
			walkPositions(p, fn)
		}
	}
}
