package geo

// Viewport is the map rectangle and center derived from a layer extent.
type Viewport struct {
	Center    Coordinate `json:"center"`
	SouthWest Coordinate `json:"southWest"`
	NorthEast Coordinate `json:"northEast"`
}

// ComputeViewport derives a viewport from a [minX, minY, maxX, maxY] extent.
// Returns nil if any of the four values is non-finite; the caller keeps its
// previous or default viewport in that case.
func ComputeViewport(ext Extent) *Viewport {
	if !ext.Valid() {
		return nil
	}
	return &Viewport{
		Center:    Coordinate{Lat: (ext[1] + ext[3]) / 2, Lon: (ext[0] + ext[2]) / 2},
		SouthWest: Coordinate{Lat: ext[1], Lon: ext[0]},
		NorthEast: Coordinate{Lat: ext[3], Lon: ext[2]},
	}
}
