// Package gpkg reads feature layers from GeoPackage files. A GeoPackage is a
// SQLite database whose feature tables are registered in gpkg_contents and
// whose geometries are stored as a binary header followed by standard WKB.
package gpkg

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/mbetancur/basinview/internal/geo"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoSuchLayer is returned when the requested layer is not registered in
// the container.
var ErrNoSuchLayer = errors.New("gpkg: no such layer")

// Reader provides layer access to a single GeoPackage file.
type Reader struct {
	path string
	db   *sql.DB
}

// Open opens a GeoPackage read-only.
func Open(path string) (*Reader, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("open geopackage %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open geopackage %s: %w", path, err)
	}
	return &Reader{path: path, db: db}, nil
}

// Close closes the underlying database handle.
func (r *Reader) Close() error {
	return r.db.Close()
}

// ListLayers returns the names of all feature layers in registration order.
func (r *Reader) ListLayers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT table_name FROM gpkg_contents WHERE data_type = 'features' ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list layers in %s: %w", r.path, err)
	}
	defer rows.Close()

	var layers []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		layers = append(layers, name)
	}
	return layers, rows.Err()
}

// ReadLayer reads one named layer as a GeoJSON feature collection. An empty
// name selects the first registered feature layer (the container's primary
// layer).
func (r *Reader) ReadLayer(ctx context.Context, name string) (*geo.FeatureCollection, error) {
	if name == "" {
		layers, err := r.ListLayers(ctx)
		if err != nil {
			return nil, err
		}
		if len(layers) == 0 {
			return nil, fmt.Errorf("%w: container %s has no feature layers", ErrNoSuchLayer, r.path)
		}
		name = layers[0]
	}

	geomCol, err := r.geometryColumn(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %q`, name))
	if err != nil {
		return nil, fmt.Errorf("read layer %q: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fc := geo.NewFeatureCollection()
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read layer %q: %w", name, err)
		}

		feature := geo.Feature{Type: "Feature", Properties: map[string]any{}}
		for i, col := range cols {
			if col == geomCol {
				blob, _ := values[i].([]byte)
				g, err := decodeGeometryBlob(blob)
				if err != nil {
					return nil, fmt.Errorf("layer %q: %w", name, err)
				}
				feature.Geometry = g
				continue
			}
			feature.Properties[col] = propertyValue(values[i])
		}
		fc.Features = append(fc.Features, feature)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read layer %q: %w", name, err)
	}
	return fc, nil
}

// geometryColumn resolves the geometry column for a registered layer.
func (r *Reader) geometryColumn(ctx context.Context, layer string) (string, error) {
	var col string
	err := r.db.QueryRowContext(ctx,
		`SELECT column_name FROM gpkg_geometry_columns WHERE table_name = ?`, layer).Scan(&col)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %q", ErrNoSuchLayer, layer)
	}
	if err != nil {
		return "", fmt.Errorf("resolve geometry column for %q: %w", layer, err)
	}
	return col, nil
}

func propertyValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// GeoPackage binary header flag bits.
const (
	gpkgFlagEmpty      = 1 << 4
	gpkgEnvelopeShift  = 1
	gpkgEnvelopeMask   = 0x7
	gpkgHeaderMinBytes = 8
)

// decodeGeometryBlob strips the GeoPackage binary header and decodes the WKB
// payload. A NULL or empty geometry yields a nil GeoJSON geometry.
func decodeGeometryBlob(blob []byte) (*geo.Geometry, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	if len(blob) < gpkgHeaderMinBytes || blob[0] != 'G' || blob[1] != 'P' {
		return nil, errors.New("gpkg: malformed geometry header")
	}
	flags := blob[3]
	if flags&gpkgFlagEmpty != 0 {
		return nil, nil
	}

	var envelopeDoubles int
	switch (flags >> gpkgEnvelopeShift) & gpkgEnvelopeMask {
	case 0:
		envelopeDoubles = 0
	case 1:
		envelopeDoubles = 4
	case 2, 3:
		envelopeDoubles = 6
	case 4:
		envelopeDoubles = 8
	default:
		return nil, errors.New("gpkg: invalid envelope indicator")
	}

	offset := gpkgHeaderMinBytes + envelopeDoubles*8
	if len(blob) < offset {
		return nil, errors.New("gpkg: truncated geometry envelope")
	}
	return geo.DecodeWKB(blob[offset:])
}

// EncodeGeometryBlob encodes a little-endian GeoPackage header with an XY
// envelope followed by the given WKB payload. Used by fixtures and tools that
// need to produce container geometries.
func EncodeGeometryBlob(srsID int32, ext geo.Extent, wkb []byte) []byte {
	out := make([]byte, 0, gpkgHeaderMinBytes+32+len(wkb))
	out = append(out, 'G', 'P', 0, 1<<gpkgEnvelopeShift|1)
	out = binary.LittleEndian.AppendUint32(out, uint32(srsID))
	// GeoPackage envelope order is minx, maxx, miny, maxy.
	for _, v := range [4]float64{ext[0], ext[2], ext[1], ext[3]} {
		out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
	}
	return append(out, wkb...)
}
