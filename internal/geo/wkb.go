package geo

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Well-known binary geometry type codes (ISO 13249-3). Z/M variants add
// 1000/2000/3000 to the base code.
const (
	wkbPoint              = 1
	wkbLineString         = 2
	wkbPolygon            = 3
	wkbMultiPoint         = 4
	wkbMultiLineString    = 5
	wkbMultiPolygon       = 6
	wkbGeometryCollection = 7
)

type wkbReader struct {
	buf []byte
	pos int
}

func (r *wkbReader) remaining() int { return len(r.buf) - r.pos }

func (r *wkbReader) byte() (byte, error) {
	if r.remaining() < 1 {
		return 0, fmt.Errorf("wkb: truncated at offset %d", r.pos)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *wkbReader) uint32(order binary.ByteOrder) (uint32, error) {
	if r.remaining() < 4 {
		return 0, fmt.Errorf("wkb: truncated at offset %d", r.pos)
	}
	v := order.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *wkbReader) float64(order binary.ByteOrder) (float64, error) {
	if r.remaining() < 8 {
		return 0, fmt.Errorf("wkb: truncated at offset %d", r.pos)
	}
	v := math.Float64frombits(order.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

// DecodeWKB decodes a well-known binary geometry into a GeoJSON geometry.
// Z and M ordinates are read and dropped; GeoJSON output is 2D.
func DecodeWKB(data []byte) (*Geometry, error) {
	r := &wkbReader{buf: data}
	g, err := decodeGeometry(r)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func decodeGeometry(r *wkbReader) (*Geometry, error) {
	orderByte, err := r.byte()
	if err != nil {
		return nil, err
	}
	var order binary.ByteOrder
	switch orderByte {
	case 0:
		order = binary.BigEndian
	case 1:
		order = binary.LittleEndian
	default:
		return nil, fmt.Errorf("wkb: invalid byte order marker 0x%02x", orderByte)
	}

	rawType, err := r.uint32(order)
	if err != nil {
		return nil, err
	}
	base := rawType % 1000
	// ISO dimension blocks: 0 -> XY, 1 -> XYZ, 2 -> XYM, 3 -> XYZM.
	extra := 0
	switch rawType / 1000 {
	case 0:
	case 1, 2:
		extra = 1
	case 3:
		extra = 2
	default:
		return nil, fmt.Errorf("wkb: unsupported geometry type %d", rawType)
	}

	switch base {
	case wkbPoint:
		p, err := readPosition(r, order, extra)
		if err != nil {
			return nil, err
		}
		return &Geometry{Type: "Point", Coordinates: p}, nil
	case wkbLineString:
		line, err := readLine(r, order, extra)
		if err != nil {
			return nil, err
		}
		return &Geometry{Type: "LineString", Coordinates: line}, nil
	case wkbPolygon:
		poly, err := readPolygon(r, order, extra)
		if err != nil {
			return nil, err
		}
		return &Geometry{Type: "Polygon", Coordinates: poly}, nil
	case wkbMultiPoint, wkbMultiLineString, wkbMultiPolygon:
		return decodeMulti(r, order, base)
	case wkbGeometryCollection:
		return nil, fmt.Errorf("wkb: geometry collections are not supported")
	default:
		return nil, fmt.Errorf("wkb: unsupported geometry type %d", rawType)
	}
}

func decodeMulti(r *wkbReader, order binary.ByteOrder, base uint32) (*Geometry, error) {
	n, err := r.uint32(order)
	if err != nil {
		return nil, err
	}
	parts := make([]*Geometry, 0, n)
	for i := uint32(0); i < n; i++ {
		// Each member carries its own byte order and type header.
		g, err := decodeGeometry(r)
		if err != nil {
			return nil, err
		}
		parts = append(parts, g)
	}

	switch base {
	case wkbMultiPoint:
		coords := make([][]float64, len(parts))
		for i, g := range parts {
			p, ok := g.Coordinates.([]float64)
			if !ok {
				return nil, fmt.Errorf("wkb: multipoint member %d is %s", i, g.Type)
			}
			coords[i] = p
		}
		return &Geometry{Type: "MultiPoint", Coordinates: coords}, nil
	case wkbMultiLineString:
		coords := make([][][]float64, len(parts))
		for i, g := range parts {
			l, ok := g.Coordinates.([][]float64)
			if !ok {
				return nil, fmt.Errorf("wkb: multilinestring member %d is %s", i, g.Type)
			}
			coords[i] = l
		}
		return &Geometry{Type: "MultiLineString", Coordinates: coords}, nil
	case wkbMultiPolygon:
		coords := make([][][][]float64, len(parts))
		for i, g := range parts {
			p, ok := g.Coordinates.([][][]float64)
			if !ok {
				return nil, fmt.Errorf("wkb: multipolygon member %d is %s", i, g.Type)
			}
			coords[i] = p
		}
		return &Geometry{Type: "MultiPolygon", Coordinates: coords}, nil
	default:
		return nil, fmt.Errorf("wkb: unsupported multi geometry type %d", base)
	}
}

func readPosition(r *wkbReader, order binary.ByteOrder, extra int) ([]float64, error) {
	x, err := r.float64(order)
	if err != nil {
		return nil, err
	}
	y, err := r.float64(order)
	if err != nil {
		return nil, err
	}
	for i := 0; i < extra; i++ {
		if _, err := r.float64(order); err != nil {
			return nil, err
		}
	}
	return []float64{x, y}, nil
}

func readLine(r *wkbReader, order binary.ByteOrder, extra int) ([][]float64, error) {
	n, err := r.uint32(order)
	if err != nil {
		return nil, err
	}
	line := make([][]float64, 0, n)
	for i := uint32(0); i < n; i++ {
		p, err := readPosition(r, order, extra)
		if err != nil {
			return nil, err
		}
		line = append(line, p)
	}
	return line, nil
}

func readPolygon(r *wkbReader, order binary.ByteOrder, extra int) ([][][]float64, error) {
	n, err := r.uint32(order)
	if err != nil {
		return nil, err
	}
	rings := make([][][]float64, 0, n)
	for i := uint32(0); i < n; i++ {
		ring, err := readLine(r, order, extra)
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
	}
	return rings, nil
}
