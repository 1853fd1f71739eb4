package geo

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func appendUint32(b []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(b, v) }

func appendFloat64(b []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
}

func wkbPointBytes(x, y float64) []byte {
	b := []byte{1}
	b = appendUint32(b, wkbPoint)
	b = appendFloat64(b, x)
	return appendFloat64(b, y)
}

func wkbLineBytes(points ...[2]float64) []byte {
	b := []byte{1}
	b = appendUint32(b, wkbLineString)
	b = appendUint32(b, uint32(len(points)))
	for _, p := range points {
		b = appendFloat64(b, p[0])
		b = appendFloat64(b, p[1])
	}
	return b
}

func wkbPolygonBytes(ring ...[2]float64) []byte {
	b := []byte{1}
	b = appendUint32(b, wkbPolygon)
	b = appendUint32(b, 1)
	b = appendUint32(b, uint32(len(ring)))
	for _, p := range ring {
		b = appendFloat64(b, p[0])
		b = appendFloat64(b, p[1])
	}
	return b
}

func TestDecodeWKBPoint(t *testing.T) {
	g, err := DecodeWKB(wkbPointBytes(-74.05, 4.65))
	require.NoError(t, err)
	require.Equal(t, "Point", g.Type)
	require.Equal(t, []float64{-74.05, 4.65}, g.Coordinates)
}

func TestDecodeWKBLineString(t *testing.T) {
	g, err := DecodeWKB(wkbLineBytes([2]float64{0, 0}, [2]float64{1, 2}, [2]float64{3, 4}))
	require.NoError(t, err)
	require.Equal(t, "LineString", g.Type)
	require.Equal(t, [][]float64{{0, 0}, {1, 2}, {3, 4}}, g.Coordinates)
}

func TestDecodeWKBPolygon(t *testing.T) {
	g, err := DecodeWKB(wkbPolygonBytes(
		[2]float64{0, 0}, [2]float64{4, 0}, [2]float64{4, 4}, [2]float64{0, 0},
	))
	require.NoError(t, err)
	require.Equal(t, "Polygon", g.Type)
	require.Equal(t, [][][]float64{{{0, 0}, {4, 0}, {4, 4}, {0, 0}}}, g.Coordinates)
}

func TestDecodeWKBMultiPolygon(t *testing.T) {
	b := []byte{1}
	b = appendUint32(b, wkbMultiPolygon)
	b = appendUint32(b, 2)
	b = append(b, wkbPolygonBytes([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{1, 1}, [2]float64{0, 0})...)
	b = append(b, wkbPolygonBytes([2]float64{5, 5}, [2]float64{6, 5}, [2]float64{6, 6}, [2]float64{5, 5})...)

	g, err := DecodeWKB(b)
	require.NoError(t, err)
	require.Equal(t, "MultiPolygon", g.Type)
	coords, ok := g.Coordinates.([][][][]float64)
	require.True(t, ok)
	require.Len(t, coords, 2)
	require.Equal(t, [][][]float64{{{5, 5}, {6, 5}, {6, 6}, {5, 5}}}, coords[1])
}

func TestDecodeWKBPointZ(t *testing.T) {
	// ISO type code 1001: XYZ point. The Z ordinate is dropped.
	b := []byte{1}
	b = appendUint32(b, 1001)
	b = appendFloat64(b, -74.05)
	b = appendFloat64(b, 4.65)
	b = appendFloat64(b, 2600)

	g, err := DecodeWKB(b)
	require.NoError(t, err)
	require.Equal(t, []float64{-74.05, 4.65}, g.Coordinates)
}

func TestDecodeWKBBigEndianPoint(t *testing.T) {
	b := []byte{0}
	b = binary.BigEndian.AppendUint32(b, wkbPoint)
	b = binary.BigEndian.AppendUint64(b, math.Float64bits(1.5))
	b = binary.BigEndian.AppendUint64(b, math.Float64bits(-2.5))

	g, err := DecodeWKB(b)
	require.NoError(t, err)
	require.Equal(t, []float64{1.5, -2.5}, g.Coordinates)
}

func TestDecodeWKBErrors(t *testing.T) {
	_, err := DecodeWKB(nil)
	require.Error(t, err)

	_, err = DecodeWKB([]byte{7, 0, 0, 0})
	require.Error(t, err)

	// Truncated linestring: claims 3 points, carries 1.
	b := []byte{1}
	b = appendUint32(b, wkbLineString)
	b = appendUint32(b, 3)
	b = appendFloat64(b, 1)
	b = appendFloat64(b, 2)
	_, err = DecodeWKB(b)
	require.Error(t, err)
}
