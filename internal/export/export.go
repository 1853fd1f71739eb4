// Package export exposes the current run's artifacts for download. Absence
// is the only failure mode: with no successful run, or an unreadable artifact
// file, downloads are simply not available.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mbetancur/basinview/internal/logger"
	"github.com/mbetancur/basinview/internal/session"
)

const (
	geoPackageContentType = "application/geopackage+sqlite3"
	geoJSONContentType    = "application/geo+json"
)

// Download is a named payload ready to be served.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Raw returns the raw spatial container of the current run, or nil if no
// successful run exists.
func Raw(st session.State) *Download {
	if st.Run == nil {
		return nil
	}
	data, err := os.ReadFile(st.Run.ArtifactPath)
	if err != nil {
		logger.Warnf("[export] artifact %s not readable: %v", st.Run.ArtifactPath, err)
		return nil
	}
	return &Download{
		Filename:    filepath.Base(st.Run.ArtifactPath),
		ContentType: geoPackageContentType,
		Data:        data,
	}
}

// PrimaryGeoJSON returns the current run's watershed layer serialized as
// GeoJSON, named after the session's watershed id. Nil if no successful run
// exists.
func PrimaryGeoJSON(st session.State) *Download {
	if st.Run == nil || st.Run.Primary == nil {
		return nil
	}
	body, err := st.Run.Primary.MarshalJSONString()
	if err != nil {
		logger.Warnf("[export] watershed layer not serializable: %v", err)
		return nil
	}
	id := st.Params.WatershedID
	if id == "" {
		id = session.DefaultWatershedID
	}
	return &Download{
		Filename:    fmt.Sprintf("%s.geojson", id),
		ContentType: geoJSONContentType,
		Data:        []byte(body),
	}
}
