package delineate

import (
	"context"
	"fmt"

	"github.com/mbetancur/basinview/internal/geo"
	"github.com/mbetancur/basinview/internal/logger"
	"github.com/mbetancur/basinview/internal/session"
)

// LayerReader reads named layers from an open spatial container. An empty
// layer name selects the container's primary layer.
type LayerReader interface {
	ReadLayer(ctx context.Context, name string) (*geo.FeatureCollection, error)
	Close() error
}

// ContainerOpener opens a spatial container by path.
type ContainerOpener func(path string) (LayerReader, error)

// overlayLayers maps overlay kinds to container layer names. The order here
// fixes the order of LayerErrors entries.
var overlayLayers = []struct {
	kind  session.OverlayKind
	layer string
	label string
}{
	{session.OverlayStreams, "streams", "streams"},
	{session.OverlaySnapPoint, "snap_point", "snap point"},
	{session.OverlayRequestedPoint, "pour_point", "requested point"},
}

// Loader reads the fixed layer set of a delineation container.
type Loader struct {
	open ContainerOpener
}

// NewLoader creates a loader over a container opener.
func NewLoader(open ContainerOpener) *Loader {
	return &Loader{open: open}
}

// Load reads the primary watershed layer and the optional overlays from the
// container at path, and derives the viewport from the primary extent.
//
// The primary layer is required: if the container cannot be opened or the
// layer cannot be read, Load fails with a PrimaryLayerError and no result is
// produced. Each overlay is attempted independently; a failed overlay is
// recorded in LayerErrors and loading continues.
func (l *Loader) Load(ctx context.Context, path string) (*session.RunResult, error) {
	reader, err := l.open(path)
	if err != nil {
		return nil, &PrimaryLayerError{Path: path, Err: err}
	}
	defer reader.Close()

	primary, err := reader.ReadLayer(ctx, "")
	if err != nil {
		return nil, &PrimaryLayerError{Path: path, Err: err}
	}

	res := &session.RunResult{
		ArtifactPath: path,
		Primary:      primary,
		Overlays:     make(map[session.OverlayKind]*geo.FeatureCollection),
	}

	for _, ol := range overlayLayers {
		fc, err := reader.ReadLayer(ctx, ol.layer)
		if err != nil {
			logger.Warnf("[delineate] %s layer not loaded from %s: %v", ol.label, path, err)
			res.LayerErrors = append(res.LayerErrors, session.LayerError{
				Layer:   string(ol.kind),
				Message: fmt.Sprintf("%s layer not found: %v", ol.label, err),
			})
			continue
		}
		res.Overlays[ol.kind] = fc
	}

	ext := primary.Extent()
	if vp := geo.ComputeViewport(ext); vp != nil {
		res.Viewport = vp
	} else {
		logger.Warnf("[delineate] watershed layer in %s has invalid bounds %v", path, ext)
		res.LayerErrors = append(res.LayerErrors, session.LayerError{
			Layer:   "primary",
			Message: "watershed layer has invalid bounds",
		})
	}

	return res, nil
}
