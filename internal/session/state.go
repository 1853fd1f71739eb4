package session

import "github.com/mbetancur/basinview/internal/geo"

// DefaultWatershedID is used when the user leaves the identifier blank.
const DefaultWatershedID = "custom"

// OverlayKind names the optional layers of a delineation result.
type OverlayKind string

const (
	OverlayStreams        OverlayKind = "streams"
	OverlaySnapPoint      OverlayKind = "snapPoint"
	OverlayRequestedPoint OverlayKind = "requestedPoint"
)

// Status describes where a session is in the click → delineate → render loop.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusSelected Status = "selected"
	StatusRunning  Status = "running"
	StatusReady    Status = "ready"
	StatusFailed   Status = "failed"
)

// RunParams is the user-supplied run configuration.
type RunParams struct {
	WatershedID  string   `json:"watershedId"`
	KnownAreaKm2 *float64 `json:"knownAreaKm2,omitempty"`
}

// LayerError is a non-fatal warning recorded while loading a run's layers.
// Layer is an OverlayKind or "primary".
type LayerError struct {
	Layer   string `json:"layer"`
	Message string `json:"message"`
}

// RunResult is the outcome of one successful delineation invocation. It is
// immutable once installed on a State; a new run replaces the whole value.
type RunResult struct {
	ID           string
	ArtifactPath string
	Primary      *geo.FeatureCollection
	Overlays     map[OverlayKind]*geo.FeatureCollection
	Viewport     *geo.Viewport
	LayerErrors  []LayerError
}

// Overlay returns the named overlay, or nil if the run does not carry it.
func (r *RunResult) Overlay(kind OverlayKind) *geo.FeatureCollection {
	if r == nil {
		return nil
	}
	return r.Overlays[kind]
}

// State is the mutable record of one user session.
//
// LastClick is the most recent map click; it survives a successful run so the
// same point can be re-run with different parameters. Run is the most recent
// completed delineation, replaced wholesale by the next one.
type State struct {
	LastClick *geo.Coordinate
	Params    RunParams
	Run       *RunResult
}

// DeriveStatus folds the session state and the invoker's in-flight view into
// a single user-facing status.
func DeriveStatus(st State, running bool, lastError string) Status {
	switch {
	case running:
		return StatusRunning
	case lastError != "":
		return StatusFailed
	case st.Run != nil:
		return StatusReady
	case st.LastClick != nil:
		return StatusSelected
	default:
		return StatusIdle
	}
}
