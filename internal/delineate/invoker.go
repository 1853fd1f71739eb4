package delineate

import (
	"context"
	"math"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mbetancur/basinview/internal/geo"
	"github.com/mbetancur/basinview/internal/logger"
	"github.com/mbetancur/basinview/internal/session"
	"github.com/mbetancur/basinview/pkg/types"
)

// UpdateEmitter delivers run lifecycle events to a session's connected
// clients.
type UpdateEmitter interface {
	EmitToSession(sessionID string, payload any)
}

// RunRecorder persists completed runs for the session's history.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

// RunRecord is the persisted view of a completed run.
type RunRecord struct {
	ID           string
	SessionID    string
	WatershedID  string
	Lat          float64
	Lon          float64
	KnownAreaKm2 *float64
	ArtifactPath string
	LayerErrors  []session.LayerError
	CreatedAt    time.Time
}

// RunStatus is the invoker's caller-visible view of the in-flight run.
type RunStatus struct {
	Running   bool
	RunID     string
	LastError string
}

// Invoker drives the delineation routine for one session. It enforces
// single-flight per session and installs finished results on the store as one
// atomic swap; a failed run leaves the previous result untouched.
type Invoker struct {
	sessionID  string
	delineator Delineator
	loader     *Loader
	store      *session.Store
	emitter    UpdateEmitter
	recorder   RunRecorder

	mu       sync.Mutex
	inFlight bool
	runID    string
	lastErr  string
}

// NewInvoker creates an invoker bound to one session's store. emitter and
// recorder may be nil.
func NewInvoker(sessionID string, delineator Delineator, loader *Loader, store *session.Store, emitter UpdateEmitter, recorder RunRecorder) *Invoker {
	return &Invoker{
		sessionID:  sessionID,
		delineator: delineator,
		loader:     loader,
		store:      store,
		emitter:    emitter,
		recorder:   recorder,
	}
}

// Status returns the current in-flight view.
func (i *Invoker) Status() RunStatus {
	i.mu.Lock()
	defer i.mu.Unlock()
	return RunStatus{Running: i.inFlight, RunID: i.runID, LastError: i.lastErr}
}

// ClearLastError forgets the last failure, as part of a session reset. An
// in-flight run is unaffected; there is no cancellation.
func (i *Invoker) ClearLastError() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.lastErr = ""
}

// Start launches a delineation for the session's last clicked point.
//
// Returns ErrNoPointSelected if no click has been recorded and
// ErrAlreadyRunning if a run is already in flight; neither changes any state.
// On success the run proceeds in the background: the session reports
// StatusRunning until the result (or failure) lands, and a click recorded
// meanwhile feeds the next invocation, never this one.
func (i *Invoker) Start() (string, error) {
	st := i.store.Get()
	if st.LastClick == nil {
		return "", ErrNoPointSelected
	}
	point := *st.LastClick
	params := normalizeParams(st.Params)

	i.mu.Lock()
	if i.inFlight {
		i.mu.Unlock()
		return "", ErrAlreadyRunning
	}
	runID := uuid.NewString()
	i.inFlight = true
	i.runID = runID
	i.lastErr = ""
	i.mu.Unlock()

	i.emit(types.RunEvent{Type: types.EventRunStarted, RunID: runID})
	go i.run(runID, point, params)
	return runID, nil
}

func (i *Invoker) run(runID string, point geo.Coordinate, params session.RunParams) {
	res, err := i.execute(context.Background(), runID, point, params)

	if err == nil {
		// Single atomic swap, installed before the session stops reporting
		// running so callers never observe an idle session without the new
		// result. LastClick is left in place so the same point can be re-run
		// with different parameters.
		i.store.Apply(func(st *session.State) {
			st.Run = res
		})
	}

	i.mu.Lock()
	i.inFlight = false
	if err != nil {
		i.lastErr = err.Error()
	}
	i.mu.Unlock()

	if err != nil {
		logger.Errorf("[delineate] run %s failed: %v", runID, err)
		i.emit(types.RunEvent{Type: types.EventRunFailed, RunID: runID, Error: err.Error()})
		return
	}

	if i.recorder != nil {
		rec := RunRecord{
			ID:           runID,
			SessionID:    i.sessionID,
			WatershedID:  params.WatershedID,
			Lat:          point.Lat,
			Lon:          point.Lon,
			KnownAreaKm2: params.KnownAreaKm2,
			ArtifactPath: res.ArtifactPath,
			LayerErrors:  res.LayerErrors,
			CreatedAt:    time.Now(),
		}
		if err := i.recorder.RecordRun(context.Background(), rec); err != nil {
			logger.Warnf("[delineate] run %s not recorded: %v", runID, err)
		}
	}

	i.emit(types.RunEvent{Type: types.EventRunCompleted, RunID: runID, LayerErrorCount: len(res.LayerErrors)})
}

func (i *Invoker) execute(ctx context.Context, runID string, point geo.Coordinate, params session.RunParams) (*session.RunResult, error) {
	path, err := i.delineator.Delineate(ctx, point.Lat, point.Lon, params.WatershedID, params.KnownAreaKm2)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, &MissingArtifactError{Path: path}
	}

	res, err := i.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	res.ID = runID
	return res, nil
}

func (i *Invoker) emit(payload any) {
	if i.emitter != nil {
		i.emitter.EmitToSession(i.sessionID, payload)
	}
}

// normalizeParams applies the input-anomaly corrections: a blank watershed id
// defaults to the sentinel identifier, and a non-positive or non-finite known
// area is treated as unknown.
func normalizeParams(p session.RunParams) session.RunParams {
	if p.WatershedID == "" {
		p.WatershedID = session.DefaultWatershedID
	}
	if p.KnownAreaKm2 != nil {
		a := *p.KnownAreaKm2
		if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 {
			p.KnownAreaKm2 = nil
		}
	}
	return p
}
