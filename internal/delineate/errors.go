package delineate

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned when a delineation is requested while one is
// already in flight for the session. The new request is rejected, not queued.
var ErrAlreadyRunning = errors.New("delineation already running for this session")

// ErrNoPointSelected is returned when a delineation is requested before any
// outlet point has been clicked.
var ErrNoPointSelected = errors.New("no outlet point selected")

// MissingArtifactError reports a delineator run that claimed success but whose
// output container does not exist on disk. Fatal for the run.
type MissingArtifactError struct {
	Path string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("delineation output was not created: %s", e.Path)
}

// PrimaryLayerError reports an unreadable watershed layer. Unlike overlay
// layers, the primary layer has no fallback: the run fails.
type PrimaryLayerError struct {
	Path string
	Err  error
}

func (e *PrimaryLayerError) Error() string {
	return fmt.Sprintf("watershed layer unreadable in %s: %v", e.Path, e.Err)
}

func (e *PrimaryLayerError) Unwrap() error { return e.Err }
