package session

import (
	"github.com/mbetancur/basinview/internal/geo"
	"github.com/mbetancur/basinview/internal/logger"
)

// Selector records map clicks on the session. Out-of-range or non-finite
// coordinates are a user-input anomaly, not an error: they are dropped
// without touching the state.
type Selector struct {
	store *Store
}

// NewSelector creates a selector bound to a session store.
func NewSelector(store *Store) *Selector {
	return &Selector{store: store}
}

// Select validates and records a clicked coordinate, superseding any prior
// unconsumed click. Returns whether the click was accepted.
func (s *Selector) Select(coord geo.Coordinate) bool {
	if !coord.Valid() {
		logger.Debugf("[session] dropping invalid click lat=%v lon=%v", coord.Lat, coord.Lon)
		return false
	}
	s.store.Apply(func(st *State) {
		st.LastClick = &coord
	})
	return true
}
