package session

import (
	"math"
	"testing"

	"github.com/mbetancur/basinview/internal/geo"
)

func TestSelectorRecordsClick(t *testing.T) {
	store := NewStore()
	sel := NewSelector(store)

	if !sel.Select(geo.Coordinate{Lat: 4.65, Lon: -74.05}) {
		t.Fatal("valid click rejected")
	}
	st := store.Get()
	if st.LastClick == nil || st.LastClick.Lat != 4.65 || st.LastClick.Lon != -74.05 {
		t.Fatalf("click not recorded: %+v", st.LastClick)
	}
}

func TestSelectorSupersedesPriorClick(t *testing.T) {
	store := NewStore()
	sel := NewSelector(store)

	sel.Select(geo.Coordinate{Lat: 1, Lon: 1})
	sel.Select(geo.Coordinate{Lat: 2, Lon: 2})

	st := store.Get()
	if st.LastClick.Lat != 2 || st.LastClick.Lon != 2 {
		t.Fatalf("prior click not superseded: %+v", st.LastClick)
	}
}

func TestSelectorDropsInvalidClicks(t *testing.T) {
	store := NewStore()
	sel := NewSelector(store)
	sel.Select(geo.Coordinate{Lat: 4.65, Lon: -74.05})

	invalid := []geo.Coordinate{
		{Lat: 95, Lon: 0},
		{Lat: 0, Lon: -999},
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.Inf(-1)},
	}
	for _, c := range invalid {
		if sel.Select(c) {
			t.Fatalf("invalid click accepted: %+v", c)
		}
	}

	// The prior valid click stays untouched.
	st := store.Get()
	if st.LastClick == nil || st.LastClick.Lat != 4.65 {
		t.Fatalf("invalid click disturbed state: %+v", st.LastClick)
	}
}
