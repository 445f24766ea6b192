// Package session owns the browsing and playback state of one app run:
// the catalog, category and search selection, the current and inspected
// station, playback intent, volume and load status. All mutation goes through
// named intent handlers; listeners receive a fresh Snapshot after each change.
//
// A Session is not safe for concurrent use. The app drives it from the UI
// goroutine and posts asynchronous completions back onto that goroutine.
package session

import (
	"context"
	"math"
	"sort"

	logging "github.com/ipfs/go-log/v2"

	"github.com/edward-ap/phradio/internal/catalog"
	"github.com/edward-ap/phradio/internal/favorites"
)

var logger = logging.Logger("phradio/session")

// DefaultVolume is the playback level used when none is configured.
const DefaultVolume = 1.0

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	Catalog  []catalog.Station
	Category string
	Search   string
	Current  *catalog.Station
	Playing  bool
	Detail   *catalog.Station
	Volume   float64
	Loading  bool
	Error    string
}

// CurrentID returns the current station's ID or "".
func (s Snapshot) CurrentID() string {
	if s.Current == nil {
		return ""
	}
	return s.Current.ID
}

// DetailID returns the inspected station's ID or "".
func (s Snapshot) DetailID() string {
	if s.Detail == nil {
		return ""
	}
	return s.Detail.ID
}

// IsCurrent reports whether id is the station bound to playback.
func (s Snapshot) IsCurrent(id string) bool {
	return s.Current != nil && s.Current.ID == id
}

// Listener receives the state after each change.
type Listener func(Snapshot)

// Session is the coordinating state machine.
type Session struct {
	state     Snapshot
	favs      *favorites.Manager
	listeners map[int]Listener
	nextID    int
}

// New creates a session with the given favorites and initial volume. A nil
// favorites manager behaves as an unsaved, initially empty set.
func New(favs *favorites.Manager, volume float64) *Session {
	if favs == nil {
		favs = favorites.Load(nil)
	}
	return &Session{
		state: Snapshot{
			Catalog:  []catalog.Station{},
			Category: catalog.CategoryAll,
			Volume:   clampVolume(volume),
			Loading:  true,
		},
		favs:      favs,
		listeners: map[int]Listener{},
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	out := s.state
	out.Current = cloneStation(s.state.Current)
	out.Detail = cloneStation(s.state.Detail)
	return out
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (s *Session) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *Session) notify() {
	if len(s.listeners) == 0 {
		return
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	snap := s.Snapshot()
	for _, id := range ids {
		if fn, ok := s.listeners[id]; ok {
			fn(snap)
		}
	}
}

// BeginLoad marks the catalog as loading.
func (s *Session) BeginLoad() {
	s.state.Loading = true
	s.notify()
}

// FinishLoad settles a catalog load. On success the catalog is replaced and
// the error cleared; on failure the error message is set and the catalog is
// left empty.
func (s *Session) FinishLoad(stations []catalog.Station, err error) {
	if err != nil {
		logger.Warnf("catalog load failed: %v", err)
		s.state.Error = catalog.UserMessage(err)
		s.state.Catalog = []catalog.Station{}
	} else {
		if stations == nil {
			stations = []catalog.Station{}
		}
		s.state.Catalog = stations
		s.state.Error = ""
	}
	s.state.Loading = false
	s.notify()
}

// LoadCatalog runs a complete load against src on the calling goroutine.
func (s *Session) LoadCatalog(ctx context.Context, src catalog.Source) {
	s.BeginLoad()
	stations, err := src.Stations(ctx)
	s.FinishLoad(stations, err)
}

// Select opens station for inspection. A station other than the current one
// becomes current and starts playing; re-selecting the current station leaves
// the playback intent untouched.
func (s *Session) Select(station catalog.Station) {
	s.state.Detail = cloneStation(&station)
	if s.state.Current == nil || s.state.Current.ID != station.ID {
		s.state.Current = cloneStation(&station)
		s.state.Playing = true
	}
	s.notify()
}

// CloseDetail clears the inspected station without affecting playback.
func (s *Session) CloseDetail() {
	if s.state.Detail == nil {
		return
	}
	s.state.Detail = nil
	s.notify()
}

// TogglePlay flips the playback intent. It does nothing without a current
// station.
func (s *Session) TogglePlay() {
	if s.state.Current == nil {
		return
	}
	s.state.Playing = !s.state.Playing
	s.notify()
}

// Stop clears the playback intent, keeping the current station.
func (s *Session) Stop() {
	if !s.state.Playing {
		return
	}
	s.state.Playing = false
	s.notify()
}

// ToggleFavorite flips id in the favorite set and persists it.
func (s *Session) ToggleFavorite(id string) bool {
	now := s.favs.Toggle(id)
	s.notify()
	return now
}

// IsFavorite reports whether id is a favorite.
func (s *Session) IsFavorite(id string) bool { return s.favs.Contains(id) }

// Favorites returns a copy of the favorite set.
func (s *Session) Favorites() *favorites.Set { return s.favs.Set() }

// SetVolume replaces the volume, clamped to [0,1].
func (s *Session) SetVolume(v float64) {
	v = clampVolume(v)
	if v == s.state.Volume {
		return
	}
	s.state.Volume = v
	s.notify()
}

// SetSearch replaces the search text.
func (s *Session) SetSearch(text string) {
	if text == s.state.Search {
		return
	}
	s.state.Search = text
	s.notify()
}

// SetCategory replaces the active category.
func (s *Session) SetCategory(name string) {
	if name == "" {
		name = catalog.CategoryAll
	}
	if name == s.state.Category {
		return
	}
	s.state.Category = name
	s.notify()
}

// Visible returns the filtered station list for the current state.
func (s *Session) Visible() []catalog.Station {
	return catalog.Filter(s.state.Catalog, s.state.Category, s.state.Search, s.favs)
}

func clampVolume(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func cloneStation(st *catalog.Station) *catalog.Station {
	if st == nil {
		return nil
	}
	c := *st
	return &c
}
