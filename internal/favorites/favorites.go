package favorites

import (
	"encoding/json"
	"errors"

	logging "github.com/ipfs/go-log/v2"
)

var logger = logging.Logger("phradio/favorites")

// StorageKey is the single key holding the serialized favorite list.
const StorageKey = "ph_radio_favorites"

// Set is an insertion-ordered set of station IDs.
type Set struct {
	ids   []string
	index map[string]struct{}
}

// NewSet builds a set from ids, dropping empty and duplicate entries.
func NewSet(ids ...string) *Set {
	s := &Set{index: map[string]struct{}{}}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Contains reports membership.
func (s *Set) Contains(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Len returns the number of favorites.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns a copy of the IDs in insertion order.
func (s *Set) IDs() []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s.ids...)
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set { return NewSet(s.IDs()...) }

// Toggle adds id when absent or removes it when present and reports whether
// id is a favorite afterwards.
func (s *Set) Toggle(id string) bool {
	if _, ok := s.index[id]; ok {
		delete(s.index, id)
		for i, v := range s.ids {
			if v == id {
				s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
				break
			}
		}
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Manager owns the favorite set and writes it through to a Store on every
// change. Storage failures are logged and never surfaced.
type Manager struct {
	store Store
	set   *Set
}

// Load reads the persisted favorites. Missing or malformed data yields an
// empty set.
func Load(store Store) *Manager {
	m := &Manager{store: store, set: NewSet()}
	if store == nil {
		return m
	}
	raw, err := store.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warnf("failed to read favorites: %v", err)
		}
		return m
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logger.Warnf("failed to parse favorites from storage: %v", err)
		return m
	}
	m.set = NewSet(ids...)
	logger.Debugf("loaded %d favorites", m.set.Len())
	return m
}

// Contains reports whether id is a favorite.
func (m *Manager) Contains(id string) bool { return m.set.Contains(id) }

// Set returns a snapshot copy of the favorites.
func (m *Manager) Set() *Set { return m.set.Clone() }

// Toggle flips id's membership, persists the full list and reports whether
// id is a favorite afterwards.
func (m *Manager) Toggle(id string) bool {
	if id == "" {
		return false
	}
	now := m.set.Toggle(id)
	m.save()
	return now
}

func (m *Manager) save() {
	if m.store == nil {
		return
	}
	b, err := json.Marshal(m.set.IDs())
	if err != nil {
		logger.Warnf("failed to encode favorites: %v", err)
		return
	}
	if err := m.store.Set(StorageKey, string(b)); err != nil {
		logger.Warnf("failed to save favorites: %v", err)
	}
}
