package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

// draft is one in-memory working copy of a timetable. mu serialises every read and write of the
// index so a draft never sees two concurrent mutations.
type draft struct {
	mu sync.Mutex

	id       string
	sourceID string
	termID   string
	section  string
	index    *timetable.Index
	unplaced []timetable.Unplaced
	revision int

	touchedAt atomic.Int64
}

func (d *draft) touch(now time.Time) { d.touchedAt.Store(now.UnixNano()) }

func (d *draft) lastTouched() time.Time { return time.Unix(0, d.touchedAt.Load()) }

// DraftSnapshot is a consistent copy of a draft taken under its lock.
type DraftSnapshot struct {
	ID           string
	SourceID     string
	TermID       string
	Section      string
	Revision     int
	Grid         *timetable.Grid
	Sessions     []timetable.Session
	Unplaced     []timetable.Unplaced
	Reservations int
	ExpiresAt    time.Time
}

// snapshot must be called with d.mu held.
func (d *draft) snapshot(ttl time.Duration) *DraftSnapshot {
	sessions := d.index.Sessions()
	if sessions == nil {
		sessions = []timetable.Session{}
	}
	unplaced := append([]timetable.Unplaced{}, d.unplaced...)
	return &DraftSnapshot{
		ID:           d.id,
		SourceID:     d.sourceID,
		TermID:       d.termID,
		Section:      d.section,
		Revision:     d.revision,
		Grid:         d.index.Grid(),
		Sessions:     sessions,
		Unplaced:     unplaced,
		Reservations: d.index.Reservations(),
		ExpiresAt:    d.lastTouched().Add(ttl).UTC(),
	}
}

// draftStore keeps drafts until they sit idle for longer than ttl.
type draftStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
	items map[string]*draft
}

func newDraftStore(ttl time.Duration) *draftStore {
	return &draftStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]*draft),
	}
}

// Save registers d and sweeps expired drafts. It returns the number of drafts held.
func (s *draftStore) Save(d *draft) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, item := range s.items {
		if now.Sub(item.lastTouched()) > s.ttl {
			delete(s.items, id)
		}
	}
	d.touch(now)
	s.items[d.id] = d
	return len(s.items)
}

// Get returns the draft and refreshes its idle timer.
func (s *draftStore) Get(id string) (*draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.items[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(d.lastTouched()) > s.ttl {
		delete(s.items, id)
		return nil, false
	}
	d.touch(now)
	return d, true
}

// Delete drops the draft and returns the number of drafts left.
func (s *draftStore) Delete(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return len(s.items)
}

// Len returns the number of drafts held, expired ones included until the next sweep.
func (s *draftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
