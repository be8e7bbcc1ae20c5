// Package tilestore holds the built, ready-to-query tile state for one
// navmesh (one distinct agent bounds), bounded to a configured maximum
// tile count via distance-based eviction with a least-recently-used
// tiebreak.
package tilestore

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/argonaut-engine/navmesh/recastcache"
	"github.com/argonaut-engine/navmesh/tilemath"
)

// Record is one tile's built navmesh state: the binary blob the
// external builder produced, keyed to the recastcache.Version it was
// built from so staleness can be detected without re-running the
// builder.
type Record struct {
	Version recastcache.Version
	Data    []byte // nil for a tile that builds to "no navmesh"
}

// Store holds every resident tile Record for one navmesh. It is safe
// for concurrent use: reads (Snapshot) take a read lock, writes
// (CommitTile, Evict) take the write lock.
type Store struct {
	mu       sync.RWMutex
	records  map[tilemath.TilePosition]Record
	order    *lru.Cache[tilemath.TilePosition, struct{}]
	maxTiles int
}

// New returns a Store that evicts down to maxTiles resident tiles
// whenever CommitTile would otherwise exceed it. maxTiles <= 0 means
// unbounded.
func New(maxTiles int) *Store {
	capacity := maxTiles
	if capacity <= 0 {
		capacity = 1 // lru.New requires a positive size; unused when maxTiles <= 0
	}
	order, _ := lru.New[tilemath.TilePosition, struct{}](capacity + 1)
	return &Store{
		records:  make(map[tilemath.TilePosition]Record),
		order:    order,
		maxTiles: maxTiles,
	}
}

// Snapshot returns the resident Record for tp, and whether one exists.
func (s *Store) Snapshot(tp tilemath.TilePosition) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[tp]
	return r, ok
}

// Len returns the number of resident tiles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// CommitTile installs rec as tp's resident state, marking tp as the
// most recently touched tile, then evicts tiles outside [center,
// windowRadius] (farthest by Euclidean tile distance first, oldest-touched
// among equal distance) until the store is back within maxTiles.
//
// A tile inside the window is never evicted even if the store remains
// over budget as a result; maxTiles is a target, not a hard cap, when
// the window itself is larger than it.
func (s *Store) CommitTile(tp tilemath.TilePosition, rec Record, center tilemath.TilePosition, windowRadius int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[tp] = rec
	s.order.Add(tp, struct{}{})

	if s.maxTiles <= 0 {
		return
	}
	for len(s.records) > s.maxTiles {
		victim, ok := s.pickEvictionVictim(center, windowRadius)
		if !ok {
			return // everything left is inside the protected window
		}
		delete(s.records, victim)
		s.order.Remove(victim)
	}
}

// pickEvictionVictim returns the resident tile farthest outside the
// window, breaking ties by least-recently-touched order. It never
// returns a tile within windowRadius of center.
func (s *Store) pickEvictionVictim(center tilemath.TilePosition, windowRadius int32) (tilemath.TilePosition, bool) {
	var (
		best     tilemath.TilePosition
		bestDist float64 = -1
		found    bool
	)
	// order.Keys() is oldest-touched first; among tiles tied for the
	// largest distance we want the oldest, so only replace best on a
	// strictly greater distance.
	for _, tp := range s.order.Keys() {
		if _, ok := s.records[tp]; !ok {
			continue
		}
		d := tp.Distance2D(center)
		if d <= float64(windowRadius) {
			continue
		}
		if d > bestDist {
			bestDist = d
			best = tp
			found = true
		}
	}
	return best, found
}

// PruneOutsideWindow evicts every resident tile farther than windowRadius
// (Euclidean tile distance, tilemath.Distance2D) from center, regardless of maxTiles. Used by
// the navigator on every update() to retract tiles that fell out of an
// agent's active window even when the store is otherwise under budget.
func (s *Store) PruneOutsideWindow(center tilemath.TilePosition, windowRadius int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tp := range s.records {
		if tp.Distance2D(center) > float64(windowRadius) {
			delete(s.records, tp)
			s.order.Remove(tp)
		}
	}
}

// Evict forcibly drops tp's resident state, if any.
func (s *Store) Evict(tp tilemath.TilePosition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, tp)
	s.order.Remove(tp)
}

// Resident returns every currently resident tile position.
func (s *Store) Resident() []tilemath.TilePosition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tilemath.TilePosition, 0, len(s.records))
	for tp := range s.records {
		out = append(out, tp)
	}
	return out
}
