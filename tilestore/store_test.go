package tilestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argonaut-engine/navmesh/recastcache"
	"github.com/argonaut-engine/navmesh/tilemath"
)

func tp(x, y int32) tilemath.TilePosition { return tilemath.TilePosition{X: x, Y: y} }

func TestStoreCommitAndSnapshot(t *testing.T) {
	s := New(0)
	rec := Record{Version: recastcache.Version{Generation: 1, Revision: 1}, Data: []byte{1, 2, 3}}
	s.CommitTile(tp(0, 0), rec, tp(0, 0), 100)

	got, ok := s.Snapshot(tp(0, 0))
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestStoreEvictsFarthestOutsideWindow(t *testing.T) {
	s := New(3)
	center := tp(0, 0)

	// Two tiles inside the window and one far outside it, then a fourth
	// forces an eviction; the farthest resident tile outside the window goes.
	s.CommitTile(tp(0, 0), Record{}, center, 5)
	s.CommitTile(tp(1, 0), Record{}, center, 5)
	s.CommitTile(tp(20, 0), Record{}, center, 5)
	require.Equal(t, 3, s.Len())

	s.CommitTile(tp(2, 0), Record{}, center, 5)

	assert.Equal(t, 3, s.Len())
	_, ok := s.Snapshot(tp(20, 0))
	assert.False(t, ok, "farthest out-of-window tile should have been evicted")
	_, ok = s.Snapshot(tp(0, 0))
	assert.True(t, ok)
	_, ok = s.Snapshot(tp(1, 0))
	assert.True(t, ok)
	_, ok = s.Snapshot(tp(2, 0))
	assert.True(t, ok)
}

func TestStoreNeverEvictsWithinWindow(t *testing.T) {
	s := New(2)
	center := tp(0, 0)

	s.CommitTile(tp(0, 0), Record{}, center, 1)
	s.CommitTile(tp(1, 0), Record{}, center, 1)
	s.CommitTile(tp(0, 1), Record{}, center, 1)

	// All three tiles are within the radius-1 window so none can be
	// evicted, even though that leaves the store over maxTiles.
	assert.Equal(t, 3, s.Len())
}

func TestPruneOutsideWindowEvictsRegardlessOfBudget(t *testing.T) {
	s := New(0) // unbounded by maxTiles
	center := tp(0, 0)

	s.CommitTile(tp(0, 0), Record{}, center, 100)
	s.CommitTile(tp(1, 0), Record{}, center, 100)
	s.CommitTile(tp(50, 0), Record{}, center, 100)
	require.Equal(t, 3, s.Len())

	s.PruneOutsideWindow(center, 5)

	assert.Equal(t, 2, s.Len())
	_, ok := s.Snapshot(tp(50, 0))
	assert.False(t, ok)
	_, ok = s.Snapshot(tp(0, 0))
	assert.True(t, ok)
	_, ok = s.Snapshot(tp(1, 0))
	assert.True(t, ok)
}

func TestEvictRemovesResident(t *testing.T) {
	s := New(0)
	s.CommitTile(tp(5, 5), Record{}, tp(0, 0), 100)
	s.Evict(tp(5, 5))
	_, ok := s.Snapshot(tp(5, 5))
	assert.False(t, ok)
}
