package tiledb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/recastcache"
	"github.com/argonaut-engine/navmesh/tilemath"
)

func testKey() Key {
	return Key{
		Agent: navconf.AgentBoundsHash{1, 2, 3},
		Tile:  tilemath.TilePosition{X: 4, Y: -5},
	}
}

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMem()
	k := testKey()
	row := Row{Version: recastcache.Version{Generation: 3, Revision: 7}, Data: []byte("tile-bytes")}

	require.NoError(t, s.Put(k, row))
	got, ok, err := s.Get(k)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, row, got)

	require.NoError(t, s.Delete(k))
	_, ok, err = s.Get(k)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tiles.db")
	s, err := OpenBolt(dbPath, 0)
	require.NoError(t, err)
	defer s.Close()

	k := testKey()
	row := Row{Version: recastcache.Version{Generation: 1, Revision: 1}, Data: []byte("some navmesh bytes, repeated repeated repeated")}

	require.NoError(t, s.Put(k, row))
	got, ok, err := s.Get(k)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, row, got)
}

func TestBoltStoreMissingKey(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tiles.db")
	s, err := OpenBolt(dbPath, 0)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(testKey())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltStoreStats(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tiles.db")
	s, err := OpenBolt(dbPath, 0)
	require.NoError(t, err)
	defer s.Close()

	tiles, _, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, tiles)

	require.NoError(t, s.Put(testKey(), Row{Data: []byte("bytes")}))
	tiles, size, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, tiles)
	assert.Positive(t, size)
}

func TestOpenMemoryPath(t *testing.T) {
	s, err := Open(":memory:", 0)
	require.NoError(t, err)
	_, ok := s.(*MemStore)
	assert.True(t, ok)
}
