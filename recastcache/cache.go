package recastcache

import (
	"sync"

	"github.com/argonaut-engine/navmesh/shape"
	"github.com/argonaut-engine/navmesh/tilemath"
)

// ChangeSet reports which tiles a Commit actually altered, keyed by
// their post-commit Version. A tile that received edits but whose
// content hash came out unchanged (oscillating geometry, P6) is not
// included: its Revision still advances internally for coalescing
// purposes, but callers that only care about navmesh-affecting change
// never see it.
type ChangeSet map[tilemath.TilePosition]Version

// tileEntry is the cache's live state for one tile.
type tileEntry struct {
	mesh RecastMesh
	hash contentHash
}

// Cache holds the live, committed RecastMesh for every tile that has
// ever received geometry in a worldspace. All mutation goes through a
// Guard obtained from MakeUpdateGuard: the cache itself never exposes a
// way to mutate a tile's live mesh directly, so a reader taking a
// Snapshot never observes a half-applied edit.
type Cache struct {
	mu    sync.Mutex
	tiles map[tilemath.TilePosition]*tileEntry
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{tiles: make(map[tilemath.TilePosition]*tileEntry)}
}

// MakeUpdateGuard opens a new transaction against c. Edits recorded on
// the returned Guard are invisible to Snapshot and to other guards until
// Commit is called. tileEdgeSize must match the worldspace's
// configured tile size, used to resolve which tiles a given shape's
// bounds overlap.
func (c *Cache) MakeUpdateGuard(tileEdgeSize float32) *Guard {
	return &Guard{
		cache:        c,
		tileEdgeSize: tileEdgeSize,
		pending:      make(map[tilemath.TilePosition]*pendingTile),
	}
}

// Snapshot returns the live RecastMesh committed for tp, and whether any
// geometry has ever been committed there. The returned value is a copy
// and safe to read concurrently with further commits.
func (c *Cache) Snapshot(tp tilemath.TilePosition) (RecastMesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.tiles[tp]
	if !ok {
		return RecastMesh{}, false
	}
	return cloneMesh(e.mesh), true
}

// Version returns the current live Version of tp, the zero Version if
// nothing has ever been committed there.
func (c *Cache) Version(tp tilemath.TilePosition) Version {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.tiles[tp]; ok {
		return e.mesh.Version
	}
	return Version{}
}

func cloneMesh(m RecastMesh) RecastMesh {
	out := RecastMesh{
		Version:      m.Version,
		Objects:      make(map[shape.ObjectID]objectEntry, len(m.Objects)),
		Water:        make(map[shape.ObjectID]WaterPlane, len(m.Water)),
		Heightfields: make(map[shape.ObjectID]Heightfield, len(m.Heightfields)),
	}
	for k, v := range m.Objects {
		out.Objects[k] = v
	}
	for k, v := range m.Water {
		out.Water[k] = v
	}
	for k, v := range m.Heightfields {
		out.Heightfields[k] = v
	}
	return out
}
