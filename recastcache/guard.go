package recastcache

import (
	"github.com/arl/gogeo/f32/d3"

	"github.com/argonaut-engine/navmesh/shape"
	"github.com/argonaut-engine/navmesh/tilemath"
)

// pendingTile accumulates the edits a Guard stages against one tile,
// applied to a clone of the tile's live mesh in the order they were
// recorded.
type pendingTile struct {
	ops []func(*RecastMesh)
}

func (p *pendingTile) apply(m *RecastMesh) {
	for _, op := range p.ops {
		op(m)
	}
}

// Guard is a single transaction against a Cache. It batches edits spread
// across an arbitrary number of tiles so that Commit applies them as one
// atomic step per affected tile: no reader ever observes a tile mid-edit.
//
// A Guard is not safe for concurrent use; callers serialize their own
// edits onto it.
type Guard struct {
	cache        *Cache
	tileEdgeSize float32
	pending      map[tilemath.TilePosition]*pendingTile
}

func (g *Guard) tilesFor(bounds d3.Rectangle) []tilemath.TilePosition {
	return tilemath.TilesOverlappingBounds(bounds, g.tileEdgeSize)
}

func (g *Guard) tile(tp tilemath.TilePosition) *pendingTile {
	pt, ok := g.pending[tp]
	if !ok {
		pt = &pendingTile{}
		g.pending[tp] = pt
	}
	return pt
}

func (g *Guard) record(bounds d3.Rectangle, op func(*RecastMesh)) {
	for _, tp := range g.tilesFor(bounds) {
		g.tile(tp).ops = append(g.tile(tp).ops, op)
	}
}

// AddObject stages obj's addition to every tile its bounds overlap.
// Adding an ID that is already present in a tile overwrites its prior
// geometry there.
func (g *Guard) AddObject(obj shape.Object) {
	bounds := obj.Shape.WorldBounds()
	tris := obj.Shape.Triangles(nil)
	id := obj.ID
	avoid := obj.Avoid
	g.record(bounds, func(m *RecastMesh) {
		m.Objects[id] = objectEntry{bounds: bounds, triangles: tris, avoid: avoid}
	})
}

// UpdateObject stages replacing obj's geometry. It is equivalent to
// RemoveObject followed by AddObject, except it also correctly retracts
// the object from tiles its old bounds covered but its new bounds no
// longer do.
func (g *Guard) UpdateObject(oldBounds d3.Rectangle, obj shape.Object) {
	id := obj.ID
	g.record(oldBounds, func(m *RecastMesh) {
		delete(m.Objects, id)
	})
	g.AddObject(obj)
}

// RemoveObject stages id's removal from every tile its last known
// bounds overlapped.
func (g *Guard) RemoveObject(id shape.ObjectID, bounds d3.Rectangle) {
	g.record(bounds, func(m *RecastMesh) {
		delete(m.Objects, id)
	})
}

// AddWater stages w's addition to every tile its (already clamped)
// bounds overlap. A tile may hold at most one water plane at a time
// (I2): if a tile already carries a different ID, w is rejected there
// (a no-op against that tile) rather than added alongside it. Re-adding
// under the same ID already present replaces its entry.
func (g *Guard) AddWater(w WaterPlane) {
	g.record(w.Bounds, func(m *RecastMesh) {
		for id := range m.Water {
			if id != w.ID {
				return
			}
		}
		m.Water[w.ID] = w
	})
}

// RemoveWater stages removal of the water plane id from every tile
// bounds overlapped.
func (g *Guard) RemoveWater(id shape.ObjectID, bounds d3.Rectangle) {
	g.record(bounds, func(m *RecastMesh) {
		delete(m.Water, id)
	})
}

// AddHeightfield stages hf's addition to every tile its bounds overlap.
// A tile may hold at most one heightfield at a time (I2): if a tile
// already carries a different ID, hf is rejected there (a no-op against
// that tile) rather than added alongside it. Re-adding under the same
// ID already present replaces its entry.
func (g *Guard) AddHeightfield(hf Heightfield) {
	g.record(hf.Bounds, func(m *RecastMesh) {
		for id := range m.Heightfields {
			if id != hf.ID {
				return
			}
		}
		m.Heightfields[hf.ID] = hf
	})
}

// RemoveHeightfield stages removal of the heightfield id from every
// tile bounds overlapped.
func (g *Guard) RemoveHeightfield(id shape.ObjectID, bounds d3.Rectangle) {
	g.record(bounds, func(m *RecastMesh) {
		delete(m.Heightfields, id)
	})
}

// AffectedTiles returns every tile this guard has staged an edit
// against, in no particular order.
func (g *Guard) AffectedTiles() []tilemath.TilePosition {
	out := make([]tilemath.TilePosition, 0, len(g.pending))
	for tp := range g.pending {
		out = append(out, tp)
	}
	return out
}

// Commit applies every staged edit atomically per tile and returns the
// set of tiles whose rasterizable content actually changed. A tile
// whose edits cancel out to the same content as before (P6: oscillating
// geometry) still has its Version.Revision advanced, visible via
// Cache.Version, but is omitted from the returned ChangeSet.
func (g *Guard) Commit() ChangeSet {
	c := g.cache
	c.mu.Lock()
	defer c.mu.Unlock()

	changes := make(ChangeSet, len(g.pending))
	for tp, pend := range g.pending {
		e, ok := c.tiles[tp]
		if !ok {
			e = &tileEntry{mesh: RecastMesh{
				Objects:      make(map[shape.ObjectID]objectEntry),
				Water:        make(map[shape.ObjectID]WaterPlane),
				Heightfields: make(map[shape.ObjectID]Heightfield),
			}}
			c.tiles[tp] = e
		}
		pend.apply(&e.mesh)

		newHash := e.mesh.contentHash()
		changed := newHash != e.hash
		gen := e.mesh.Version.Generation
		if changed {
			gen++
		}
		e.mesh.Version = Version{Generation: gen, Revision: e.mesh.Version.Revision + 1}
		e.hash = newHash

		if changed {
			changes[tp] = e.mesh.Version
		}
	}
	g.pending = make(map[tilemath.TilePosition]*pendingTile)
	return changes
}
