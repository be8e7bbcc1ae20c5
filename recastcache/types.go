// Package recastcache holds, per tile, the triangulated geometry that
// feeds the external tile builder, and applies updates to it through a
// transactional guard so a reader never observes a half-built tile.
package recastcache

import (
	"github.com/arl/gogeo/f32/d3"

	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/shape"
)

// Version pairs a monotonically increasing generation (bumped whenever
// the tile's content actually changes) with a revision (bumped on every
// commit attempt, changed or not). Schedulers key coalescing off
// Revision; navigator.Update counts a built tile as current only when
// its whole Version equals the cache's.
type Version struct {
	Generation uint64
	Revision   uint64
}

// Newer reports whether v is strictly ahead of other in generation.
func (v Version) Newer(other Version) bool { return v.Generation > other.Generation }

// WaterPlane is a horizontal water surface contributed to a tile,
// clipped to a practical radius around the tile by tilemath before it
// reaches the cache (an unclamped "infinite" ocean sheet would make
// every tile depend on every water object).
type WaterPlane struct {
	ID     shape.ObjectID
	Bounds d3.Rectangle
	Height float32
}

// HeightfieldCell is one sample of a heightfield collision object
// (terrain) contributed to a tile.
type HeightfieldCell struct {
	MinHeight, MaxHeight float32
}

// Heightfield is a regular grid of HeightfieldCell covering Bounds,
// RowSize cells wide.
type Heightfield struct {
	ID      shape.ObjectID
	Bounds  d3.Rectangle
	RowSize int
	Cells   []HeightfieldCell
}

// RecastMesh is the fully-resolved geometry input for one tile: every
// object, water plane and heightfield currently believed to overlap it,
// plus the Version this snapshot was produced at. It is what
// internal/buildtile consumes to produce a tile's binary navmesh data.
type RecastMesh struct {
	Version Version

	Objects      map[shape.ObjectID]objectEntry
	Water        map[shape.ObjectID]WaterPlane
	Heightfields map[shape.ObjectID]Heightfield
}

type objectEntry struct {
	bounds    d3.Rectangle
	triangles []shape.Triangle
	avoid     bool
}

// Triangles returns every triangle a tile's RecastMesh would rasterize,
// object and avoid-shape geometry alike, with avoid-shape triangles
// retagged navconf.AreaNull. Water and heightfields are handled
// separately by internal/buildtile since they rasterize under different
// rules.
func (m *RecastMesh) Triangles(dst []shape.Triangle) []shape.Triangle {
	for _, obj := range m.Objects {
		if obj.avoid {
			for _, t := range obj.triangles {
				t.Area = navconf.AreaNull
				dst = append(dst, t)
			}
			continue
		}
		dst = append(dst, obj.triangles...)
	}
	return dst
}

// Empty reports whether m contributes any geometry at all. Used to
// implement the builder's early return: an empty tile never needs to be
// rasterized, and its build output is the canonical "no navmesh here"
// zero value rather than a cache miss.
func (m *RecastMesh) Empty() bool {
	return len(m.Objects) == 0 && len(m.Water) == 0 && len(m.Heightfields) == 0
}

// contentHash returns a value that is equal for two RecastMesh
// snapshots whenever their rasterizable content is byte-for-byte
// identical, independent of the order objects were added in. It is used
// to satisfy the requirement that geometry oscillating back to a
// previous state does not bump the tile's generation (see Cache.Commit).
func (m *RecastMesh) contentHash() contentHash {
	h := newContentHasher()
	for id, obj := range m.Objects {
		h.addObject(id, obj)
	}
	for id, w := range m.Water {
		h.addWater(id, w)
	}
	for id, hf := range m.Heightfields {
		h.addHeightfield(id, hf)
	}
	return h.sum()
}

// AreaType surfaces navconf's area vocabulary for callers assembling
// Triangle slices without importing navconf directly.
type AreaType = navconf.AreaType
