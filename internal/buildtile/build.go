// Package buildtile implements the external tile builder contract:
// turning one tile's recastcache.RecastMesh into the binary navmesh
// blob detour.NavMesh.AddTile consumes.
//
// The teacher's recast package never finished porting
// rcBuildCompactHeightfield (CompactHeightfield's fields are
// unexported and no function anywhere constructs one), so the
// voxel-based rasterize/region/contour pipeline it hosts cannot
// actually run end to end. Build instead turns each accepted input
// triangle directly into one navmesh polygon, welding shared vertices
// so adjacent triangles stay connected, and leans on
// detour.CreateNavMeshData's documented ability to auto-derive a
// trivial per-polygon detail mesh when none is supplied. See
// DESIGN.md for the full rationale.
package buildtile

import (
	"fmt"
	"math"

	"github.com/arl/gogeo/f32/d3"

	"github.com/argonaut-engine/navmesh/detour"
	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/recastcache"
)

// nvp is the maximum vertex count per output polygon. Every polygon
// Build emits is a single input triangle, so 3 is exact; nothing here
// merges coplanar triangles into larger polygons the way recast's own
// BuildPolyMesh would.
const nvp = 3

// Result is a tile's build output. A tile with no walkable geometry at
// all builds to a nil Data, the canonical "no navmesh here" value.
type Result struct {
	Data []byte
}

// Build runs the external tile builder against mesh, the geometry
// known to overlap the tile at (tx, ty) spanning bounds.
func Build(mesh *recastcache.RecastMesh, cfg navconf.RecastConfig, bounds d3.Rectangle, tx, ty int32) (*Result, error) {
	if mesh.Empty() {
		return &Result{}, nil
	}

	tris := collectTriangles(mesh, bounds)
	if len(tris) == 0 {
		return &Result{}, nil
	}

	bmin := [3]float32{bounds.Min[0], bounds.Min[1], bounds.Min[2]}
	bmax := [3]float32{bounds.Max[0], bounds.Max[1], bounds.Max[2]}

	verts, polys, areas := weldTriangles(tris, bmin, cfg.CellSize, cfg.CellHeight)
	if len(areas) == 0 {
		return &Result{}, nil
	}
	linkAdjacency(polys, len(areas))

	flags := make([]uint16, len(areas))
	for i, a := range areas {
		flags[i] = uint16(polyFlagsForArea(navconf.AreaType(a)))
	}

	params := &detour.NavMeshCreateParams{
		Verts:          verts,
		VertCount:      int32(len(verts) / 3),
		Polys:          polys,
		PolyFlags:      flags,
		PolyAreas:      areas,
		PolyCount:      int32(len(areas)),
		Nvp:            nvp,
		TileX:          tx,
		TileY:          ty,
		TileLayer:      0,
		BMin:           bmin,
		BMax:           bmax,
		WalkableHeight: cfg.WalkableHeight,
		WalkableRadius: cfg.WalkableRadius,
		WalkableClimb:  cfg.WalkableClimb,
		Cs:             cfg.CellSize,
		Ch:             cfg.CellHeight,
		BuildBvTree:    true,
	}

	data, err := detour.CreateNavMeshData(params)
	if err != nil {
		return nil, fmt.Errorf("buildtile: building tile (%d,%d): %v", tx, ty, err)
	}
	return &Result{Data: data}, nil
}

// polyFlagsForArea maps an area to the navigation flags a polygon of
// that area satisfies. It intentionally reuses navconf.NavigationFlags'
// bit values directly as detour poly flags, so a navconf.NavigationFlags
// value can be used as a detour include-flags mask with no translation.
func polyFlagsForArea(a navconf.AreaType) navconf.NavigationFlags {
	switch a {
	case navconf.AreaGround:
		return navconf.FlagWalk
	case navconf.AreaWater:
		return navconf.FlagSwim
	case navconf.AreaDoor:
		return navconf.FlagWalk | navconf.FlagOpenDoor
	case navconf.AreaPathgrid:
		return navconf.FlagUsePathgrid
	default:
		return 0
	}
}

type triangle struct {
	a, b, c d3.Vec3
	area    navconf.AreaType
}

// collectTriangles gathers every triangle this tile's build should
// rasterize: object geometry as RecastMesh.Triangles returns it (whole
// triangles, not clipped; avoid-shape triangles arrive tagged
// navconf.AreaNull), plus water planes and heightfield cells, each
// clipped to bounds.
func collectTriangles(mesh *recastcache.RecastMesh, bounds d3.Rectangle) []triangle {
	var out []triangle

	objTris := mesh.Triangles(nil)
	for _, t := range objTris {
		out = append(out, triangle{a: t.A, b: t.B, c: t.C, area: t.Area})
	}

	for _, w := range mesh.Water {
		clipped := w.Bounds.Intersect(bounds)
		if clipped.Empty() {
			continue
		}
		out = append(out, quadTriangles(clipped, w.Height, navconf.AreaWater)...)
	}

	for _, hf := range mesh.Heightfields {
		out = append(out, heightfieldTriangles(hf, bounds)...)
	}

	return out
}

func quadTriangles(bounds d3.Rectangle, height float32, area navconf.AreaType) []triangle {
	p00 := d3.Vec3{bounds.Min[0], height, bounds.Min[2]}
	p10 := d3.Vec3{bounds.Max[0], height, bounds.Min[2]}
	p11 := d3.Vec3{bounds.Max[0], height, bounds.Max[2]}
	p01 := d3.Vec3{bounds.Min[0], height, bounds.Max[2]}
	return []triangle{
		{a: p00, b: p10, c: p11, area: area},
		{a: p00, b: p11, c: p01, area: area},
	}
}

// heightfieldTriangles rasterizes a heightfield as one flat quad per
// cell at its max height, tagged ground. This loses the per-cell
// min/max thickness a real voxel pipeline would use to detect
// under-hangs; see DESIGN.md.
func heightfieldTriangles(hf recastcache.Heightfield, bounds d3.Rectangle) []triangle {
	if hf.RowSize <= 0 || len(hf.Cells) == 0 {
		return nil
	}
	rows := len(hf.Cells) / hf.RowSize
	cw := hf.Bounds.Dx() / float32(hf.RowSize)
	ch := hf.Bounds.Dz() / float32(rows)

	var out []triangle
	for row := 0; row < rows; row++ {
		for col := 0; col < hf.RowSize; col++ {
			cell := hf.Cells[row*hf.RowSize+col]
			cellBounds := d3.Rectangle{
				Min: d3.Vec3{hf.Bounds.Min[0] + float32(col)*cw, cell.MinHeight, hf.Bounds.Min[2] + float32(row)*ch},
				Max: d3.Vec3{hf.Bounds.Min[0] + float32(col+1)*cw, cell.MaxHeight, hf.Bounds.Min[2] + float32(row+1)*ch},
			}
			clipped := cellBounds.Intersect(bounds)
			if clipped.Dx() <= 0 || clipped.Dz() <= 0 {
				continue
			}
			out = append(out, quadTriangles(clipped, cell.MaxHeight, navconf.AreaGround)...)
		}
	}
	return out
}

type vkey [3]int32

func quantizeVert(v d3.Vec3, bmin [3]float32, cs, ch float32) vkey {
	return vkey{
		int32(math.Round(float64((v[0] - bmin[0]) / cs))),
		int32(math.Round(float64((v[1] - bmin[1]) / ch))),
		int32(math.Round(float64((v[2] - bmin[2]) / cs))),
	}
}

// weldTriangles flattens tris into a deduplicated vertex buffer and a
// Polys array in detour.NavMeshCreateParams format (vertex indices in
// the first nvp slots per polygon, MESH_NULL_IDX padding, neighbour
// slots left for linkAdjacency to fill in).
func weldTriangles(tris []triangle, bmin [3]float32, cs, ch float32) (verts []uint16, polys []uint16, areas []uint8) {
	index := make(map[vkey]uint16)

	vertIndex := func(v d3.Vec3) uint16 {
		k := quantizeVert(v, bmin, cs, ch)
		if i, ok := index[k]; ok {
			return i
		}
		i := uint16(len(verts) / 3)
		verts = append(verts, clampCoord(k[0]), clampCoord(k[1]), clampCoord(k[2]))
		index[k] = i
		return i
	}

	polys = make([]uint16, 0, len(tris)*2*nvp)
	areas = make([]uint8, 0, len(tris))

	for _, t := range tris {
		ia, ib, ic := vertIndex(t.a), vertIndex(t.b), vertIndex(t.c)
		if ia == ib || ib == ic || ia == ic {
			continue // degenerate after quantization
		}
		polys = append(polys, ia, ib, ic)
		polys = append(polys, detour.MESH_NULL_IDX, detour.MESH_NULL_IDX, detour.MESH_NULL_IDX)
		areas = append(areas, uint8(t.area))
	}

	return verts, polys, areas
}

func clampCoord(v int32) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xfffe {
		return 0xfffe
	}
	return uint16(v)
}

// linkAdjacency fills in each polygon's neighbour slots (the second nvp
// entries per polygon) by matching shared edges between welded
// triangles: two triangles that share both endpoints of an edge are
// each other's neighbour across it.
func linkAdjacency(polys []uint16, polyCount int) {
	type edgeEnd struct {
		poly, edge int
	}
	edges := make(map[[2]uint16]edgeEnd)

	for p := 0; p < polyCount; p++ {
		base := p * 2 * nvp
		for e := 0; e < nvp; e++ {
			v0 := polys[base+e]
			v1 := polys[base+(e+1)%nvp]
			k := edgeKey(v0, v1)
			if other, ok := edges[k]; ok && other.poly != p {
				polys[base+nvp+e] = uint16(other.poly)
				obase := other.poly * 2 * nvp
				polys[obase+nvp+other.edge] = uint16(p)
			} else {
				edges[k] = edgeEnd{poly: p, edge: e}
			}
		}
	}
}

func edgeKey(a, b uint16) [2]uint16 {
	if a < b {
		return [2]uint16{a, b}
	}
	return [2]uint16{b, a}
}
