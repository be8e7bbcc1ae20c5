// Package tilemath converts between world coordinates and the integer
// tile grid the rest of the navigation-mesh manager is indexed by. A
// tile is a TileEdgeSize x TileEdgeSize world-unit square column,
// unbounded in Y.
package tilemath

import (
	"math"

	"github.com/arl/gogeo/f32/d3"
)

// TilePosition addresses one tile column in a worldspace's infinite
// grid. It has no vertical component (its Y field indexes the world Z
// axis): tiles stack the full vertical extent of the world.
type TilePosition struct {
	X, Y int32
}

// WorldToTilePos returns the tile containing world position p, given
// the worldspace's tile edge length.
func WorldToTilePos(p d3.Vec3, tileEdgeSize float32) TilePosition {
	return TilePosition{
		X: int32(math.Floor(float64(p[0] / tileEdgeSize))),
		Y: int32(math.Floor(float64(p[2] / tileEdgeSize))),
	}
}

// Bounds returns the world-space rectangle covered by tp, assuming tiles
// span the full height range [-65536, 65536] (recast tiles are bounded in Y
// only by the geometry fed into them, not by the tile grid itself).
func (tp TilePosition) Bounds(tileEdgeSize float32) d3.Rectangle {
	const halfHeight = 1 << 16
	minX, minZ := float32(tp.X)*tileEdgeSize, float32(tp.Y)*tileEdgeSize
	return d3.Rectangle{
		Min: d3.Vec3{minX, -halfHeight, minZ},
		Max: d3.Vec3{minX + tileEdgeSize, halfHeight, minZ + tileEdgeSize},
	}
}

// TilesOverlappingBounds enumerates every tile whose column intersects
// the XZ projection of bounds, inclusive of tiles the bounds only
// partially cover.
func TilesOverlappingBounds(bounds d3.Rectangle, tileEdgeSize float32) []TilePosition {
	min := WorldToTilePos(bounds.Min, tileEdgeSize)
	max := WorldToTilePos(d3.Vec3{bounds.Max[0], bounds.Max[1], bounds.Max[2]}, tileEdgeSize)

	var out []TilePosition
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			out = append(out, TilePosition{X: x, Y: y})
		}
	}
	return out
}

// ClampInfiniteExtent replaces an unbounded or extremely large rectangle
// (as produced by an "infinite" water plane) with one clipped to a
// radius around center, wide enough to cover any practical agent
// perception range. Water sheets are otherwise defined to span the
// entire worldspace, which would otherwise force every tile in the grid
// to depend on every water object.
func ClampInfiniteExtent(bounds d3.Rectangle, center d3.Vec3, maxRadius float32) d3.Rectangle {
	clamp := d3.RectFromSphere(center, maxRadius)
	if bounds.Dx() > clamp.Dx() || bounds.Dz() > clamp.Dz() {
		return clamp
	}
	return bounds
}

// Distance2D returns the planar (XZ) distance between two tile
// positions, measured in tiles.
func (tp TilePosition) Distance2D(other TilePosition) float64 {
	dx := float64(tp.X - other.X)
	dy := float64(tp.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Ring returns every tile position whose Chebyshev distance from center
// is exactly radius (radius 0 returns just center).
func Ring(center TilePosition, radius int32) []TilePosition {
	if radius == 0 {
		return []TilePosition{center}
	}
	var out []TilePosition
	for x := -radius; x <= radius; x++ {
		for y := -radius; y <= radius; y++ {
			if x != -radius && x != radius && y != -radius && y != radius {
				continue
			}
			out = append(out, TilePosition{X: center.X + x, Y: center.Y + y})
		}
	}
	return out
}

// Disk returns every tile position within radius tiles of center
// (Chebyshev distance), center first, ring 1, ring 2, and so on.
func Disk(center TilePosition, radius int32) []TilePosition {
	out := make([]TilePosition, 0, (2*radius+1)*(2*radius+1))
	for r := int32(0); r <= radius; r++ {
		out = append(out, Ring(center, r)...)
	}
	return out
}
