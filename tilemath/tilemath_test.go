package tilemath

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/stretchr/testify/assert"
)

const edge = float32(64)

func TestWorldToTilePosFloorsTowardNegativeInfinity(t *testing.T) {
	assert.Equal(t, TilePosition{X: 0, Y: 0}, WorldToTilePos(d3.Vec3{0, 0, 0}, edge))
	assert.Equal(t, TilePosition{X: 0, Y: 0}, WorldToTilePos(d3.Vec3{63, 0, 63}, edge))
	assert.Equal(t, TilePosition{X: 1, Y: 0}, WorldToTilePos(d3.Vec3{64, 0, 0}, edge))
	assert.Equal(t, TilePosition{X: -1, Y: -1}, WorldToTilePos(d3.Vec3{-1, 0, -1}, edge))
}

func TestTilePositionBoundsSpansTileEdge(t *testing.T) {
	b := TilePosition{X: 1, Y: -1}.Bounds(edge)
	assert.Equal(t, float32(64), b.Min[0])
	assert.Equal(t, float32(128), b.Max[0])
	assert.Equal(t, float32(-64), b.Min[2])
	assert.Equal(t, float32(0), b.Max[2])
}

func TestTilesOverlappingBoundsSingleTile(t *testing.T) {
	b := TilePosition{}.Bounds(edge)
	tiles := TilesOverlappingBounds(b, edge)
	assert.ElementsMatch(t, []TilePosition{{}}, tiles)
}

func TestTilesOverlappingBoundsSpansMultipleTiles(t *testing.T) {
	b := d3.Rectangle{Min: d3.Vec3{-10, 0, -10}, Max: d3.Vec3{70, 0, 10}}
	tiles := TilesOverlappingBounds(b, edge)
	assert.ElementsMatch(t, []TilePosition{
		{X: -1, Y: -1}, {X: -1, Y: 0},
		{X: 0, Y: -1}, {X: 0, Y: 0},
		{X: 1, Y: -1}, {X: 1, Y: 0},
	}, tiles)
}

func TestClampInfiniteExtentClampsOversizedBounds(t *testing.T) {
	huge := d3.Rectangle{Min: d3.Vec3{-1e6, 0, -1e6}, Max: d3.Vec3{1e6, 0, 1e6}}
	clamped := ClampInfiniteExtent(huge, d3.Vec3{0, 0, 0}, 100)
	assert.Equal(t, float32(200), clamped.Dx())
	assert.Equal(t, float32(200), clamped.Dz())
}

func TestClampInfiniteExtentLeavesSmallBoundsUntouched(t *testing.T) {
	small := d3.Rectangle{Min: d3.Vec3{-1, 0, -1}, Max: d3.Vec3{1, 0, 1}}
	assert.Equal(t, small, ClampInfiniteExtent(small, d3.Vec3{0, 0, 0}, 100))
}

func TestDistance2DIgnoresNothingButXAndY(t *testing.T) {
	a := TilePosition{X: 0, Y: 0}
	b := TilePosition{X: 3, Y: 4}
	assert.InDelta(t, 5.0, a.Distance2D(b), 1e-9)
}

func TestRingRadiusZeroIsCenter(t *testing.T) {
	center := TilePosition{X: 2, Y: 2}
	assert.Equal(t, []TilePosition{center}, Ring(center, 0))
}

func TestRingRadiusOneHasEightTiles(t *testing.T) {
	ring := Ring(TilePosition{}, 1)
	assert.Len(t, ring, 8)
	for _, tp := range ring {
		assert.True(t, tp.X == -1 || tp.X == 1 || tp.Y == -1 || tp.Y == 1)
	}
}

func TestDiskAccumulatesEveryRingUpToRadius(t *testing.T) {
	disk := Disk(TilePosition{}, 2)
	// center (1) + ring1 (8) + ring2 (16) = 25, the full 5x5 square.
	assert.Len(t, disk, 25)

	seen := make(map[TilePosition]bool)
	for _, tp := range disk {
		seen[tp] = true
	}
	for x := int32(-2); x <= 2; x++ {
		for y := int32(-2); y <= 2; y++ {
			assert.True(t, seen[TilePosition{X: x, Y: y}], "disk should contain (%d,%d)", x, y)
		}
	}
}
