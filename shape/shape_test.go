package shape

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argonaut-engine/navmesh/navconf"
)

func TestRegistryAddGetRemove(t *testing.T) {
	r := NewRegistry()
	obj := Object{ID: NewObjectID(), Shape: NewTriMesh(nil)}

	r.Add(obj)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get(obj.ID)
	require.True(t, ok)
	assert.Equal(t, obj, got)

	r.Remove(obj.ID)
	assert.Equal(t, 0, r.Len())
	_, ok = r.Get(obj.ID)
	assert.False(t, ok)
}

func TestRegistryRemoveUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Remove(NewObjectID())
	assert.Equal(t, 0, r.Len())
}

func TestObjectIDStringIsNonEmptyAndUnique(t *testing.T) {
	id := NewObjectID()
	assert.NotEmpty(t, id.String())
	assert.NotEqual(t, id.String(), NewObjectID().String())
}

func TestNewTriMeshEmptyHasZeroBounds(t *testing.T) {
	tm := NewTriMesh(nil)
	assert.Equal(t, d3.Rectangle{}, tm.WorldBounds())
	assert.Empty(t, tm.Triangles(nil))
}

func TestNewTriMeshComputesBoundingBoxAcrossTriangles(t *testing.T) {
	tris := []Triangle{
		{A: d3.Vec3{0, 0, 0}, B: d3.Vec3{10, 0, 0}, C: d3.Vec3{0, 0, 10}, Area: navconf.AreaGround},
		{A: d3.Vec3{-5, 2, 3}, B: d3.Vec3{1, -1, 1}, C: d3.Vec3{4, 8, -2}, Area: navconf.AreaGround},
	}
	tm := NewTriMesh(tris)

	bounds := tm.WorldBounds()
	assert.Equal(t, d3.Vec3{-5, -1, -2}, bounds.Min)
	assert.Equal(t, d3.Vec3{10, 8, 10}, bounds.Max)
}

func TestTriMeshTrianglesAppendsToDst(t *testing.T) {
	tris := []Triangle{{A: d3.Vec3{0, 0, 0}, B: d3.Vec3{1, 0, 0}, C: d3.Vec3{0, 0, 1}}}
	tm := NewTriMesh(tris)

	dst := make([]Triangle, 1, 4)
	got := tm.Triangles(dst)

	require.Len(t, got, 2)
	assert.Equal(t, tris[0], got[1])
}

func TestTriMeshRetainsSliceNotCopy(t *testing.T) {
	tris := []Triangle{{A: d3.Vec3{0, 0, 0}, B: d3.Vec3{1, 0, 0}, C: d3.Vec3{0, 0, 1}}}
	tm := NewTriMesh(tris)

	tris[0].Area = navconf.AreaWater
	got := tm.Triangles(nil)
	require.Len(t, got, 1)
	assert.Equal(t, navconf.AreaWater, got[0].Area)
}
