package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/shape"
)

const quadOBJ = `
v 0 0 0
v 10 0 0
v 10 0 10
v 0 0 10
f 1 2 3 4
`

func writeOBJ(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.obj")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOBJTrianglesFanTriangulatesQuad(t *testing.T) {
	tris, err := loadOBJTriangles(writeOBJ(t, quadOBJ))
	require.NoError(t, err)
	require.Len(t, tris, 2, "a 4-vertex face fans into 2 triangles")

	for _, tr := range tris {
		assert.Equal(t, navconf.AreaGround, tr.Area)
		assert.Equal(t, d3.Vec3{0, 0, 0}, tr.A, "every fan triangle shares the face's first vertex")
	}
	assert.Equal(t, d3.Vec3{10, 0, 0}, tris[0].B)
	assert.Equal(t, d3.Vec3{10, 0, 10}, tris[0].C)
	assert.Equal(t, d3.Vec3{10, 0, 10}, tris[1].B)
	assert.Equal(t, d3.Vec3{0, 0, 10}, tris[1].C)
}

func TestLoadOBJTrianglesSkipsDegenerateFaces(t *testing.T) {
	tris, err := loadOBJTriangles(writeOBJ(t, "v 0 0 0\nv 1 0 0\nf 1 2\n"))
	require.NoError(t, err)
	assert.Empty(t, tris, "a 2-vertex face has no triangle to fan into")
}

func TestLoadOBJTrianglesMissingFile(t *testing.T) {
	_, err := loadOBJTriangles(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
}

func TestScriptedWaypointsEmptyForNoTriangles(t *testing.T) {
	assert.Nil(t, scriptedWaypoints(nil))
}

func TestScriptedWaypointsCapsAtFourAndSpreadsAcrossInput(t *testing.T) {
	tris := make([]shape.Triangle, 40)
	for i := range tris {
		tris[i] = shape.Triangle{A: d3.Vec3{float32(i), 0, 0}}
	}

	waypoints := scriptedWaypoints(tris)
	assert.Len(t, waypoints, 4)
	assert.Equal(t, d3.Vec3{0, 0, 0}, waypoints[0])
}

func TestScriptedWaypointsFewerTrianglesThanMax(t *testing.T) {
	tris := []shape.Triangle{
		{A: d3.Vec3{1, 0, 0}},
		{A: d3.Vec3{2, 0, 0}},
	}
	waypoints := scriptedWaypoints(tris)
	assert.Len(t, waypoints, 2)
}
