package navigator

import (
	"math"
	"math/rand"

	"github.com/arl/gogeo/f32/d3"

	"github.com/argonaut-engine/navmesh/detour"
	"github.com/argonaut-engine/navmesh/navconf"
)

// maxPathPolys bounds how many polygons FindPath/FindStraightPath will
// ever visit in one call, matching detour/path_test.go's own buffer
// sizing convention (a generous fixed buffer rather than a growable
// one, since detour's own API is buffer-based).
const maxPathPolys = 256

// findNearestExtents is the half-extent box FindNearestPoly searches
// around a point, sized to comfortably straddle one tile's typical
// vertical variation without crossing into an unrelated polygon.
var findNearestExtents = d3.Vec3{2, 4, 2}

// filterFor builds a detour.StandardQueryFilter from the façade's
// navigation-flags/area-costs vocabulary: navconf.NavigationFlags' bit
// values are used directly as detour include flags (buildtile.Build
// already encodes each polygon's PolyFlags the same way), so no
// exclude-side translation is needed beyond "everything not included is
// excluded".
func filterFor(flags navconf.NavigationFlags, costs navconf.AreaCosts) *detour.StandardQueryFilter {
	f := detour.NewStandardQueryFilter()
	f.SetIncludeFlags(uint16(flags))
	f.SetExcludeFlags(0)
	for area, cost := range costs {
		f.SetAreaCost(int32(area), cost)
	}
	return f
}

// FindPath runs A* over agent's resident navmesh from start to end,
// honouring flags/areaCosts, and appends the resulting path points to
// sink. endTolerance lets the end polygon be the closest walkable
// polygon within endTolerance of end rather than requiring end to lie
// exactly over it.
func (n *Navigator) FindPath(agent navconf.AgentBounds, start, end d3.Vec3, flags navconf.NavigationFlags, costs navconf.AreaCosts, endTolerance float32, sink *[]d3.Vec3) Status {
	mesh, ok := n.agentMesh(agent)
	if !ok {
		return StatusNavMeshNotFound
	}

	filter := filterFor(flags, costs)
	extents := findNearestExtents

	mesh.mu.Lock()
	query := mesh.query
	mesh.mu.Unlock()

	stStart, startRef, startPt := query.FindNearestPoly(start, extents, filter)
	if detour.StatusFailed(stStart) || startRef == 0 {
		return StatusStartPolygonNotFound
	}

	endExtents := extents
	if endTolerance > 0 {
		endExtents = d3.Vec3{endTolerance, extents[1], endTolerance}
	}
	stEnd, endRef, endPt := query.FindNearestPoly(end, endExtents, filter)
	if detour.StatusFailed(stEnd) || endRef == 0 {
		return StatusEndPolygonNotFound
	}

	path := make([]detour.PolyRef, maxPathPolys)
	pathCount, st := query.FindPath(startRef, endRef, startPt, endPt, filter, path)
	if detour.StatusFailed(st) {
		return StatusMoveAlongSurfaceFailed
	}
	path = path[:pathCount]

	maxStraight := int32(maxPathPolys)
	straight := make([]d3.Vec3, maxStraight)
	for i := range straight {
		straight[i] = d3.NewVec3()
	}
	straightFlags := make([]uint8, maxStraight)
	straightRefs := make([]detour.PolyRef, maxStraight)

	straightCount, st := query.FindStraightPath(startPt, endPt, path, straight, straightFlags, straightRefs, 0)
	if detour.StatusFailed(st) {
		return StatusMoveAlongSurfaceFailed
	}

	*sink = append(*sink, straight[:straightCount]...)

	if detour.StatusDetail(st, uint32(detour.PartialResult)) || path[len(path)-1] != endRef {
		return StatusPartialPath
	}
	return StatusSuccess
}

// Raycast performs a straight-line walkability test from start toward
// end over agent's navmesh, returning the furthest walkable point along
// the segment.
func (n *Navigator) Raycast(agent navconf.AgentBounds, start, end d3.Vec3, flags navconf.NavigationFlags) (d3.Vec3, Status) {
	mesh, ok := n.agentMesh(agent)
	if !ok {
		return nil, StatusNavMeshNotFound
	}

	filter := filterFor(flags, navconf.DefaultAreaCosts())

	mesh.mu.Lock()
	query := mesh.query
	mesh.mu.Unlock()

	st, startRef, startPt := query.FindNearestPoly(start, findNearestExtents, filter)
	if detour.StatusFailed(st) || startRef == 0 {
		return nil, StatusStartPolygonNotFound
	}

	hit, rst := query.Raycast(startRef, startPt, end, filter, 0, 0)
	if detour.StatusFailed(rst) {
		return nil, StatusMoveAlongSurfaceFailed
	}

	if hit.T >= math.MaxFloat32 {
		return end, StatusSuccess
	}
	out := d3.NewVec3()
	d3.Vec3Lerp(out, startPt, end, hit.T)
	return out, StatusPartialPath
}

// FindNearestNavMeshPosition returns the nearest walkable position to
// pos within searchHalfExtents, over agent's navmesh.
func (n *Navigator) FindNearestNavMeshPosition(agent navconf.AgentBounds, pos, searchHalfExtents d3.Vec3, flags navconf.NavigationFlags) (d3.Vec3, Status) {
	mesh, ok := n.agentMesh(agent)
	if !ok {
		return nil, StatusNavMeshNotFound
	}

	filter := filterFor(flags, navconf.DefaultAreaCosts())

	mesh.mu.Lock()
	query := mesh.query
	mesh.mu.Unlock()

	st, ref, pt := query.FindNearestPoly(pos, searchHalfExtents, filter)
	if detour.StatusFailed(st) || ref == 0 {
		return nil, StatusTargetPolygonNotFound
	}
	return pt, StatusSuccess
}

// findRandomPointTries bounds the rejection-sampling loop
// FindRandomPointAroundCircle runs: absent from the teacher's detour
// port (upstream recastnavigation's findRandomPointAroundCircle was
// never translated), so this samples uniformly over the disc and
// keeps the first sample FindNearestPoly resolves to a
// real polygon, rather than reimplementing the area-weighted polygon
// walk upstream uses.
const findRandomPointTries = 32

// FindRandomPointAroundCircle returns a uniformly-sampled walkable
// point within radius of center, over agent's navmesh, or
// StatusTargetPolygonNotFound if no walkable polygon is reachable
// within findRandomPointTries attempts.
func (n *Navigator) FindRandomPointAroundCircle(agent navconf.AgentBounds, center d3.Vec3, radius float32, flags navconf.NavigationFlags, rng *rand.Rand) (d3.Vec3, Status) {
	mesh, ok := n.agentMesh(agent)
	if !ok {
		return nil, StatusNavMeshNotFound
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	filter := filterFor(flags, navconf.DefaultAreaCosts())
	extents := d3.Vec3{radius * 0.1, findNearestExtents[1], radius * 0.1}

	mesh.mu.Lock()
	query := mesh.query
	mesh.mu.Unlock()

	for i := 0; i < findRandomPointTries; i++ {
		// Uniform sample in the disc of radius, via sqrt(u) to avoid
		// centre bias.
		theta := rng.Float64() * 2 * math.Pi
		r := radius * float32(math.Sqrt(rng.Float64()))
		candidate := d3.Vec3{
			center[0] + r*float32(math.Cos(theta)),
			center[1],
			center[2] + r*float32(math.Sin(theta)),
		}

		st, ref, pt := query.FindNearestPoly(candidate, extents, filter)
		if detour.StatusFailed(st) || ref == 0 {
			continue
		}
		return pt, StatusSuccess
	}
	return nil, StatusTargetPolygonNotFound
}

// agentMesh resolves bounds to its live agentNavmesh, refusing agents
// with no resident tiles (spec: findPath without prior update returns
// NavMeshNotFound).
func (n *Navigator) agentMesh(bounds navconf.AgentBounds) (*agentNavmesh, bool) {
	h := bounds.Hash()

	n.mu.Lock()
	e, ok := n.agents[h]
	n.mu.Unlock()
	if !ok || e.mesh.isCancelled() {
		return nil, false
	}
	if e.mesh.Store().Len() == 0 {
		return nil, false
	}
	return e.mesh, true
}
