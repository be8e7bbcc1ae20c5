package navigator

// Status is the façade's query result code (spec §4.7/§7). It is
// deliberately a distinct type from detour.Status: the façade's status
// vocabulary is about navmesh coverage and search outcome, not about
// the binary tile format detour.Status reports on.
type Status int

const (
	// StatusSuccess indicates the query fully succeeded.
	StatusSuccess Status = iota
	// StatusPartialPath indicates only a prefix of the path was
	// reachable; the caller may still consume it.
	StatusPartialPath
	// StatusStartPolygonNotFound indicates the start position is not on
	// (or near enough to) any walkable tile.
	StatusStartPolygonNotFound
	// StatusEndPolygonNotFound indicates the end position is not on (or
	// near enough to) any walkable tile.
	StatusEndPolygonNotFound
	// StatusNavMeshNotFound indicates the agent has no navmesh tiles at
	// all yet (no prior Update ever built one).
	StatusNavMeshNotFound
	// StatusTargetPolygonNotFound indicates a random-point or
	// nearest-position query found nothing within its search bounds.
	StatusTargetPolygonNotFound
	// StatusMoveAlongSurfaceFailed surfaces a rare internal detour
	// failure; callers typically retry.
	StatusMoveAlongSurfaceFailed
	// StatusTimeout indicates Wait's deadline elapsed before its
	// condition held.
	StatusTimeout
	// StatusCancelled indicates Wait returned because of a shutdown
	// signal (Navigator.Close), not because its
	// condition was ever satisfied.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartialPath:
		return "partial-path"
	case StatusStartPolygonNotFound:
		return "start-polygon-not-found"
	case StatusEndPolygonNotFound:
		return "end-polygon-not-found"
	case StatusNavMeshNotFound:
		return "navmesh-not-found"
	case StatusTargetPolygonNotFound:
		return "target-polygon-not-found"
	case StatusMoveAlongSurfaceFailed:
		return "move-along-surface-failed"
	case StatusTimeout:
		return "timeout"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
