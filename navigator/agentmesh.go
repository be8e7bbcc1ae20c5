package navigator

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/argonaut-engine/navmesh/detour"
	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/recastcache"
	"github.com/argonaut-engine/navmesh/tilemath"
	"github.com/argonaut-engine/navmesh/tilestore"
)

// maxTilesPerAgent bounds the detour.NavMesh tile table size. It must
// exceed navconf.Config.MaxTilesNumber. Together with maxPolysPerTile it
// leaves detour.NavMesh.Init the 8 salt bits it requires
// (32 - 10 tile bits - 14 poly bits; see detour.NavMesh.Init).
const maxTilesPerAgent = 1 << 10

// maxPolysPerTile bounds how many polygons a single tile's navmesh may
// contribute to the PolyRef address space; internal/buildtile never
// emits more than one polygon per input triangle, so this is generous
// headroom rather than a tight fit.
const maxPolysPerTile = 1 << 14

// maxSearchNodes bounds detour.NewNavMeshQuery's node pool.
const maxSearchNodes = 4096

// agentNavmesh is one agent bounds' live query state: a real
// detour.NavMesh kept in lockstep with its tilestore.Store (every
// CommitTile is mirrored into AddTile/RemoveTile), queried through the
// teacher's own, unmodified detour.NavMeshQuery. Keeping one genuine
// NavMesh per agent, rather than forking NavMeshQuery to read tile
// bytes out of tilestore.Record on every call, reuses the teacher's A*
// core, node pool and binary heap (detour/query.go, node.go,
// nodequeue.go) exactly as built. Tiles the store evicts or prunes are
// removed from the NavMesh on the next Navigator.Update.
type agentNavmesh struct {
	agentHash navconf.AgentBoundsHash
	bounds    navconf.AgentBounds

	cache        *recastcache.Cache
	store        *tilestore.Store
	recastConfig navconf.RecastConfig
	tileEdgeSize float32
	log          *zap.Logger

	mu       sync.Mutex
	nav      *detour.NavMesh
	query    *detour.NavMeshQuery
	tileRefs map[tilemath.TilePosition]detour.TileRef

	playerTile   atomic.Value // tilemath.TilePosition
	windowRadius atomic.Int32

	cancelled atomic.Bool
}

func newAgentNavmesh(hash navconf.AgentBoundsHash, bounds navconf.AgentBounds, cache *recastcache.Cache, cfg navconf.Config, log *zap.Logger) *agentNavmesh {
	m := &agentNavmesh{
		agentHash:    hash,
		bounds:       bounds,
		cache:        cache,
		store:        tilestore.New(cfg.MaxTilesNumber),
		recastConfig: cfg.Recast,
		tileEdgeSize: cfg.TileEdgeSize,
		log:          log,
		tileRefs:     make(map[tilemath.TilePosition]detour.TileRef),
	}
	m.playerTile.Store(tilemath.TilePosition{})

	nav := &detour.NavMesh{}
	params := &detour.NavMeshParams{
		Orig:       [3]float32{0, 0, 0},
		TileWidth:  cfg.TileEdgeSize,
		TileHeight: cfg.TileEdgeSize,
		MaxTiles:   maxTilesPerAgent,
		MaxPolys:   maxPolysPerTile,
	}
	if st := nav.Init(params); detour.StatusFailed(st) {
		log.Error("navmesh init failed", zap.Uint32("status", uint32(st)))
	}
	m.nav = nav

	st, q := detour.NewNavMeshQuery(nav, maxSearchNodes)
	if detour.StatusFailed(st) {
		log.Error("navmesh query init failed", zap.Uint32("status", uint32(st)))
	}
	m.query = q

	return m
}

// AgentHash implements updater.Navmesh.
func (m *agentNavmesh) AgentHash() navconf.AgentBoundsHash { return m.agentHash }

// Cache implements updater.Navmesh.
func (m *agentNavmesh) Cache() *recastcache.Cache { return m.cache }

// Store implements updater.Navmesh.
func (m *agentNavmesh) Store() *tilestore.Store { return m.store }

// RecastConfig implements updater.Navmesh.
func (m *agentNavmesh) RecastConfig() navconf.RecastConfig { return m.recastConfig }

// TileEdgeSize implements updater.Navmesh.
func (m *agentNavmesh) TileEdgeSize() float32 { return m.tileEdgeSize }

// PlayerTile implements updater.Navmesh.
func (m *agentNavmesh) PlayerTile() tilemath.TilePosition {
	return m.playerTile.Load().(tilemath.TilePosition)
}

// WindowRadius implements updater.Navmesh.
func (m *agentNavmesh) WindowRadius() int32 { return m.windowRadius.Load() }

// setWindow records the agent's current active window, consulted by
// Store()'s eviction policy on the next CommitTile/PruneOutsideWindow.
func (m *agentNavmesh) setWindow(playerTile tilemath.TilePosition, radius int32) {
	m.playerTile.Store(playerTile)
	m.windowRadius.Store(radius)
}

// AddTile implements updater.Navmesh: it installs data into the live
// detour.NavMesh, replacing any tile already resident at (tp.X, tp.Y).
func (m *agentNavmesh) AddTile(tp tilemath.TilePosition, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ref, ok := m.tileRefs[tp]; ok {
		m.nav.RemoveTile(ref)
		delete(m.tileRefs, tp)
	}
	if data == nil {
		return nil
	}

	st, ref := m.nav.AddTile(data, 0)
	if detour.StatusFailed(st) {
		return &buildStatusError{status: st}
	}
	m.tileRefs[tp] = ref
	return nil
}

// RemoveTile implements updater.Navmesh.
func (m *agentNavmesh) RemoveTile(tp tilemath.TilePosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref, ok := m.tileRefs[tp]
	if !ok {
		return nil
	}
	m.nav.RemoveTile(ref)
	delete(m.tileRefs, tp)
	return nil
}

// cancel marks the agent as torn down: workers check this before
// committing a build (I1/cancellation, spec §5) and the updater's
// Registry.Lookup stops resolving it.
func (m *agentNavmesh) cancel() { m.cancelled.Store(true) }

func (m *agentNavmesh) isCancelled() bool { return m.cancelled.Load() }

type buildStatusError struct{ status detour.Status }

func (e *buildStatusError) Error() string { return e.status.Error() }
