// Package navigator is the public façade: it composes a worldspace's
// recast-mesh cache, per-agent tile stores, job scheduler, async
// updater pool and persistent tile DB into the add/update/find-path API
// surface the rest of the engine drives.
package navigator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/arl/gogeo/f32/d3"
	"go.uber.org/zap"

	"github.com/argonaut-engine/navmesh/internal/navlog"
	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/recastcache"
	"github.com/argonaut-engine/navmesh/scheduler"
	"github.com/argonaut-engine/navmesh/shape"
	"github.com/argonaut-engine/navmesh/tiledb"
	"github.com/argonaut-engine/navmesh/tilemath"
	"github.com/argonaut-engine/navmesh/updater"
)

// Listener is an optional progress sink for a long-running Update/Wait
// call.
type Listener interface {
	Started(total int)
	Progress(done int)
	Finished()
}

// NopListener implements Listener as a complete no-op.
type NopListener struct{}

func (NopListener) Started(int)  {}
func (NopListener) Progress(int) {}
func (NopListener) Finished()    {}

// WaitCondition selects what Wait blocks on.
type WaitCondition int

const (
	// RequiredTilesPresent waits until every PriorityPlayer/PriorityNear
	// job queued by the most recent Update has committed (or been
	// discarded as stale).
	RequiredTilesPresent WaitCondition = iota
	// AllJobsDone waits until the queue is empty and no worker is
	// currently building a tile.
	AllJobsDone
)

type agentEntry struct {
	bounds   navconf.AgentBounds
	refcount int
	mesh     *agentNavmesh
}

// Navigator is one worldspace's navigation-mesh manager.
type Navigator struct {
	cfg navconf.Config
	log *zap.Logger

	cache *recastcache.Cache
	db    tiledb.Store
	queue *scheduler.Queue
	pool  *updater.Pool

	closed atomic.Bool

	mu           sync.Mutex
	agents       map[navconf.AgentBoundsHash]*agentEntry
	objectBounds map[shape.ObjectID]d3.Rectangle
	waterBounds  map[shape.ObjectID]d3.Rectangle
	hfBounds     map[shape.ObjectID]d3.Rectangle
}

// New returns a Navigator over an empty worldspace. db may be nil, in
// which case tiles are never persisted across restarts.
func New(cfg navconf.Config, db tiledb.Store, log *zap.Logger) *Navigator {
	if log == nil {
		log = navlog.NewNop()
	}
	n := &Navigator{
		cfg:          cfg,
		log:          log,
		cache:        recastcache.NewCache(),
		db:           db,
		queue:        scheduler.NewQueue(cfg.MinUpdateInterval),
		agents:       make(map[navconf.AgentBoundsHash]*agentEntry),
		objectBounds: make(map[shape.ObjectID]d3.Rectangle),
		waterBounds:  make(map[shape.ObjectID]d3.Rectangle),
		hfBounds:     make(map[shape.ObjectID]d3.Rectangle),
	}
	workers := cfg.AsyncNavMeshUpdaterThreads
	n.pool = updater.New(n.queue, n, n.db, log, workers)
	return n
}

// Close stops the worker pool and closes the persistent DB, if any. Any
// caller currently blocked in Wait is released with StatusCancelled.
func (n *Navigator) Close() error {
	n.closed.Store(true)
	n.pool.Stop()
	if n.db != nil {
		return n.db.Close()
	}
	return nil
}

// Lookup implements updater.Registry: it resolves a job's agent hash to
// the live agentNavmesh, refusing cancelled or already-removed agents.
func (n *Navigator) Lookup(agent navconf.AgentBoundsHash) (updater.Navmesh, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	e, ok := n.agents[agent]
	if !ok || e.mesh.isCancelled() {
		return nil, false
	}
	return e.mesh, true
}

// AddAgent registers bounds, or increments its refcount if an
// equivalent bounds is already tracked, per the rejection policy of
// spec §4.7 (AgentBounds.Valid, taken from the OpenMW test corpus'
// literal half-extent ceilings).
func (n *Navigator) AddAgent(bounds navconf.AgentBounds) bool {
	if !bounds.Valid() {
		return false
	}
	h := bounds.Hash()

	n.mu.Lock()
	defer n.mu.Unlock()

	if e, ok := n.agents[h]; ok {
		e.refcount++
		return true
	}
	n.agents[h] = &agentEntry{
		bounds:   bounds,
		refcount: 1,
		mesh:     newAgentNavmesh(h, bounds, n.cache, n.cfg, n.log),
	}
	return true
}

// RemoveAgent decrements bounds' refcount, tearing down its navmesh
// state once it reaches zero: in-flight builds are cancelled and any
// jobs still queued for it are dropped.
func (n *Navigator) RemoveAgent(bounds navconf.AgentBounds) {
	h := bounds.Hash()

	n.mu.Lock()
	e, ok := n.agents[h]
	if !ok {
		n.mu.Unlock()
		return
	}
	e.refcount--
	if e.refcount > 0 {
		n.mu.Unlock()
		return
	}
	delete(n.agents, h)
	n.mu.Unlock()

	e.mesh.cancel()
	n.queue.CancelAgent(func(k scheduler.Key) bool { return k.Agent == h })
}

// MakeUpdateGuard opens a new geometry-mutation transaction against the
// worldspace's recast-mesh cache.
func (n *Navigator) MakeUpdateGuard() *recastcache.Guard {
	return n.cache.MakeUpdateGuard(n.cfg.TileEdgeSize)
}

// withGuard runs fn against guard, or against a fresh guard committed
// immediately after fn returns when the caller passes nil — the common
// case of a single unbatched mutation.
func (n *Navigator) withGuard(guard *recastcache.Guard, fn func(*recastcache.Guard)) {
	if guard != nil {
		fn(guard)
		return
	}
	g := n.MakeUpdateGuard()
	fn(g)
	g.Commit()
}

// AddObject stages obj's addition.
func (n *Navigator) AddObject(obj shape.Object, guard *recastcache.Guard) {
	bounds := obj.Shape.WorldBounds()
	n.withGuard(guard, func(g *recastcache.Guard) { g.AddObject(obj) })
	n.mu.Lock()
	n.objectBounds[obj.ID] = bounds
	n.mu.Unlock()
}

// UpdateObject stages replacing a previously added object's geometry.
// If obj.ID was never added, it is handled as AddObject.
func (n *Navigator) UpdateObject(obj shape.Object, guard *recastcache.Guard) {
	n.mu.Lock()
	oldBounds, ok := n.objectBounds[obj.ID]
	n.mu.Unlock()
	if !ok {
		n.AddObject(obj, guard)
		return
	}

	newBounds := obj.Shape.WorldBounds()
	n.withGuard(guard, func(g *recastcache.Guard) { g.UpdateObject(oldBounds, obj) })
	n.mu.Lock()
	n.objectBounds[obj.ID] = newBounds
	n.mu.Unlock()
}

// RemoveObject stages removal of a previously added object. Removing an
// unknown ID is a silent no-op (I2).
func (n *Navigator) RemoveObject(id shape.ObjectID, guard *recastcache.Guard) {
	n.mu.Lock()
	bounds, ok := n.objectBounds[id]
	delete(n.objectBounds, id)
	n.mu.Unlock()
	if !ok {
		return
	}
	n.withGuard(guard, func(g *recastcache.Guard) { g.RemoveObject(id, bounds) })
}

// AddWater stages w's addition. An effectively-infinite plane is
// clamped to a practical radius around its own footprint first (P5):
// the clamp still overlaps every tile the current worldspace uses, so
// queries observe no difference from a literally unbounded plane. A
// tile may hold only one water plane at a time (I2): on a tile that
// already carries a different ID, w is rejected there, so adding a
// second water plane over an occupied tile leaves that tile's content
// and version unchanged.
func (n *Navigator) AddWater(w recastcache.WaterPlane, guard *recastcache.Guard) {
	clampRadius := n.cfg.MaxTileRadius * n.cfg.TileEdgeSize
	w.Bounds = tilemath.ClampInfiniteExtent(w.Bounds, w.Bounds.Center(), clampRadius)

	n.withGuard(guard, func(g *recastcache.Guard) { g.AddWater(w) })
	n.mu.Lock()
	n.waterBounds[w.ID] = w.Bounds
	n.mu.Unlock()
}

// RemoveWater stages removal of a previously added water plane.
func (n *Navigator) RemoveWater(id shape.ObjectID, guard *recastcache.Guard) {
	n.mu.Lock()
	bounds, ok := n.waterBounds[id]
	delete(n.waterBounds, id)
	n.mu.Unlock()
	if !ok {
		return
	}
	n.withGuard(guard, func(g *recastcache.Guard) { g.RemoveWater(id, bounds) })
}

// AddHeightfield stages hf's addition.
func (n *Navigator) AddHeightfield(hf recastcache.Heightfield, guard *recastcache.Guard) {
	n.withGuard(guard, func(g *recastcache.Guard) { g.AddHeightfield(hf) })
	n.mu.Lock()
	n.hfBounds[hf.ID] = hf.Bounds
	n.mu.Unlock()
}

// RemoveHeightfield stages removal of a previously added heightfield.
func (n *Navigator) RemoveHeightfield(id shape.ObjectID, guard *recastcache.Guard) {
	n.mu.Lock()
	bounds, ok := n.hfBounds[id]
	delete(n.hfBounds, id)
	n.mu.Unlock()
	if !ok {
		return
	}
	n.withGuard(guard, func(g *recastcache.Guard) { g.RemoveHeightfield(id, bounds) })
}

// tilesFromWorld converts a world-unit radius to a whole number of
// tiles, rounding up so the resulting ring always covers at least
// worldRadius.
func tilesFromWorld(worldRadius, tileEdgeSize float32) int32 {
	if tileEdgeSize <= 0 {
		return 0
	}
	n := int32(worldRadius / tileEdgeSize)
	if float32(n)*tileEdgeSize < worldRadius {
		n++
	}
	if n < 0 {
		n = 0
	}
	return n
}

// Update recomputes every tracked agent's active tile window around
// playerPos, enqueues rebuild jobs for tiles that changed or newly
// entered the window (at PriorityPlayer within
// waitUntilMinDistanceToPlayer, PriorityNear within the wider maximum
// radius), and prunes tiles that fell out of the window entirely. If
// guard is non-nil its pending edits are committed first, so this
// Update observes them.
func (n *Navigator) Update(playerPos d3.Vec3, guard *recastcache.Guard) {
	if guard != nil {
		guard.Commit()
	}

	playerTile := tilemath.WorldToTilePos(playerPos, n.cfg.TileEdgeSize)
	requiredRadius := tilesFromWorld(n.cfg.WaitUntilMinDistanceToPlayer, n.cfg.TileEdgeSize)
	maximumRadius := tilesFromWorld(n.cfg.MaxTileRadius, n.cfg.TileEdgeSize)
	if maximumRadius < requiredRadius {
		maximumRadius = requiredRadius
	}

	n.mu.Lock()
	entries := make([]*agentEntry, 0, len(n.agents))
	for _, e := range n.agents {
		entries = append(entries, e)
	}
	n.mu.Unlock()

	window := tilemath.Disk(playerTile, maximumRadius)

	for _, e := range entries {
		mesh := e.mesh
		mesh.setWindow(playerTile, maximumRadius)

		for _, tp := range window {
			live := n.cache.Version(tp)
			if live == (recastcache.Version{}) {
				continue // tile has never received any geometry anywhere
			}
			if built, ok := mesh.Store().Snapshot(tp); ok && built.Version == live {
				continue // already current
			}

			dist := tp.Distance2D(playerTile)
			priority := scheduler.PriorityBackground
			switch {
			case dist <= float64(requiredRadius):
				priority = scheduler.PriorityPlayer
			case dist <= float64(maximumRadius):
				priority = scheduler.PriorityNear
			}

			n.queue.Push(scheduler.Job{
				Key:      scheduler.Key{Agent: mesh.AgentHash(), Tile: tp},
				Priority: priority,
				Revision: live.Revision,
				Version:  live,
			})
		}

		mesh.Store().PruneOutsideWindow(playerTile, maximumRadius)

		mesh.mu.Lock()
		for tp, ref := range mesh.tileRefs {
			if _, ok := mesh.Store().Snapshot(tp); !ok {
				mesh.nav.RemoveTile(ref)
				delete(mesh.tileRefs, tp)
			}
		}
		mesh.mu.Unlock()
	}
}

// Wait blocks until cond holds or deadline elapses, reporting progress
// to listener if non-nil. It returns StatusTimeout on expiry and
// StatusSuccess once the condition is observed.
func (n *Navigator) Wait(cond WaitCondition, deadline time.Time, listener Listener) Status {
	if listener == nil {
		listener = NopListener{}
	}
	listener.Started(0)
	defer listener.Finished()

	matches := func(_ scheduler.Key, p scheduler.Priority) bool {
		return p == scheduler.PriorityPlayer || p == scheduler.PriorityNear
	}

	const pollInterval = 2 * time.Millisecond
	for {
		var satisfied bool
		switch cond {
		case RequiredTilesPresent:
			satisfied = n.queue.Pending(matches) == 0
		case AllJobsDone:
			satisfied = n.queue.Idle()
		}
		if satisfied {
			return StatusSuccess
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return StatusTimeout
		}
		if n.closed.Load() {
			return StatusCancelled
		}
		time.Sleep(pollInterval)
	}
}
