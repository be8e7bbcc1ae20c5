// Package updater runs the worker pool that drains a scheduler.Queue,
// builds tiles through internal/buildtile, and installs the results
// into a tilestore.Store, using a singleflight group to guarantee a
// tile is never built twice concurrently even if it was queued for two
// different agents sharing the same underlying mesh.
package updater

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/argonaut-engine/navmesh/internal/buildtile"
	"github.com/argonaut-engine/navmesh/internal/navlog"
	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/recastcache"
	"github.com/argonaut-engine/navmesh/scheduler"
	"github.com/argonaut-engine/navmesh/tilemath"
	"github.com/argonaut-engine/navmesh/tiledb"
	"github.com/argonaut-engine/navmesh/tilestore"
)

// Navmesh is the per-agent state the updater writes built tiles into.
// navigator.Navigator implements this for each agent bounds it tracks.
type Navmesh interface {
	// AgentHash identifies which agent bounds this navmesh belongs to,
	// used as the persistence key.
	AgentHash() navconf.AgentBoundsHash
	// Cache returns the live geometry cache tiles are built from.
	Cache() *recastcache.Cache
	// Store returns the resident tile store results are installed into.
	Store() *tilestore.Store
	// RecastConfig returns the tuning values tiles of this navmesh build with.
	RecastConfig() navconf.RecastConfig
	// TileEdgeSize returns the worldspace's tile size.
	TileEdgeSize() float32
	// PlayerTile and WindowRadius bound which resident tiles survive
	// eviction after a commit.
	PlayerTile() tilemath.TilePosition
	WindowRadius() int32
	// AddTile/RemoveTile push a freshly built tile's binary data into
	// the navmesh query structure, or retract it.
	AddTile(tp tilemath.TilePosition, data []byte) error
	RemoveTile(tp tilemath.TilePosition) error
}

// Registry resolves an agent bounds hash to its Navmesh, so the pool's
// workers can be handed jobs referencing agents generically.
type Registry interface {
	Lookup(agent navconf.AgentBoundsHash) (Navmesh, bool)
}

// Pool is the async tile (re)builder: a fixed set of goroutines that
// drain a scheduler.Queue, call internal/buildtile, persist results to
// tiledb and install them into the owning Navmesh's tilestore.
type Pool struct {
	queue    *scheduler.Queue
	registry Registry
	db       tiledb.Store
	log      *zap.Logger

	sf singleflight.Group

	group  *errgroup.Group
	cancel context.CancelFunc
}

// New returns a Pool with workers workers, not yet started.
func New(queue *scheduler.Queue, registry Registry, db tiledb.Store, log *zap.Logger, workers int) *Pool {
	if log == nil {
		log = navlog.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		queue:    queue,
		registry: registry,
		db:       db,
		log:      log,
	}
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	p.cancel = cancel
	p.group = g
	for i := 0; i < workers; i++ {
		g.Go(func() error { return p.work(gctx) })
	}
	return p
}

// Stop signals every worker to exit after its current job and waits for
// them to do so.
func (p *Pool) Stop() {
	p.cancel()
	p.queue.Close()
	p.group.Wait()
}

func (p *Pool) work(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		job, ok := p.queue.Pop()
		if !ok {
			return nil
		}
		p.runJob(job)
	}
}

func (p *Pool) runJob(job scheduler.Job) {
	defer p.queue.Done(job.Key)

	nav, ok := p.registry.Lookup(job.Key.Agent)
	if !ok {
		return // agent removed while its job was queued
	}

	live := nav.Cache().Version(job.Key.Tile)
	if live.Revision != job.Revision {
		// Superseded by a later commit before this job was dispatched;
		// the newer commit already pushed a fresh job for this key.
		return
	}

	sfKey := singleflightKey(job.Key, live)
	_, err, _ := p.sf.Do(sfKey, func() (any, error) {
		return nil, p.build(nav, job.Key.Tile, live)
	})
	if err != nil {
		p.log.Error("tile build failed", navlog.Tile(job.Key.Tile), navlog.Agent(job.Key.Agent), zap.Error(err))
	}
}

func (p *Pool) build(nav Navmesh, tp tilemath.TilePosition, version recastcache.Version) error {
	meshSnapshot, ok := nav.Cache().Snapshot(tp)
	if !ok {
		return nav.RemoveTile(tp)
	}

	bounds := tp.Bounds(nav.TileEdgeSize())
	result, err := buildtile.Build(&meshSnapshot, nav.RecastConfig(), bounds, tp.X, tp.Y)
	if err != nil {
		return err
	}

	if _, ok := p.registry.Lookup(nav.AgentHash()); !ok {
		return nil // agent removed while this tile was building
	}

	rec := tilestore.Record{Version: version, Data: result.Data}
	nav.Store().CommitTile(tp, rec, nav.PlayerTile(), nav.WindowRadius())

	if p.db != nil {
		dbKey := tiledb.Key{Agent: dbAgentOf(nav), Tile: tp}
		if err := p.db.Put(dbKey, tiledb.Row{Version: version, Data: result.Data}); err != nil {
			p.log.Warn("tile db write failed", navlog.Tile(tp), zap.Error(err))
		}
	}

	if result.Data == nil {
		return nav.RemoveTile(tp)
	}
	return nav.AddTile(tp, result.Data)
}

func tileKeyString(tp tilemath.TilePosition) string {
	return strconv.Itoa(int(tp.X)) + "," + strconv.Itoa(int(tp.Y))
}

func revisionString(r uint64) string { return strconv.FormatUint(r, 10) }

func dbAgentOf(nav Navmesh) navconf.AgentBoundsHash { return nav.AgentHash() }

func singleflightKey(k scheduler.Key, v recastcache.Version) string {
	return string(k.Agent[:]) + ":" + tileKeyString(k.Tile) + ":" + revisionString(v.Revision)
}
