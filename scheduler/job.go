// Package scheduler orders pending tile (re)build work: one job per
// (agent bounds, tile) pair is ever in flight, jobs coalesce as new
// geometry changes arrive for a tile still waiting to be built, and
// dispatch is both priority-ordered and rate-limited per tile.
package scheduler

import (
	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/recastcache"
	"github.com/argonaut-engine/navmesh/tilemath"
)

// Priority orders jobs for dispatch; lower values are serviced first.
type Priority int

const (
	// PriorityPlayer is used for tiles within the player's immediate
	// vicinity (inside waitUntilMinDistanceToPlayer): the updater must
	// finish these before Wait returns.
	PriorityPlayer Priority = iota
	// PriorityNear is used for tiles within the wider active radius.
	PriorityNear
	// PriorityBackground is used for everything else: tiles being
	// rebuilt only because geometry somewhere in them changed, far from
	// any player.
	PriorityBackground
)

// Key identifies the (agent, tile) pair a Job targets. Exactly one Job
// per Key is ever queued or claimed at a time (I1).
type Key struct {
	Agent navconf.AgentBoundsHash
	Tile  tilemath.TilePosition
}

// Job is one unit of pending rebuild work.
type Job struct {
	Key      Key
	Priority Priority

	// Revision is the recastcache.Version.Revision this job was queued
	// for. If the tile changes again before this job is dispatched, the
	// existing queued Job is updated in place to the new Revision
	// rather than a second Job being enqueued (coalescing, P4).
	Revision uint64

	// Version is the recastcache.Version read from the cache when the
	// job was queued. The updater's staleness check does not read it: at
	// dispatch it compares Revision against the cache's live revision
	// and skips the build as redundant if they differ.
	Version recastcache.Version

	seq uint64 // insertion order, used as a FIFO tiebreak within a priority
}
