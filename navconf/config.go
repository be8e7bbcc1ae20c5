package navconf

import "time"

// RecastConfig holds the tuning parameters passed opaquely to the
// external tile builder. The persisted tile DB key (tiledb.Key) does
// not include these values, so rows written under different configs
// for the same agent and tile share one key.
type RecastConfig struct {
	CellSize               float32
	CellHeight             float32
	WalkableSlopeAngle     float32
	WalkableHeight         float32
	WalkableClimb          float32
	WalkableRadius         float32
	MaxEdgeLen             float32
	MaxSimplificationError float32
	RegionMinSize          float32
	RegionMergeSize        float32
	DetailSampleDist       float32
	DetailSampleMaxError   float32
	TileSize               float32
}

// DefaultRecastConfig mirrors the values a human-sized agent is usually
// built with.
func DefaultRecastConfig() RecastConfig {
	return RecastConfig{
		CellSize:               0.3,
		CellHeight:             0.2,
		WalkableSlopeAngle:     45,
		WalkableHeight:         2.0,
		WalkableClimb:          0.9,
		WalkableRadius:         0.6,
		MaxEdgeLen:             12,
		MaxSimplificationError: 1.3,
		RegionMinSize:          8,
		RegionMergeSize:        20,
		DetailSampleDist:       6,
		DetailSampleMaxError:   1,
		TileSize:               32,
	}
}

// Config is the full set of recognized Navigator options (§6).
type Config struct {
	Recast RecastConfig

	// MaxTilesNumber bounds how many tiles a single agent's tile-state
	// store may hold before the farthest tile is evicted (§4.3).
	MaxTilesNumber int

	// AsyncNavMeshUpdaterThreads is the worker pool size (§4.6).
	AsyncNavMeshUpdaterThreads int

	// WaitUntilMinDistanceToPlayer is the radius, in world units, inside
	// which Navigator.Update queues tiles at scheduler.PriorityPlayer
	// (§4.5).
	WaitUntilMinDistanceToPlayer float32

	// MaxTileRadius is the outer window radius, in world units; tiles
	// beyond WaitUntilMinDistanceToPlayer but inside it are queued at
	// scheduler.PriorityNear.
	MaxTileRadius float32

	// MinUpdateInterval is the per-tile rate-limiting window for
	// object-update coalescing (§4.5).
	MinUpdateInterval time.Duration

	// MaxDbFileSize bounds the persistent tile DB (§4.4).
	MaxDbFileSize int64

	// TileEdgeSize is the world-unit edge length tiles are indexed by.
	TileEdgeSize float32
}

// DefaultConfig returns reasonable defaults for an exterior worldspace.
func DefaultConfig() Config {
	return Config{
		Recast:                       DefaultRecastConfig(),
		MaxTilesNumber:               512,
		AsyncNavMeshUpdaterThreads:   2,
		WaitUntilMinDistanceToPlayer: 66,
		MaxTileRadius:                200,
		MinUpdateInterval:            250 * time.Millisecond,
		MaxDbFileSize:                1 << 30, // 1 GiB
		TileEdgeSize:                 64,
	}
}
