// Package tiledb persists built tile navmesh data across process
// restarts. The updater writes a row after each tile build; nothing in
// this module reads rows back to skip a build.
package tiledb

import (
	"encoding/binary"

	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/recastcache"
	"github.com/argonaut-engine/navmesh/tilemath"
)

// Key addresses one persisted row: a tile position under a particular
// agent bounds (different agent bounds never share built tile data).
type Key struct {
	Agent navconf.AgentBoundsHash
	Tile  tilemath.TilePosition
}

// encode returns a fixed 24-byte big-endian key suitable for a bbolt
// bucket: 16 bytes agent hash, then the tile's X and Y as signed
// big-endian int32s. Big-endian keeps lexicographic bucket order
// meaningful per-agent; pruning does not use this order (it walks the
// separate write-order bucket).
func (k Key) encode() []byte {
	buf := make([]byte, 24)
	copy(buf[:16], k.Agent[:])
	binary.BigEndian.PutUint32(buf[16:20], uint32(k.Tile.X))
	binary.BigEndian.PutUint32(buf[20:24], uint32(k.Tile.Y))
	return buf
}

// Row is one persisted tile: its build Version and the (decompressed)
// navmesh blob, nil for a tile that builds to "no navmesh".
type Row struct {
	Version recastcache.Version
	Data    []byte
}

// Store persists Rows across process restarts.
type Store interface {
	// Get returns the row stored under key, and whether it exists.
	Get(key Key) (Row, bool, error)

	// Put writes row under key, creating or overwriting it. It may then
	// evict the oldest-written rows to stay within the store's
	// configured size budget; an error from that pruning is returned
	// even though row itself was written.
	Put(key Key, row Row) error

	// Delete removes key's row, if any.
	Delete(key Key) error

	// Close releases any underlying file handles.
	Close() error
}
