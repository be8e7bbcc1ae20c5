package navconf

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/arl/gogeo/f32/d3"
)

// AgentShape enumerates the collision primitives an agent's bounds can
// take. Two agents sharing the same shape and half-extents share one
// navmesh.
type AgentShape uint8

const (
	ShapeAABB AgentShape = iota
	ShapeRotatingBox
	ShapeCylinder
)

func (s AgentShape) String() string {
	switch s {
	case ShapeAABB:
		return "aabb"
	case ShapeRotatingBox:
		return "rotating-box"
	case ShapeCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// Limits on agent half-extents, taken from the reference engine's test
// fixtures: an AABB agent may be up to ~2043 world units along any axis,
// a cylinder or rotating-box agent up to ~2890 (its diagonal still fits
// the same practical tile budget).
const (
	MaxAABBHalfExtent    float32 = 2043
	MaxCylinderHalfExtent float32 = 2890
)

// AgentBounds describes the size and shape of the moving entity a navmesh
// is tailored for.
type AgentBounds struct {
	Shape       AgentShape
	HalfExtents d3.Vec3 // (x, y, z)
}

// Valid applies the façade's bounds-rejection policy: any half-extent
// component at or below zero is rejected, as is a cylinder/rotating-box
// whose horizontal half-extent is zero, and anything exceeding the
// configured maximum for its shape.
func (b AgentBounds) Valid() bool {
	for _, c := range b.HalfExtents {
		if c <= 0 {
			return false
		}
	}
	max := MaxAABBHalfExtent
	if b.Shape != ShapeAABB {
		max = MaxCylinderHalfExtent
	}
	for _, c := range b.HalfExtents {
		if c > max {
			return false
		}
	}
	if b.Shape != ShapeAABB {
		if b.HalfExtents[0] == 0 || b.HalfExtents[2] == 0 {
			return false
		}
	}
	return true
}

// quantum is the grid half-extent floats are snapped to before hashing,
// so that game-intent-equal bounds (e.g. two callers both meaning
// "human sized") collide to the same hash even with small floating
// point drift.
const quantum = 1.0 / 64.0

func quantize(v float32) float32 {
	return float32(math.Round(float64(v)/quantum)) * quantum
}

// AgentBoundsHash is a stable 128-bit identity for an AgentBounds value,
// used as a map/DB key. Equal bounds (after quantisation) always hash
// identically; this is not a cryptographic hash.
type AgentBoundsHash [16]byte

// Hash quantises the half-extents to a fixed grid and returns a stable
// identity for b, suitable for use as a map key or DB row component. It
// is deterministic across processes so persisted DB rows addressed by
// it remain valid between runs.
func (b AgentBounds) Hash() AgentBoundsHash {
	var buf [13]byte
	buf[0] = byte(b.Shape)
	for i, c := range b.HalfExtents {
		binary.LittleEndian.PutUint32(buf[1+i*4:], math.Float32bits(quantize(c)))
	}

	h := fnv.New128a()
	h.Write(buf[:])

	var out AgentBoundsHash
	copy(out[:], h.Sum(nil))
	return out
}
