package recastcache

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/argonaut-engine/navmesh/shape"
)

// contentHash identifies a RecastMesh's rasterizable content, not its
// identity: two snapshots built from a different sequence of edits that
// land on the same set of triangles, water planes and heightfields
// compare equal.
type contentHash [16]byte

// contentHasher combines per-entry hashes with XOR, so the combined
// result does not depend on map iteration order.
type contentHasher struct {
	acc [16]byte
}

func newContentHasher() *contentHasher { return &contentHasher{} }

func (h *contentHasher) combine(entryHash [16]byte) {
	for i := range h.acc {
		h.acc[i] ^= entryHash[i]
	}
}

func hashBytes(b []byte) [16]byte {
	f := fnv.New128a()
	f.Write(b)
	var out [16]byte
	copy(out[:], f.Sum(nil))
	return out
}

func appendVec3(buf []byte, v [3]float32) []byte {
	for _, c := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c))
	}
	return buf
}

func (h *contentHasher) addObject(id shape.ObjectID, obj objectEntry) {
	buf := make([]byte, 0, 16+1+len(obj.triangles)*(9*4+1))
	buf = append(buf, id[:]...)
	if obj.avoid {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	for _, t := range obj.triangles {
		buf = appendVec3(buf, [3]float32{t.A[0], t.A[1], t.A[2]})
		buf = appendVec3(buf, [3]float32{t.B[0], t.B[1], t.B[2]})
		buf = appendVec3(buf, [3]float32{t.C[0], t.C[1], t.C[2]})
		buf = append(buf, byte(t.Area))
	}
	h.combine(hashBytes(buf))
}

func (h *contentHasher) addWater(id shape.ObjectID, w WaterPlane) {
	buf := append([]byte{}, id[:]...)
	buf = appendVec3(buf, [3]float32{w.Bounds.Min[0], w.Bounds.Min[1], w.Bounds.Min[2]})
	buf = appendVec3(buf, [3]float32{w.Bounds.Max[0], w.Bounds.Max[1], w.Bounds.Max[2]})
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(w.Height))
	h.combine(hashBytes(buf))
}

func (h *contentHasher) addHeightfield(id shape.ObjectID, hf Heightfield) {
	buf := append([]byte{}, id[:]...)
	buf = appendVec3(buf, [3]float32{hf.Bounds.Min[0], hf.Bounds.Min[1], hf.Bounds.Min[2]})
	buf = appendVec3(buf, [3]float32{hf.Bounds.Max[0], hf.Bounds.Max[1], hf.Bounds.Max[2]})
	buf = binary.LittleEndian.AppendUint32(buf, uint32(hf.RowSize))
	for _, c := range hf.Cells {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c.MinHeight))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c.MaxHeight))
	}
	h.combine(hashBytes(buf))
}

func (h *contentHasher) sum() contentHash { return contentHash(h.acc) }
