// Package shape defines the geometry contract objects contribute to a
// worldspace's recast mesh cache, and the registry that assigns them
// stable identities.
package shape

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/google/uuid"

	"github.com/argonaut-engine/navmesh/navconf"
)

// ObjectID uniquely identifies an object across its whole lifetime in a
// worldspace, independent of any particular tile or navmesh.
type ObjectID uuid.UUID

// NewObjectID returns a fresh, random ObjectID.
func NewObjectID() ObjectID { return ObjectID(uuid.New()) }

func (id ObjectID) String() string { return uuid.UUID(id).String() }

// Triangle is one triangle of a shape's collision mesh, in world space,
// tagged with the area type it contributes.
type Triangle struct {
	A, B, C d3.Vec3
	Area    navconf.AreaType
}

// Shape is the geometry contract an object contributes to the recast
// mesh cache. Implementations are expected to be cheap to query
// repeatedly: recastcache.Guard.AddObject calls Triangles once when the
// object is staged, not once per frame.
type Shape interface {
	// WorldBounds returns the shape's axis-aligned bounding box in world
	// space, used to determine which tiles the shape overlaps.
	WorldBounds() d3.Rectangle

	// Triangles appends the shape's world-space collision triangles to
	// dst and returns the extended slice.
	Triangles(dst []Triangle) []Triangle
}

// Object is a registry entry: a shape plus the bookkeeping the cache and
// tile store need to invalidate and re-triangulate it.
type Object struct {
	ID     ObjectID
	Shape  Shape
	Avoid  bool // true if this object should be routed around rather than over
}

// Registry tracks every live shape-bearing object in a worldspace. It
// holds no geometry of its own; recastcache.Cache is the source of
// truth for triangulated content. Registry exists so callers can look
// an object back up by ID without re-deriving the mapping themselves.
type Registry struct {
	objects map[ObjectID]Object
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[ObjectID]Object)}
}

// Add registers obj, replacing any previous entry with the same ID.
func (r *Registry) Add(obj Object) { r.objects[obj.ID] = obj }

// Remove deletes id from the registry. It is a no-op if id is unknown.
func (r *Registry) Remove(id ObjectID) { delete(r.objects, id) }

// Get returns the object registered under id, and whether it exists.
func (r *Registry) Get(id ObjectID) (Object, bool) {
	obj, ok := r.objects[id]
	return obj, ok
}

// Len returns the number of registered objects.
func (r *Registry) Len() int { return len(r.objects) }

// TriMesh is a Shape backed by a fixed, precomputed triangle list and
// bounding box; it never changes once built. Static level geometry
// loaded from a mesh file is the typical caller.
type TriMesh struct {
	bounds d3.Rectangle
	tris   []Triangle
}

// NewTriMesh computes tris' bounding box and returns a TriMesh wrapping
// them. tris is retained, not copied.
func NewTriMesh(tris []Triangle) *TriMesh {
	tm := &TriMesh{tris: tris}
	if len(tris) == 0 {
		return tm
	}
	min := d3.NewVec3From(tris[0].A)
	max := d3.NewVec3From(tris[0].A)
	extend := func(v d3.Vec3) {
		for i := 0; i < 3; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	for _, t := range tris {
		extend(t.A)
		extend(t.B)
		extend(t.C)
	}
	tm.bounds = d3.Rectangle{Min: min, Max: max}
	return tm
}

// WorldBounds implements Shape.
func (tm *TriMesh) WorldBounds() d3.Rectangle { return tm.bounds }

// Triangles implements Shape.
func (tm *TriMesh) Triangles(dst []Triangle) []Triangle { return append(dst, tm.tris...) }
