// Package navconf defines the small, shared vocabulary types the rest of
// the navigation-mesh manager is built around: area types, navigation
// flags, agent bounds, worldspace identifiers and the recast tuning
// configuration that is passed opaquely to the tile builder.
package navconf

// AreaType tags a triangle, water plane or heightfield cell with its
// traversal semantics.
type AreaType uint8

const (
	// AreaNull marks impassable geometry, including the triangles
	// contributed by an object's avoid sub-shape.
	AreaNull AreaType = iota
	AreaWater
	AreaPathgrid
	AreaDoor
	AreaGround
)

// preference orders area types from least to most preferred when two
// triangles map onto the same aggregation cell. Ground wins over door,
// door over pathgrid, pathgrid over water, water over null.
var preference = map[AreaType]int{
	AreaNull:     0,
	AreaWater:    1,
	AreaPathgrid: 2,
	AreaDoor:     3,
	AreaGround:   4,
}

// Preference returns a's relative ranking; higher wins ties.
func (a AreaType) Preference() int { return preference[a] }

// MaxPreference returns whichever of a and b ranks higher.
func MaxPreference(a, b AreaType) AreaType {
	if a.Preference() >= b.Preference() {
		return a
	}
	return b
}

func (a AreaType) String() string {
	switch a {
	case AreaNull:
		return "null"
	case AreaWater:
		return "water"
	case AreaDoor:
		return "door"
	case AreaPathgrid:
		return "pathgrid"
	case AreaGround:
		return "ground"
	default:
		return "unknown"
	}
}

// NavigationFlags is a bitset of traversal modes a pathing query honours.
type NavigationFlags uint16

const (
	FlagWalk NavigationFlags = 1 << iota
	FlagSwim
	FlagOpenDoor
	FlagUsePathgrid
)

// Has reports whether every bit of want is set in f.
func (f NavigationFlags) Has(want NavigationFlags) bool { return f&want == want }

// With returns f with the given flags set.
func (f NavigationFlags) With(flags NavigationFlags) NavigationFlags { return f | flags }

// Without returns f with the given flags cleared.
func (f NavigationFlags) Without(flags NavigationFlags) NavigationFlags { return f &^ flags }

// AllowsArea reports whether a polygon tagged with area should be
// considered traversable under the given flags.
func (f NavigationFlags) AllowsArea(area AreaType) bool {
	switch area {
	case AreaGround:
		return f.Has(FlagWalk)
	case AreaWater:
		return f.Has(FlagSwim)
	case AreaDoor:
		return f.Has(FlagWalk) && f.Has(FlagOpenDoor)
	case AreaPathgrid:
		return f.Has(FlagUsePathgrid)
	default:
		return false
	}
}

// AreaCosts gives the A* traversal cost multiplier per area type. Callers
// of findPath may override the default of 1.0 per area to bias routing.
type AreaCosts [5]float32

// DefaultAreaCosts returns every area weighted equally.
func DefaultAreaCosts() AreaCosts {
	return AreaCosts{AreaNull: 1, AreaWater: 1, AreaPathgrid: 1, AreaDoor: 1, AreaGround: 1}
}
