package navconf

// WorldspaceID identifies a distinct spatial universe. Tiles and
// navmeshes belonging to different worldspaces never interact.
type WorldspaceID uint64
