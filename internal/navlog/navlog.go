// Package navlog wraps the zap logger the navigation-mesh manager's
// components are handed, so call sites use a small domain-flavoured
// vocabulary instead of raw zap.Field construction everywhere.
package navlog

import (
	"time"

	"go.uber.org/zap"

	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/tilemath"
)

// NewNop returns a logger that discards everything, for tests and
// callers that do not want navigator logging.
func NewNop() *zap.Logger { return zap.NewNop() }

// NewProduction returns a production zap logger configured for JSON
// output, or a Nop logger if construction fails (stdout unavailable,
// etc.) so a logging failure never prevents the navigator from
// starting.
func NewProduction() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Tile returns a zap field identifying a tile position.
func Tile(tp tilemath.TilePosition) zap.Field {
	return zap.Int32s("tile", []int32{tp.X, tp.Y})
}

// Agent returns a zap field identifying an agent bounds hash, hex
// encoded and truncated for log readability.
func Agent(h navconf.AgentBoundsHash) zap.Field {
	return zap.String("agent", hexPrefix(h))
}

func hexPrefix(h navconf.AgentBoundsHash) string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, 8)
	for i := 0; i < 4; i++ {
		buf[i*2] = hextable[h[i]>>4]
		buf[i*2+1] = hextable[h[i]&0xf]
	}
	return string(buf)
}

// Duration returns a zap field for an elapsed build/dispatch time.
func Duration(d time.Duration) zap.Field { return zap.Duration("took", d) }
