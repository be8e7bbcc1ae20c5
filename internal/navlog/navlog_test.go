package navlog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/argonaut-engine/navmesh/navconf"
	"github.com/argonaut-engine/navmesh/tilemath"
)

// encodeField runs f through zap's JSON encoder the same way a real
// production logger would, so the assertions exercise the field's
// actual wire representation instead of its internal zap.Field shape.
func encodeField(t *testing.T, f zap.Field) map[string]any {
	t.Helper()
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       zapcore.OmitKey,
		TimeKey:        zapcore.OmitKey,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	buf, err := enc.EncodeEntry(zapcore.Entry{Message: "msg"}, []zapcore.Field{f})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestTileFieldEncodesPosition(t *testing.T) {
	out := encodeField(t, Tile(tilemath.TilePosition{X: 3, Y: -7}))
	assert.Equal(t, []any{float64(3), float64(-7)}, out["tile"])
}

func TestAgentFieldIsStableHexPrefix(t *testing.T) {
	h := navconf.AgentBoundsHash{0xde, 0xad, 0xbe, 0xef, 1, 2, 3, 4}
	out := encodeField(t, Agent(h))
	assert.Equal(t, "deadbeef", out["agent"])
}

func TestAgentFieldDiffersAcrossHashes(t *testing.T) {
	a := encodeField(t, Agent(navconf.AgentBoundsHash{1}))["agent"]
	b := encodeField(t, Agent(navconf.AgentBoundsHash{2}))["agent"]
	assert.NotEqual(t, a, b)
}

func TestDurationFieldEncodesElapsed(t *testing.T) {
	out := encodeField(t, Duration(250*time.Millisecond))
	assert.Equal(t, "250ms", out["took"])
}

func TestNewNopDiscardsLogs(t *testing.T) {
	log := NewNop()
	require.NotNil(t, log)
	// A Nop logger must not panic and must produce no observable
	// output; there is nothing else to assert on it from outside zap.
	log.Info("should be discarded", zap.String("k", "v"))
}
