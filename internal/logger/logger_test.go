package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func reset() {
	Logger = zap.NewNop().Sugar()
	JSONOutput = false
}

func TestDefaultLoggerIsNop(t *testing.T) {
	reset()
	require.NotNil(t, Logger)
	assert.NotPanics(t, func() { Logger.Infow("ignored", "k", "v") })
}

func TestInitializeJSON(t *testing.T) {
	defer reset()
	var buf bytes.Buffer

	require.NoError(t, InitializeTo(&buf, true, VerbosityDebug))
	assert.True(t, JSONOutput)

	Named("synth").Debugw("synthesized", "backend", "subclass")
	Sync()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "synthesized", entry["msg"])
	assert.Equal(t, "synth", entry["logger"])
	assert.Equal(t, "subclass", entry["backend"])
}

func TestInitializeConsoleRespectsLevel(t *testing.T) {
	defer reset()
	var buf bytes.Buffer

	require.NoError(t, InitializeTo(&buf, false, VerbosityUser))
	Logger.Infow("hidden")
	Logger.Warnw("shown")
	Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(0))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(1))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(2))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
}
