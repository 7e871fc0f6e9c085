package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo, Format: "json"})

	log.With(Component("directory")).Info("discipline created", DisciplineID("abc"))
	log.Debug("dropped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "discipline created", entry["message"])
	assert.Equal(t, "directory", entry["component"])
	assert.Equal(t, "abc", entry["discipline_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestLogger_FromZapObserver(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := FromZap(zap.New(core))

	log.Info("ignored")
	log.Warn("slow query", Latency(0), Err(errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "slow query", e.Message)
	assert.Equal(t, "boom", e.ContextMap()["error"])
}

func TestContextPropagation(t *testing.T) {
	l := Nop()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
