package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "text")

	log.Debug("hidden")
	log.Info("normalized", "matches", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=normalized")
	assert.Contains(t, out, "matches=3")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	Component(New(&buf, slog.LevelDebug, "json"), "sink").Debug("wrote", "rows", 18)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "wrote", rec["msg"])
	assert.Equal(t, "sink", rec["component"])
	assert.Equal(t, float64(18), rec["rows"])
}

func TestComponentNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Component(nil, "x").Info("dropped")
	})
}
