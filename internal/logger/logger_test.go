package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Writer: &buf, JSON: true, Level: slog.LevelWarn})

	l.Info("dropped")
	l.Warn("kept", "seed", "0x1f")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "0x1f", rec["seed"])
}

func TestNewTint(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Writer: &buf, NoColor: true})

	l.Debug("hidden")
	l.Info("numbers generated", "generation", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "numbers generated")
	assert.Contains(t, out, "generation=1")
}
