package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, slog.LevelInfo)

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestHandler_Output(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelDebug))

	log.Info("saved study", "id", 3, "name", "pilot")
	out := buf.String()
	assert.Contains(t, out, "saved study")
	assert.Contains(t, out, "id=3")
	assert.Contains(t, out, "name=pilot")
}

func TestHandler_ErrorColored(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelInfo))

	log.Error("boom")
	assert.True(t, strings.HasPrefix(buf.String(), colorRed))
}

func TestHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := NewHandler(&buf, slog.LevelInfo)
	log := slog.New(base.WithAttrs([]slog.Attr{slog.String("study", "pilot")}))

	log.Info("generated")
	assert.Contains(t, buf.String(), "study=pilot")

	// The base handler is unchanged.
	buf.Reset()
	require.NoError(t, base.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "plain", 0)))
	assert.NotContains(t, buf.String(), "study=pilot")
}
