package utils

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerAutoUsesJSONOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("info", "auto", &buf)
	require.NoError(t, err)

	logger.Info("progress updated", "page_idx", 4)
	logger.Debug("hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "progress updated", record["msg"])
	assert.Equal(t, float64(4), record["page_idx"])
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("debug", "text", &buf)
	require.NoError(t, err)

	logger.Debug("scanning", "series", "A")
	assert.Contains(t, buf.String(), "msg=scanning")
	assert.Contains(t, buf.String(), "series=A")
}

func TestNewLoggerRejectsUnknownFormat(t *testing.T) {
	_, err := NewLogger("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
