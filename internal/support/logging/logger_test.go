package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(Options{Level: slog.LevelInfo, Output: &buf}), "tracker")
	logger.Debug("hidden")
	logger.Info("order advanced", "order_id", 42)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "tracker", rec["component"])
	assert.Equal(t, "order advanced", rec["msg"])
	assert.EqualValues(t, 42, rec["order_id"])
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Format: "console", Output: &buf}).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
