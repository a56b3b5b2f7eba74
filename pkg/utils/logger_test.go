package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn", "json")
	require.NoError(t, err)

	ComponentLogger(logger, "scanner").Info("dropped")
	ComponentLogger(logger, "scanner").Warn("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "scanner", line["component"])
}

func TestNewLoggerRejectsUnknownValues(t *testing.T) {
	_, err := newLogger(&bytes.Buffer{}, "loud", "console")
	assert.Error(t, err)

	_, err = newLogger(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)

	_, err = newLogger(&bytes.Buffer{}, "", "")
	assert.NoError(t, err)
}

func TestComponentLoggerNil(t *testing.T) {
	logger := ComponentLogger(nil, "x")
	require.NotNil(t, logger)
	logger.Info("goes nowhere")
}
