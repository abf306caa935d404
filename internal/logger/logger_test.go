package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: INFO, Format: JSON, Output: &buf, Service: "hotel-booking"})

	log.Debug("hidden")
	log.Info("booking created", "booking_id", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "booking created", entry["msg"])
	assert.Equal(t, "hotel-booking", entry[SERVICE])
	assert.EqualValues(t, 42, entry["booking_id"])
}

func TestNewTextFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "WARN", Format: TEXT, Output: &buf})

	log.Info("dropped")
	assert.Empty(t, buf.String())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "msg=kept")
}
