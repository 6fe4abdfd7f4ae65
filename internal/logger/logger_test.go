package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "warn", "json")

	log.Info().Msg("hidden")
	log.Warn().Str("plate", "KA01").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "KA01", entry["plate"])
	assert.Equal(t, "vehicle-ticket-service", entry["service"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "loud", "json")

	log.Debug().Msg("debug")
	assert.Empty(t, buf.String())
	log.Info().Msg("info")
	assert.Contains(t, buf.String(), `"message":"info"`)
}
