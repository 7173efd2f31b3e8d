package flightconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	raw := []byte(`{"callsign":"N0CALL","band":"20m","channel":3,"startMinute":4,"power":23}`)
	cfg, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "N0CALL", cfg.Callsign)
	assert.Equal(t, 4, cfg.StartMinute)
}

func TestParseMissingCallsign(t *testing.T) {
	raw := []byte(`{"band":"20m","startMinute":0}`)
	_, err := Parse(raw)
	assert.Error(t, err)
}

func TestParseBadStartMinute(t *testing.T) {
	raw := []byte(`{"callsign":"N0CALL","band":"20m","startMinute":1}`)
	_, err := Parse(raw)
	assert.Error(t, err)
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	assert.Error(t, err)
}
