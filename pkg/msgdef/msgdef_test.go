package msgdef

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestParseStripsCommentsAndTrailingComma(t *testing.T) {
	raw := []byte(`[
  // altitude in meters
  {"name": "alt", "unit": "m", "lowValue": 0, "highValue": 21000, "stepSize": 1},
  {"name": "tempC", "unit": "C", "lowValue": -40, "highValue": 85, "stepSize": 0.5},
]`)
	def, err := Parse(raw)
	assert.NoError(t, err)
	assert.Len(t, def, 2)
	assert.Equal(t, "alt", def[0].Name)
	assert.Equal(t, "tempC", def[1].Name)
}

func TestParseRejectsInvalidField(t *testing.T) {
	raw := []byte(`[{"name": "bad", "lowValue": 100, "highValue": 0, "stepSize": 1}]`)
	_, err := Parse(raw)
	assert.Error(t, err)
}

func TestLoadMissingFileIsNotFatal(t *testing.T) {
	fsys := fstest.MapFS{}
	assert.False(t, Exists(fsys, 3))
	_, err := Load(fsys, 3)
	assert.Error(t, err)
}

func TestLoadExistingFile(t *testing.T) {
	fsys := fstest.MapFS{
		"slot1.json": &fstest.MapFile{Data: []byte(`[{"name":"x","lowValue":0,"highValue":1,"stepSize":0.1}]`)},
	}
	assert.True(t, Exists(fsys, 1))
	def, err := Load(fsys, 1)
	assert.NoError(t, err)
	assert.Len(t, def, 1)
}
