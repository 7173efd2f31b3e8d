package flightlog

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copilotcontrol/scheduler/pkg/marker"
)

func TestExportWritesCompressedFile(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir)

	markers := []marker.Marker{
		{Tag: "START", TimeUs: 0},
		{Tag: "JS_EXEC", TimeUs: 100, Annotation: "alt=120"},
	}

	path, err := e.Export("window-0001.jsonl", markers)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = os.Stat(path[:len(path)-len(".gz")])
	assert.True(t, os.IsNotExist(err), "uncompressed intermediate should be removed")
}
