// Package flightlog rotates and gzip-archives the scheduler's marker
// timeline for post-flight analysis. The spec places flash-backed
// configuration storage out of scope (section 1), but a complete build
// still needs somewhere for the observed-marker ring buffer to land
// before it is overwritten; this package is that export/compaction step.
package flightlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"

	"github.com/copilotcontrol/scheduler/pkg/marker"
)

// Exporter writes a snapshot of a marker ring buffer to a gzip-compressed
// JSON-lines file, the way a real build would periodically flush the
// in-memory timeline to flash before it wraps.
type Exporter struct {
	// Dir is the directory flight logs are written into.
	Dir string
}

// NewExporter creates an Exporter rooted at dir. The directory must
// already exist; Exporter does not create it (flash filesystem layout is
// the storage layer's concern, out of this package's scope).
func NewExporter(dir string) *Exporter {
	return &Exporter{Dir: dir}
}

// record is one line of the exported flight log.
type record struct {
	Tag        string `json:"tag"`
	TimeUs     int64  `json:"timeUs"`
	Annotation string `json:"annotation,omitempty"`
}

// Export writes markers as newline-delimited JSON to a temporary file
// named name, then gzip-compresses it to "<name>.gz" in Dir and removes
// the uncompressed intermediate. It returns the path of the compressed
// file.
func (e *Exporter) Export(name string, markers []marker.Marker) (string, error) {
	rawPath := filepath.Join(e.Dir, name)
	gzPath := rawPath + ".gz"

	f, err := os.Create(rawPath)
	if err != nil {
		return "", fmt.Errorf("flightlog: create %s: %w", rawPath, err)
	}
	enc := json.NewEncoder(f)
	for _, m := range markers {
		if err := enc.Encode(record{Tag: m.Tag, TimeUs: m.TimeUs, Annotation: m.Annotation}); err != nil {
			f.Close()
			return "", fmt.Errorf("flightlog: encode marker: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("flightlog: close %s: %w", rawPath, err)
	}

	if err := archiver.CompressFile(rawPath, gzPath); err != nil {
		return "", fmt.Errorf("flightlog: compress %s: %w", rawPath, err)
	}
	if err := os.Remove(rawPath); err != nil {
		return "", fmt.Errorf("flightlog: remove %s: %w", rawPath, err)
	}
	return gzPath, nil
}
