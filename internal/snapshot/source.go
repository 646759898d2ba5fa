package snapshot

import (
	"context"
	"fmt"
	"os"

	"github.com/saurrx/priced/internal/domain"
)

// Source produces catalog snapshots. The catalog service fetches from a
// Source at startup and on every reload trigger.
type Source interface {
	Fetch(ctx context.Context) (domain.Snapshot, error)

	// Describe identifies the source location for logs.
	Describe() string
}

// FileSource reads a catalog bundle from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads and parses the bundle file.
func (s *FileSource) Fetch(ctx context.Context) (domain.Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot: open %s: %w", s.path, err)
	}
	defer f.Close()

	snap, err := Parse(f)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot: parse %s: %w", s.path, err)
	}
	return snap, nil
}

// Describe returns the file path.
func (s *FileSource) Describe() string { return "file:" + s.path }
