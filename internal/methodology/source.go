package methodology

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by sources when no project methodology exists;
// callers treat it as "use the default", never as a failure.
var ErrNotFound = errors.New("methodology not found")

// WorkspaceDir is the marker directory that identifies a project root.
const WorkspaceDir = ".govline"

const methodologyFileName = "methodology.json"

// Source loads a methodology document. Implementations report ErrNotFound
// when nothing project-specific exists; any other error means a document was
// found but could not be parsed.
type Source interface {
	Load() (*Model, error)
}

// FileSource loads a methodology from an explicit file path.
type FileSource struct {
	Path string
}

func (s FileSource) Load() (*Model, error) {
	m, err := FromFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// ProjectSource discovers the project root by walking up from Start looking
// for the workspace marker directory, then loads its methodology file.
type ProjectSource struct {
	Start string
}

func (s ProjectSource) Load() (*Model, error) {
	root, err := FindProjectRoot(s.Start)
	if err != nil {
		return nil, err
	}
	return FileSource{Path: filepath.Join(root, WorkspaceDir, methodologyFileName)}.Load()
}

// FindProjectRoot walks up the directory tree from start until it finds a
// directory containing the workspace marker.
func FindProjectRoot(start string) (string, error) {
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		info, err := os.Stat(filepath.Join(dir, WorkspaceDir))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}
