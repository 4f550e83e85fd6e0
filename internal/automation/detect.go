package automation

import (
	"os"
	"path/filepath"
)

// ProjectType is the build system found at a project root.
type ProjectType int

const (
	Unknown ProjectType = iota
	Rust
	Node
	Python
	Go
)

func (p ProjectType) String() string {
	switch p {
	case Rust:
		return "Rust"
	case Node:
		return "Node.js"
	case Python:
		return "Python"
	case Go:
		return "Go"
	default:
		return "Unknown"
	}
}

// DetectProject inspects manifests in dir. The first match wins, in the
// order Cargo.toml, package.json, requirements.txt/pyproject.toml, go.mod.
func DetectProject(dir string) ProjectType {
	switch {
	case exists(filepath.Join(dir, "Cargo.toml")):
		return Rust
	case exists(filepath.Join(dir, "package.json")):
		return Node
	case exists(filepath.Join(dir, "requirements.txt")), exists(filepath.Join(dir, "pyproject.toml")):
		return Python
	case exists(filepath.Join(dir, "go.mod")):
		return Go
	default:
		return Unknown
	}
}

// FindUp walks from the directory containing path towards the filesystem
// root and returns the first directory holding marker.
func FindUp(path, marker string) (string, bool) {
	dir := filepath.Dir(filepath.Clean(path))
	for {
		if exists(filepath.Join(dir, marker)) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
