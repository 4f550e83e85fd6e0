package prompt

import (
	"os"
	"path/filepath"
)

// ProjectMarkers are build manifests whose presence marks a directory as a
// software project.
var ProjectMarkers = []string{
	"Cargo.toml",
	"package.json",
	"requirements.txt",
	"Pipfile",
	"pyproject.toml",
	"Gemfile",
	"go.mod",
	"pom.xml",
	"build.gradle",
	"composer.json",
}

// StatFunc matches os.Stat so callers can inject a fake filesystem.
type StatFunc func(name string) (os.FileInfo, error)

// HasProjectMarker reports whether dir directly contains any project marker.
// A nil stat uses os.Stat.
func HasProjectMarker(dir string, stat StatFunc) bool {
	if stat == nil {
		stat = os.Stat
	}
	for _, name := range ProjectMarkers {
		if _, err := stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
