// Package manifest reads the little a build needs to know from a
// contract's cargo manifest and finds contracts inside a project.
package manifest

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/the-maldridge/scbuild/pkg/source"
)

const (
	// DefaultName is used when a manifest carries no package name.
	DefaultName = "untitled"

	// DefaultVersion is used when a manifest carries no plain
	// version string.
	DefaultVersion = "0.0.0"

	// Filename is the cargo manifest read from each contract.
	Filename = "Cargo.toml"

	// LockFilename is the lock file cargo keeps next to a manifest.
	LockFilename = "Cargo.lock"
)

// contractMarkers flag a directory as a buildable contract.
var contractMarkers = map[string]struct{}{
	"multiversx.json": {},
	"elrond.json":     {},
}

type cargoManifest struct {
	Package   map[string]interface{} `toml:"package"`
	Workspace *cargoWorkspace        `toml:"workspace"`
}

type cargoWorkspace struct {
	Members []string `toml:"members"`
}

// NameAndVersion returns the package name and version declared in
// dir/Cargo.toml.  Values that are absent, or not plain strings (for
// example workspace inherited versions), fall back to the defaults.
func NameAndVersion(dir string) (string, string, error) {
	var m cargoManifest
	if _, err := toml.DecodeFile(filepath.Join(dir, Filename), &m); err != nil {
		return "", "", fmt.Errorf("reading manifest of %s: %w", dir, err)
	}
	return stringOr(m.Package["name"], DefaultName), stringOr(m.Package["version"], DefaultVersion), nil
}

// Workspace reports whether dir/Cargo.toml declares a workspace, and
// returns its member patterns.  A missing manifest is not a
// workspace.
func Workspace(dir string) ([]string, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, Filename))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var m cargoManifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, false, fmt.Errorf("reading manifest of %s: %w", dir, err)
	}
	if m.Workspace == nil {
		return nil, false, nil
	}
	return m.Workspace.Members, true, nil
}

func stringOr(v interface{}, def string) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return def
	}
	return s
}

// DiscoverContracts returns every directory below projectRoot that
// holds a contract marker file, sorted.
func DiscoverContracts(projectRoot string) ([]string, error) {
	markers, err := source.ListFiles(projectRoot, func(rel string) bool {
		_, ok := contractMarkers[path.Base(rel)]
		return ok
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(markers))
	dirs := []string{}
	for _, m := range markers {
		d := filepath.Dir(m)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs, nil
}
