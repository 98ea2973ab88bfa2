package source

import (
	"path"
	"strings"
)

// metaDirectory holds the build tooling crate of a contract.  The
// lock file cargo writes there is regenerated on every build.
const metaDirectory = "meta"

var trackedFilenames = map[string]struct{}{
	"Cargo.toml":      {},
	"Cargo.lock":      {},
	"multiversx.json": {},
	"elrond.json":     {},
}

// IsSourceFile reports whether the file at p counts as contract
// source for packaging and archiving.  The path may be relative to
// any root; only its last two elements are inspected.
func IsSourceFile(p string) bool {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	name := path.Base(p)

	if path.Ext(name) == ".rs" {
		return true
	}
	if name == "Cargo.lock" && path.Base(path.Dir(p)) == metaDirectory {
		return false
	}
	_, tracked := trackedFilenames[name]
	return tracked
}

// AcceptAll selects every file.
func AcceptAll(string) bool { return true }
