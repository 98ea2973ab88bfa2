package packaged

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/the-maldridge/scbuild/pkg/manifest"
	"github.com/the-maldridge/scbuild/pkg/source"
)

// FromProject captures a contract together with the local
// dependencies it builds against.  Entry paths are relative to
// projectDir so that unwrapping recreates the layout the contract's
// relative dependency paths expect.  Besides the contract and
// dependency subtrees, the source files sitting directly in every
// directory between projectDir and those subtrees are included.
// Workspace manifests found there, and their lock files, are left
// out: they name members that are not packaged, and cargo refuses to
// load a workspace with missing members.
func FromProject(projectDir, contractDir string, dependencyDirs []string) (*Project, error) {
	name, version, err := manifest.NameAndVersion(contractDir)
	if err != nil {
		return nil, err
	}

	c := collector{root: projectDir, files: make(map[string]struct{})}
	for _, d := range append([]string{contractDir}, dependencyDirs...) {
		if err := c.addTree(d); err != nil {
			return nil, err
		}
	}

	rels := make([]string, 0, len(c.files))
	for r := range c.files {
		rels = append(rels, r)
	}
	sort.Strings(rels)

	p := Project{Name: name, Version: version, Entries: make([]Entry, 0, len(rels))}
	for _, r := range rels {
		content, err := os.ReadFile(filepath.Join(projectDir, filepath.FromSlash(r)))
		if err != nil {
			return nil, err
		}
		p.Entries = append(p.Entries, Entry{Path: r, Content: content})
	}
	return &p, nil
}

type collector struct {
	root  string
	files map[string]struct{}
}

func (c *collector) addTree(dir string) error {
	dir = filepath.Clean(dir)
	rel, err := filepath.Rel(c.root, dir)
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s lies outside of the project %s", dir, c.root)
	}

	files, err := source.ListFiles(dir, source.IsSourceFile)
	if err != nil {
		return err
	}
	for _, f := range files {
		r, _ := filepath.Rel(c.root, f)
		c.files[filepath.ToSlash(r)] = struct{}{}
	}

	// Walk up to the project root collecting loose source files.
	for d := filepath.Dir(dir); ; d = filepath.Dir(d) {
		r, err := filepath.Rel(c.root, d)
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			break
		}
		entries, err := os.ReadDir(d)
		if err != nil {
			return err
		}
		_, isWorkspace, err := manifest.Workspace(d)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if isWorkspace && (e.Name() == manifest.Filename || e.Name() == manifest.LockFilename) {
				continue
			}
			fr := filepath.ToSlash(filepath.Join(r, e.Name()))
			if source.IsSourceFile(fr) {
				c.files[fr] = struct{}{}
			}
		}
		if r == "." {
			break
		}
	}
	return nil
}
