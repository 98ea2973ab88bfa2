package graph

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// New returns a resolver.  Without options it logs nowhere and
// excludes packages whose names contain DefaultMockMarker; a querier
// must be supplied before Resolve is called.
func New(opts ...Option) *Resolver {
	x := Resolver{
		l:        hclog.NewNullLogger(),
		excluded: NameContains(DefaultMockMarker),
	}
	for _, o := range opts {
		o(&x)
	}
	return &x
}

// Resolve returns the local dependencies of the package pkgName whose
// sources live in contractDir.  Each dependency appears once, at the
// depth it was first reached by a depth first walk.  Excluded
// packages are left out together with anything only reachable
// through them.
func (r *Resolver) Resolve(contractDir, pkgName string) ([]Edge, error) {
	if r.querier == nil {
		return nil, errors.New("no metadata querier configured")
	}
	md, err := r.querier.Query(contractDir)
	if err != nil {
		return nil, err
	}
	return r.ResolveMetadata(md, contractDir, pkgName)
}

// ResolveMetadata is Resolve over already obtained metadata.
func (r *Resolver) ResolveMetadata(md *Metadata, contractDir, pkgName string) ([]Edge, error) {
	w := walk{
		r:        r,
		pkgs:     make(map[string]*MetadataPackage, len(md.Packages)),
		visited:  make(map[string]struct{}),
		seenPath: map[string]struct{}{".": {}},
		base:     contractDir,
	}
	for i := range md.Packages {
		p := &md.Packages[i]
		if _, dup := w.pkgs[p.Name]; !dup {
			w.pkgs[p.Name] = p
		}
	}

	if err := w.visit(pkgName, 0); err != nil {
		return nil, err
	}
	r.l.Debug("Resolved local dependencies", "package", pkgName, "count", len(w.edges))
	return w.edges, nil
}

// CheckPresent verifies that every edge resolved for contractDir
// exists on disk.
func CheckPresent(contractDir string, edges []Edge) error {
	for _, e := range edges {
		p := e.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(contractDir, p)
		}
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			return ErrMissingDependency{Path: p}
		}
	}
	return nil
}

type walk struct {
	r *Resolver

	pkgs     map[string]*MetadataPackage
	visited  map[string]struct{}
	seenPath map[string]struct{}
	base     string

	edges []Edge
}

func (w *walk) visit(name string, depth int) error {
	if _, ok := w.visited[name]; ok {
		return nil
	}
	if w.r.excluded != nil && w.r.excluded(name) {
		w.r.l.Trace("Skipping excluded package", "package", name)
		return nil
	}
	w.visited[name] = struct{}{}
	w.r.l.Trace(strings.Repeat("    ", depth)+"visiting", "package", name, "depth", depth)

	pkg, ok := w.pkgs[name]
	if !ok {
		return NewErrUnknownPackage(name)
	}

	for _, dep := range pkg.Dependencies {
		if !dep.Local() {
			continue
		}
		if w.r.excluded != nil && w.r.excluded(dep.Name) {
			continue
		}
		w.record(dep, depth+1)
		if err := w.visit(dep.Name, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *walk) record(dep MetadataDependency, depth int) {
	p := dep.Path
	if filepath.IsAbs(p) && w.base != "" {
		if rel, err := filepath.Rel(w.base, p); err == nil {
			p = rel
		}
	}
	p = filepath.Clean(p)
	if _, ok := w.seenPath[p]; ok {
		return
	}
	w.seenPath[p] = struct{}{}
	w.edges = append(w.edges, Edge{Name: dep.Name, Path: p, Depth: depth})
}
