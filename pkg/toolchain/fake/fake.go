// Package fake provides stand-ins for the external build tools.  The
// fake compiler derives its module deterministically from the source
// files it can see, so two builds agree exactly when their inputs do.
package fake

import (
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/the-maldridge/scbuild/pkg/graph"
	"github.com/the-maldridge/scbuild/pkg/manifest"
	"github.com/the-maldridge/scbuild/pkg/source"
	"github.com/the-maldridge/scbuild/pkg/toolchain"
)

// Compiler writes output/<name>.wasm and output/<name>.abi.json.  The
// module's bytes digest every source file of the contract and of the
// directories listed in Dependencies, which are relative to the
// contract.  A missing wasm/Cargo.lock is generated first, like
// cargo would.
type Compiler struct {
	Dependencies []string

	// Embeds are further files, relative to the contract, that the
	// module digests whatever their name, as include_bytes! would.
	// A missing one contributes nothing.
	Embeds []string

	// FailWith makes Build fail with that exit code.
	FailWith int

	Requests []toolchain.BuildRequest
}

// Build implements toolchain.Compiler.
func (c *Compiler) Build(r toolchain.BuildRequest) error {
	c.Requests = append(c.Requests, r)
	if c.FailWith != 0 {
		return toolchain.ErrToolFailed{Tool: "cargo", Code: c.FailWith}
	}

	name, _, err := manifest.NameAndVersion(r.ContractDir)
	if err != nil {
		return err
	}

	lock := filepath.Join(r.ContractDir, "wasm", "Cargo.lock")
	if _, err := os.Stat(lock); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(lock), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(lock, []byte("# locked for "+name+"\n"), 0644); err != nil {
			return err
		}
	}

	h := sha256.New()
	for _, d := range append([]string{"."}, c.Dependencies...) {
		dir := filepath.Join(r.ContractDir, d)
		files, err := source.ListFiles(dir, source.IsSourceFile)
		if err != nil {
			return err
		}
		for _, f := range files {
			rel, _ := filepath.Rel(r.ContractDir, f)
			content, err := os.ReadFile(f)
			if err != nil {
				return err
			}
			h.Write([]byte(filepath.ToSlash(rel)))
			h.Write(content)
		}
	}

	for _, e := range c.Embeds {
		content, err := os.ReadFile(filepath.Join(r.ContractDir, e))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		h.Write([]byte(e))
		h.Write(content)
	}

	out := filepath.Join(r.ContractDir, "output")
	if err := os.MkdirAll(out, 0755); err != nil {
		return err
	}
	module := append([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, h.Sum(nil)...)
	if err := os.WriteFile(filepath.Join(out, name+".wasm"), module, 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(out, name+".abi.json"), []byte(`{"name": "`+name+`"}`), 0644)
}

// Disassembler writes a stub text form and reports fixed imports.
type Disassembler struct {
	Imported []string
}

// ToText implements toolchain.Disassembler.
func (d *Disassembler) ToText(wasm, out string) error {
	if _, err := os.Stat(wasm); err != nil {
		return err
	}
	return os.WriteFile(out, []byte("(module)\n"), 0644)
}

// Imports implements toolchain.Disassembler.
func (d *Disassembler) Imports(wasm string) ([]string, error) {
	if _, err := os.Stat(wasm); err != nil {
		return nil, err
	}
	if d.Imported == nil {
		return []string{"signalError"}, nil
	}
	return d.Imported, nil
}

// Querier answers metadata queries from a static dependency table.
// Deps maps package names to their local dependencies, given as
// package name and path relative to the queried directory.
type Querier struct {
	Deps map[string][]graph.MetadataDependency
}

// Query implements graph.MetadataQuerier.  Relative dependency paths
// are made absolute against dir, as cargo reports them.  Like cargo,
// it fails when the nearest enclosing workspace lists a member whose
// manifest is missing.
func (q *Querier) Query(dir string) (*graph.Metadata, error) {
	if q.Deps == nil {
		return nil, errors.New("no metadata")
	}
	if err := checkWorkspace(dir); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(q.Deps))
	for n := range q.Deps {
		names = append(names, n)
	}
	sort.Strings(names)

	md := &graph.Metadata{}
	for _, n := range names {
		p := graph.MetadataPackage{Name: n}
		for _, d := range q.Deps[n] {
			if d.Path != "" && !strings.HasPrefix(d.Path, "/") {
				d.Path = filepath.Join(dir, d.Path)
			}
			p.Dependencies = append(p.Dependencies, d)
		}
		md.Packages = append(md.Packages, p)
	}
	return md, nil
}

func checkWorkspace(dir string) error {
	for d := dir; ; {
		members, ok, err := manifest.Workspace(d)
		if err != nil {
			return err
		}
		if ok {
			for _, m := range members {
				if strings.ContainsAny(m, "*?[") {
					continue
				}
				if _, err := os.Stat(filepath.Join(d, m, manifest.Filename)); err != nil {
					return toolchain.ErrToolFailed{
						Tool:   "cargo metadata",
						Code:   101,
						Stderr: "failed to load manifest for workspace member " + m,
					}
				}
			}
			return nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return nil
		}
		d = parent
	}
}
