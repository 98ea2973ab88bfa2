// Package artifacts keeps track of what a build produced for every
// contract and writes the run's artifacts manifest.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/source"
)

// Artifact kinds recorded per contract.
const (
	Bytecode   = "bytecode"
	Text       = "text"
	ABI        = "abi"
	Imports    = "imports"
	CodeHash   = "codehash"
	SrcPackage = "srcPackage"
	SrcArchive = "srcArchive"
	Output     = "output"
)

// Kinds lists every artifact kind together with the file pattern
// that locates it in a contract's output directory.
var Kinds = []struct {
	Kind    string
	Pattern string
}{
	{Bytecode, "*.wasm"},
	{Text, "*.wat"},
	{ABI, "*.abi.json"},
	{Imports, "*.imports.json"},
	{CodeHash, "*.codehash.txt"},
	{SrcPackage, "*.source.json"},
	{SrcArchive, "*-src-*.zip"},
	{Output, "*-output-*.zip"},
}

// ManifestFilename is the name of the manifest in the output root.
const ManifestFilename = "artifacts.json"

// A Set maps artifact kinds to file names, or to the hash itself for
// CodeHash.
type Set map[string]string

// Accumulator collects artifact sets over a run.
type Accumulator struct {
	l         hclog.Logger
	contracts map[string]Set
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator(l hclog.Logger) *Accumulator {
	return &Accumulator{
		l:         l.Named("artifacts"),
		contracts: make(map[string]Set),
	}
}

// Add records a single artifact.
func (a *Accumulator) Add(contract, kind, value string) {
	if _, ok := a.contracts[contract]; !ok {
		a.contracts[contract] = make(Set)
	}
	a.contracts[contract][kind] = value
}

// Gather records every artifact kind found in a contract's output
// directory.  A kind with no matching file is an error.
func (a *Accumulator) Gather(contract, dir string) error {
	for _, k := range Kinds {
		file, err := FindFile(a.l, dir, k.Pattern)
		if err != nil {
			return err
		}
		if k.Kind != CodeHash {
			a.Add(contract, k.Kind, filepath.Base(file))
			continue
		}
		hash, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		a.Add(contract, CodeHash, strings.TrimSpace(string(hash)))
	}
	return nil
}

// Get returns the artifact set of a contract.
func (a *Accumulator) Get(contract string) (Set, bool) {
	s, ok := a.contracts[contract]
	return s, ok
}

// Contracts returns the sorted names of all recorded contracts.
func (a *Accumulator) Contracts() []string {
	names := make([]string, 0, len(a.contracts))
	for n := range a.contracts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dump writes the manifest to file.
func (a *Accumulator) Dump(file string) error {
	data, err := json.MarshalIndent(a.contracts, "", "    ")
	if err != nil {
		return err
	}
	a.l.Info("Writing artifacts manifest", "file", file, "contracts", len(a.contracts))
	return os.WriteFile(file, data, 0644)
}

// LoadManifest reads a manifest written by Dump.
func LoadManifest(file string) (map[string]Set, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	m := make(map[string]Set)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// FindFile returns the first file below dir whose name matches the
// glob pattern.  Several matches are tolerated with a warning, none
// is an error.
func FindFile(l hclog.Logger, dir, pattern string) (string, error) {
	files, err := source.ListFiles(dir, func(rel string) bool {
		ok, _ := path.Match(pattern, path.Base(rel))
		return ok
	})
	if err != nil {
		return "", err
	}

	switch len(files) {
	case 0:
		return "", fmt.Errorf("no file matches pattern [%s] in folder %s", pattern, dir)
	case 1:
	default:
		l.Warn("More files match pattern, will pick first", "pattern", pattern, "dir", dir, "files", files)
	}
	return files[0], nil
}
