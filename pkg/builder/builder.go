// Package builder drives the build of every contract in a project:
// compile, post-process the binary module, archive and package the
// sources, and record what was produced.
package builder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/archive"
	"github.com/the-maldridge/scbuild/pkg/artifacts"
	"github.com/the-maldridge/scbuild/pkg/graph"
	"github.com/the-maldridge/scbuild/pkg/manifest"
	"github.com/the-maldridge/scbuild/pkg/packaged"
	"github.com/the-maldridge/scbuild/pkg/source"
	"github.com/the-maldridge/scbuild/pkg/toolchain"
)

// New returns a builder.  A compiler and a disassembler must be
// provided for Run to succeed.
func New(opts ...Option) *Builder {
	x := Builder{
		l: hclog.NewNullLogger(),
	}
	for _, o := range opts {
		o(&x)
	}
	if x.cfg != nil {
		x.fromConfig()
	}
	x.srcArchiver = archive.New(x.l, x.srcMax)
	x.outArchiver = archive.New(x.l, x.outMax)
	return &x
}

func (b *Builder) fromConfig() {
	cargo := toolchain.NewCargo(b.l, b.cfg.Tools.Cargo)
	if b.compiler == nil {
		b.compiler = cargo
	}
	if b.disassembler == nil {
		b.disassembler = toolchain.NewWabt(b.l, b.cfg.Tools.Wasm2Wat, b.cfg.Tools.WasmObjdump)
	}
	if b.resolver == nil {
		b.resolver = graph.New(
			graph.WithLogger(b.l),
			graph.WithQuerier(cargo),
			graph.WithMockMarker(b.cfg.Resolver.MockMarker),
		)
	}
	if b.srcMax == 0 && b.outMax == 0 {
		b.srcMax = b.cfg.Archive.SourceMax
		b.outMax = b.cfg.Archive.OutputMax
	}
}

// Run builds the contracts of a project one after the other, in
// sorted order, and writes the artifacts manifest once all of them
// succeeded.  The first failing contract aborts the run.
func (b *Builder) Run(o Options) (*artifacts.Accumulator, error) {
	start := time.Now()

	if o.OutputDir == "" {
		return nil, NewErrConfig("an output directory must be provided")
	}
	if b.compiler == nil || b.disassembler == nil {
		return nil, NewErrConfig("no compiler or disassembler configured")
	}

	scratch, err := os.MkdirTemp(o.ScratchRoot, "scbuild-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	projectDir, err := b.obtainProject(o, scratch)
	if err != nil {
		return nil, err
	}

	contracts, err := manifest.DiscoverContracts(projectDir)
	if err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		b.l.Warn("No contracts found", "project", projectDir)
	}

	// The whole project is copied so that local dependencies are
	// available to the build.
	buildRoot := filepath.Join(scratch, "build")
	b.l.Debug("Copying project to build directory", "project", projectDir, "build", buildRoot)
	if err := copyTree(projectDir, buildRoot); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(o.OutputDir, 0755); err != nil {
		return nil, err
	}

	acc := artifacts.NewAccumulator(b.l)
	for _, contractDir := range contracts {
		if err := b.buildContract(o, acc, projectDir, buildRoot, contractDir); err != nil {
			return nil, err
		}
	}
	if o.Contract != "" && len(acc.Contracts()) == 0 {
		return nil, NewErrConfig("contract " + o.Contract + " was not found in the project")
	}

	if err := acc.Dump(filepath.Join(o.OutputDir, artifacts.ManifestFilename)); err != nil {
		return nil, err
	}

	b.l.Info("Build complete", "elapsed", time.Since(start), "uid", os.Getuid(), "gid", os.Getgid())
	return acc, nil
}

func (b *Builder) obtainProject(o Options, scratch string) (string, error) {
	switch {
	case o.ProjectDir != "":
		return filepath.Abs(o.ProjectDir)
	case o.ProjectGit != "":
		dir := filepath.Join(scratch, "checkout")
		repo := source.New(b.l)
		repo.Path = dir
		repo.Url = o.ProjectGit
		if err := repo.Bootstrap(); err != nil {
			return "", err
		}
		if o.ProjectRev != "" {
			if err := repo.Checkout(o.ProjectRev); err != nil {
				return "", err
			}
		}
		return dir, nil
	case o.PackagedProject != "":
		p, err := packaged.Fetch(b.l, o.PackagedProject)
		if err != nil {
			return "", err
		}
		dir := filepath.Join(scratch, "unwrapped")
		b.l.Info("Unwrapping packaged project", "name", p.Name, "version", p.Version, "dir", dir)
		if err := p.Unwrap(dir); err != nil {
			return "", err
		}
		return dir, nil
	}
	return "", NewErrConfig("one of a project folder, a git project or a packaged project must be provided")
}

func (b *Builder) buildContract(o Options, acc *artifacts.Accumulator, projectDir, buildRoot, contractDir string) error {
	name, version, err := manifest.NameAndVersion(contractDir)
	if err != nil {
		return err
	}
	if o.Contract != "" && name != o.Contract {
		b.l.Info("Skipping", "contract", name)
		return nil
	}
	b.l.Info("Contract", "name", name, "version", version)

	rel, err := filepath.Rel(projectDir, contractDir)
	if err != nil {
		return err
	}
	buildDir := filepath.Join(buildRoot, rel)
	// Outputs of an earlier run, possibly of another version, would
	// be picked up when gathering.
	outDir := filepath.Join(o.OutputDir, name)
	if err := os.RemoveAll(outDir); err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	// Externally generated build artifacts must not leak into the
	// build.
	b.clean(buildDir, true)
	req := toolchain.BuildRequest{ContractDir: buildDir, TargetDir: o.TargetDir, NoWasmOpt: o.NoWasmOpt}
	if err := b.compiler.Build(req); err != nil {
		b.l.Error("Build failed", "contract", name, "error", err)
		return err
	}
	if err := b.postProcess(filepath.Join(buildDir, "output")); err != nil {
		return err
	}
	if err := copyTree(filepath.Join(buildDir, "output"), outDir); err != nil {
		return err
	}

	// The output folder stays, the archives include it for debugging.
	b.clean(buildDir, false)
	b.promoteLock(buildDir, contractDir)

	deps, err := b.dependencies(buildDir, name)
	if err != nil {
		return err
	}

	// Archives are created after the build so that the lock files
	// are included.
	srcName, outName := archive.Names(name, version)
	if _, err := b.srcArchiver.BuildArchive(filepath.Join(outDir, srcName), buildDir, source.IsSourceFile); err != nil {
		return err
	}
	if _, err := b.outArchiver.BuildArchive(filepath.Join(outDir, outName), filepath.Join(buildDir, "output"), nil); err != nil {
		return err
	}

	pkg, err := packaged.FromProject(buildRoot, buildDir, deps)
	if err != nil {
		return err
	}
	if err := pkg.Save(filepath.Join(outDir, packaged.Filename(name, version))); err != nil {
		return err
	}
	b.l.Debug("Packaged sources", "contract", name, "entries", len(pkg.Entries))

	return acc.Gather(name, outDir)
}

// clean removes directories that usually hold build artifacts.
// Failures are ignored.
func (b *Builder) clean(dir string, output bool) {
	b.l.Debug("Cleaning", "dir", dir, "output", output)
	os.RemoveAll(filepath.Join(dir, "wasm", "target"))
	os.RemoveAll(filepath.Join(dir, "meta", "target"))
	if output {
		os.RemoveAll(filepath.Join(dir, "output"))
	}
}

// postProcess writes the text form, import list and code hash next to
// the binary module.
func (b *Builder) postProcess(outputDir string) error {
	wasm, err := artifacts.FindFile(b.l, outputDir, "*.wasm")
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(wasm, ".wasm")

	if err := b.disassembler.ToText(wasm, base+".wat"); err != nil {
		return err
	}

	imports, err := b.disassembler.Imports(wasm)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(imports, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+".imports.json", data, 0644); err != nil {
		return err
	}

	hash, err := toolchain.CodeHash(wasm)
	if err != nil {
		return err
	}
	b.l.Info("Code hash", "wasm", wasm, "hash", hash)
	return os.WriteFile(base+".codehash.txt", []byte(hash), 0644)
}

// promoteLock copies the lock file the build settled on back into
// the original contract directory.
func (b *Builder) promoteLock(buildDir, contractDir string) {
	from := filepath.Join(buildDir, "wasm", "Cargo.lock")
	to := filepath.Join(contractDir, "wasm", "Cargo.lock")
	info, err := os.Stat(from)
	if err != nil {
		b.l.Warn("No lock file to promote", "path", from)
		return
	}
	if err := copyFile(from, to, info.Mode().Perm()); err != nil {
		b.l.Warn("Could not promote lock file", "from", from, "to", to, "error", err)
	}
}

// dependencies returns the directories of the local dependencies of
// the contract in buildDir.
func (b *Builder) dependencies(buildDir, name string) ([]string, error) {
	if b.resolver == nil {
		return nil, nil
	}
	edges, err := b.resolver.Resolve(buildDir, name)
	if err != nil {
		return nil, err
	}
	if err := graph.CheckPresent(buildDir, edges); err != nil {
		return nil, err
	}

	dirs := make([]string, 0, len(edges))
	for _, e := range edges {
		b.l.Debug("Local dependency", "contract", name, "dependency", e.Name, "path", e.Path, "depth", e.Depth)
		p := e.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(buildDir, p)
		}
		dirs = append(dirs, p)
	}
	return dirs, nil
}
