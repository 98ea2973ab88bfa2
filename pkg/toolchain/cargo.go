package toolchain

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/graph"
)

// NewCargo returns a cargo driver using the given binary, "cargo" if
// empty.
func NewCargo(l hclog.Logger, bin string) *Cargo {
	if bin == "" {
		bin = "cargo"
	}
	return &Cargo{
		l:   l.Named("cargo"),
		bin: bin,
	}
}

// BuildArgs returns the arguments of the build command for r.
func (c *Cargo) BuildArgs(r BuildRequest) []string {
	args := []string{"run", "build"}
	if r.TargetDir != "" {
		args = append(args, "--target-dir", r.TargetDir)
	}
	if r.NoWasmOpt {
		args = append(args, "--no-wasm-opt")
	}
	// Cargo refuses to build with --locked when the lock file is
	// missing or stale.
	if _, err := os.Stat(filepath.Join(r.ContractDir, "wasm", "Cargo.lock")); err == nil {
		args = append(args, "--locked")
	}
	return args
}

// Build runs the contract's meta crate, which compiles the contract
// and writes the binary module below ContractDir/output.
func (c *Cargo) Build(r BuildRequest) error {
	args := c.BuildArgs(r)
	c.l.Info("Building", "contract", r.ContractDir, "args", args)

	cmd := exec.Command(c.bin, args...)
	cmd.Dir = filepath.Join(r.ContractDir, "meta")
	out := c.l.StandardWriter(&hclog.StandardLoggerOptions{InferLevels: true})
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return toolError(c.bin, err)
	}
	return nil
}

// Query returns the workspace metadata as seen from dir.
func (c *Cargo) Query(dir string) (*graph.Metadata, error) {
	c.l.Debug("Querying metadata", "dir", dir)
	cmd := exec.Command(c.bin, "metadata", "--format-version=1")
	cmd.Dir = dir
	dump, err := cmd.Output()
	if err != nil {
		err = toolError(c.bin+" metadata", err)
		c.l.Error("Could not query metadata", "dir", dir, "error", err)
		return nil, err
	}

	md := new(graph.Metadata)
	if err := json.Unmarshal(dump, md); err != nil {
		return nil, err
	}
	c.l.Trace("Loaded metadata", "packages", len(md.Packages))
	return md, nil
}
