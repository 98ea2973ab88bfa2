package builder

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/archive"
	"github.com/the-maldridge/scbuild/pkg/artifacts"
	"github.com/the-maldridge/scbuild/pkg/config"
	"github.com/the-maldridge/scbuild/pkg/toolchain"
	"github.com/the-maldridge/scbuild/pkg/toolchain/fake"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func sampleProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Cargo.toml":                    "[workspace]\nmembers = [\"farm-staking\", \"pair\"]\n",
		"common/Cargo.toml":             "[package]\nname = \"common\"\n",
		"common/src/lib.rs":             "pub fn shared() {}\n",
		"farm-staking/Cargo.toml":       "[package]\nname = \"farm-staking\"\nversion = \"0.0.0\"\n",
		"farm-staking/multiversx.json":  "{\"language\": \"rust\"}",
		"farm-staking/src/lib.rs":       "#![no_std]\n",
		"farm-staking/meta/Cargo.toml":  "[package]\nname = \"farm-staking-meta\"\n",
		"farm-staking/meta/src/main.rs": "fn main() {}\n",
		"farm-staking/wasm/Cargo.toml":  "[package]\nname = \"farm-staking-wasm\"\n",
		"farm-staking/wasm/src/lib.rs":  "// wasm\n",
		"farm-staking/README.md":        "docs\n",
		"pair/Cargo.toml":               "[package]\nname = \"pair\"\nversion = \"1.2.0\"\n",
		"pair/elrond.json":              "{}",
		"pair/src/lib.rs":               "#![no_std]\n",
	})
	return root
}

func newBuilder(c toolchain.Compiler, opts ...Option) *Builder {
	return New(append([]Option{
		WithLogger(hclog.NewNullLogger()),
		WithCompiler(c),
		WithDisassembler(&fake.Disassembler{}),
	}, opts...)...)
}

func TestRunAllContracts(t *testing.T) {
	project := sampleProject(t)
	out := t.TempDir()

	acc, err := newBuilder(&fake.Compiler{}).Run(Options{ProjectDir: project, OutputDir: out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := acc.Contracts(); !reflect.DeepEqual(got, []string{"farm-staking", "pair"}) {
		t.Errorf("Contracts = %v", got)
	}

	m, err := artifacts.LoadManifest(filepath.Join(out, artifacts.ManifestFilename))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("manifest has %d contracts, want 2", len(m))
	}
	for name, set := range m {
		for _, k := range artifacts.Kinds {
			if set[k.Kind] == "" {
				t.Errorf("%s: no %s", name, k.Kind)
			}
		}
	}
	if m["pair"][artifacts.SrcArchive] != "pair-src-1.2.0.zip" {
		t.Errorf("pair srcArchive = %q", m["pair"][artifacts.SrcArchive])
	}
	if m["farm-staking"][artifacts.SrcPackage] != "farm-staking-0.0.0.source.json" {
		t.Errorf("farm-staking srcPackage = %q", m["farm-staking"][artifacts.SrcPackage])
	}
	if len(m["farm-staking"][artifacts.CodeHash]) != 64 {
		t.Errorf("codehash = %q", m["farm-staking"][artifacts.CodeHash])
	}
}

func TestRunArchives(t *testing.T) {
	project := sampleProject(t)
	out := t.TempDir()

	if _, err := newBuilder(&fake.Compiler{}).Run(Options{ProjectDir: project, OutputDir: out, Contract: "farm-staking"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	dir := filepath.Join(out, "farm-staking")

	src, err := archive.ListEntries(filepath.Join(dir, "farm-staking-src-0.0.0.zip"))
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	wantSrc := []string{
		"Cargo.toml",
		"meta/Cargo.toml",
		"meta/src/main.rs",
		"multiversx.json",
		"src/lib.rs",
		"wasm/Cargo.lock",
		"wasm/Cargo.toml",
		"wasm/src/lib.rs",
	}
	if !reflect.DeepEqual(src, wantSrc) {
		t.Errorf("source archive = %v, want %v", src, wantSrc)
	}

	output, err := archive.ListEntries(filepath.Join(dir, "farm-staking-output-0.0.0.zip"))
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	wantOut := []string{
		"farm-staking.abi.json",
		"farm-staking.codehash.txt",
		"farm-staking.imports.json",
		"farm-staking.wasm",
		"farm-staking.wat",
	}
	if !reflect.DeepEqual(output, wantOut) {
		t.Errorf("output archive = %v, want %v", output, wantOut)
	}

	if _, err := os.Stat(filepath.Join(project, "farm-staking", "wasm", "Cargo.lock")); err != nil {
		t.Errorf("lock file not promoted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "pair")); !os.IsNotExist(err) {
		t.Errorf("skipped contract has an output directory")
	}
}

func TestRunOversizedArchivesStillProduced(t *testing.T) {
	project := sampleProject(t)
	out := t.TempDir()

	var logs bytes.Buffer
	b := newBuilder(&fake.Compiler{}, WithArchiveLimits(1, 1),
		WithLogger(hclog.New(&hclog.LoggerOptions{Output: &logs})))
	acc, err := b.Run(Options{ProjectDir: project, OutputDir: out, Contract: "pair"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	set, _ := acc.Get("pair")
	for _, k := range []string{artifacts.SrcArchive, artifacts.Output} {
		if _, err := os.Stat(filepath.Join(out, "pair", set[k])); err != nil {
			t.Errorf("%s missing: %v", k, err)
		}
	}
	if n := strings.Count(logs.String(), "too large"); n != 2 {
		t.Errorf("%d size warnings logged, want 2: %q", n, logs.String())
	}
}

func TestRunCompilerFailureAborts(t *testing.T) {
	project := sampleProject(t)
	out := t.TempDir()

	_, err := newBuilder(&fake.Compiler{FailWith: 101}).Run(Options{ProjectDir: project, OutputDir: out})
	var failed toolchain.ErrToolFailed
	if !errors.As(err, &failed) || failed.ExitCode() != 101 {
		t.Fatalf("Run error = %v, want tool failure with status 101", err)
	}
	if _, err := os.Stat(filepath.Join(out, artifacts.ManifestFilename)); !os.IsNotExist(err) {
		t.Error("manifest written despite a failed build")
	}
}

func TestRunConfigErrors(t *testing.T) {
	project := sampleProject(t)
	b := newBuilder(&fake.Compiler{})

	cases := []Options{
		{ProjectDir: project},
		{OutputDir: t.TempDir()},
		{ProjectDir: project, OutputDir: t.TempDir(), Contract: "does-not-exist"},
	}
	for i, o := range cases {
		_, err := b.Run(o)
		var cfg ErrConfig
		if !errors.As(err, &cfg) {
			t.Errorf("case %d: error = %v, want ErrConfig", i, err)
		}
	}

	if _, err := New().Run(Options{ProjectDir: project, OutputDir: t.TempDir()}); err == nil {
		t.Error("Run without a toolchain should fail")
	}
}

func TestRunIsolatesScratch(t *testing.T) {
	project := sampleProject(t)
	scratch := t.TempDir()

	if _, err := newBuilder(&fake.Compiler{}).Run(Options{ProjectDir: project, OutputDir: t.TempDir(), ScratchRoot: scratch}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	left, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("scratch directories left behind: %v", left)
	}
	if _, err := os.Stat(filepath.Join(project, "farm-staking", "output")); !os.IsNotExist(err) {
		t.Error("the build wrote into the live project")
	}
}

func TestWithConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Archive.SourceMax = 10
	cfg.Archive.OutputMax = 20

	b := New(WithConfig(cfg))
	if _, ok := b.compiler.(*toolchain.Cargo); !ok {
		t.Errorf("compiler = %T, want cargo", b.compiler)
	}
	if _, ok := b.disassembler.(*toolchain.Wabt); !ok {
		t.Errorf("disassembler = %T, want wabt", b.disassembler)
	}
	if b.resolver == nil {
		t.Error("no resolver configured")
	}
	if b.srcArchiver.MaxSize() != 10 || b.outArchiver.MaxSize() != 20 {
		t.Errorf("ceilings = %d, %d", b.srcArchiver.MaxSize(), b.outArchiver.MaxSize())
	}

	c := &fake.Compiler{}
	if b := New(WithCompiler(c), WithConfig(cfg)); b.compiler != c {
		t.Error("explicit compiler replaced by the configured one")
	}
}

func TestRunAfterVersionBump(t *testing.T) {
	project := sampleProject(t)
	out := t.TempDir()
	b := newBuilder(&fake.Compiler{})

	if _, err := b.Run(Options{ProjectDir: project, OutputDir: out, Contract: "pair"}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	writeTree(t, project, map[string]string{
		"pair/Cargo.toml": "[package]\nname = \"pair\"\nversion = \"1.3.0\"\n",
	})
	acc, err := b.Run(Options{ProjectDir: project, OutputDir: out, Contract: "pair"})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	set, _ := acc.Get("pair")
	want := map[string]string{
		artifacts.SrcPackage: "pair-1.3.0.source.json",
		artifacts.SrcArchive: "pair-src-1.3.0.zip",
		artifacts.Output:     "pair-output-1.3.0.zip",
	}
	for k, v := range want {
		if set[k] != v {
			t.Errorf("%s = %q, want %q", k, set[k], v)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "pair", "pair-1.2.0.source.json")); !os.IsNotExist(err) {
		t.Error("output of the earlier version left behind")
	}
}
