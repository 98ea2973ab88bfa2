package archive

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zip"

	"github.com/the-maldridge/scbuild/pkg/source"
)

func writeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(p, content, 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func TestBuildArchiveSourceSelection(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"Cargo.toml":      []byte("[package]"),
		"src/lib.rs":      []byte("fn x() {}"),
		"meta/Cargo.lock": []byte("lock"),
		"wasm/Cargo.lock": []byte("lock"),
		"output/x.wasm":   []byte("\x00asm"),
		"notes.md":        []byte("n"),
	})

	out := filepath.Join(t.TempDir(), "x-src-0.0.0.zip")
	a := New(hclog.NewNullLogger(), 0)
	size, err := a.BuildArchive(out, dir, source.IsSourceFile)
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	if size <= 0 {
		t.Errorf("size = %d", size)
	}

	got, err := ListEntries(out)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	want := []string{"Cargo.toml", "src/lib.rs", "wasm/Cargo.lock"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestBuildArchiveAllFilesAndContent(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"x.wasm":         {0x00, 0x61, 0x73, 0x6d, 0x01},
		"x.abi.json":     []byte("{}"),
		"nested/x.wat":   []byte("(module)"),
		"x.codehash.txt": []byte("ab"),
		"x.imports.json": []byte("[]"),
	}
	writeTree(t, dir, files)

	out := filepath.Join(t.TempDir(), "x-output-0.0.0.zip")
	if _, err := New(hclog.NewNullLogger(), 0).BuildArchive(out, dir, nil); err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}

	r, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()
	if len(r.File) != len(files) {
		t.Fatalf("archive has %d entries, want %d", len(r.File), len(files))
	}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("ReadAll %s: %v", f.Name, err)
		}
		if !bytes.Equal(data, files[f.Name]) {
			t.Errorf("%s content = %q, want %q", f.Name, data, files[f.Name])
		}
	}
}

func TestBuildArchiveOversizeIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	noise := make([]byte, 64*1024)
	rand.New(rand.NewSource(1)).Read(noise)
	writeTree(t, dir, map[string][]byte{"src/big.rs": noise})

	out := filepath.Join(t.TempDir(), "big-src-0.0.0.zip")
	var logs bytes.Buffer
	a := New(hclog.New(&hclog.LoggerOptions{Output: &logs}), 1024)
	size, err := a.BuildArchive(out, dir, source.IsSourceFile)
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	if size <= a.MaxSize() {
		t.Fatalf("size %d should exceed ceiling %d", size, a.MaxSize())
	}
	entries, err := ListEntries(out)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if !reflect.DeepEqual(entries, []string{"src/big.rs"}) {
		t.Errorf("entries = %v", entries)
	}
	if !strings.Contains(logs.String(), "too large") {
		t.Errorf("no size warning logged: %q", logs.String())
	}
}

func TestNames(t *testing.T) {
	src, out := Names("farm", "1.0.0")
	if src != "farm-src-1.0.0.zip" || out != "farm-output-1.0.0.zip" {
		t.Errorf("Names = %s, %s", src, out)
	}
}
