package graph

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type fakeQuerier struct {
	md   *Metadata
	dirs []string
}

func (f *fakeQuerier) Query(dir string) (*Metadata, error) {
	f.dirs = append(f.dirs, dir)
	return f.md, nil
}

func pkg(name string, deps ...MetadataDependency) MetadataPackage {
	return MetadataPackage{Name: name, Dependencies: deps}
}

func local(name, path string) MetadataDependency {
	return MetadataDependency{Name: name, Path: path}
}

func registry(name string) MetadataDependency {
	return MetadataDependency{Name: name}
}

func TestResolveCycle(t *testing.T) {
	md := &Metadata{Packages: []MetadataPackage{
		pkg("farm", local("common", "/ws/common"), registry("multiversx-sc")),
		pkg("common", local("farm", "/ws/farm"), local("utils", "/ws/utils")),
		pkg("utils"),
	}}
	q := &fakeQuerier{md: md}

	edges, err := New(WithQuerier(q)).Resolve("/ws/farm", "farm")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []Edge{
		{Name: "common", Path: "../common", Depth: 1},
		{Name: "utils", Path: "../utils", Depth: 2},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("Resolve = %+v, want %+v", edges, want)
	}
	if len(q.dirs) != 1 || q.dirs[0] != "/ws/farm" {
		t.Errorf("querier called with %v", q.dirs)
	}
}

func TestResolveDiamondIsUnique(t *testing.T) {
	md := &Metadata{Packages: []MetadataPackage{
		pkg("pair", local("a", "/ws/a"), local("b", "/ws/b")),
		pkg("a", local("shared", "/ws/shared")),
		pkg("b", local("shared", "/ws/shared")),
		pkg("shared"),
	}}

	edges, err := New().ResolveMetadata(md, "/ws/pair", "pair")
	if err != nil {
		t.Fatalf("ResolveMetadata: %v", err)
	}
	seen := map[string]int{}
	for _, e := range edges {
		seen[e.Path]++
	}
	for p, n := range seen {
		if n != 1 {
			t.Errorf("path %s appears %d times", p, n)
		}
	}
	if len(edges) != 3 {
		t.Errorf("got %d edges, want 3: %+v", len(edges), edges)
	}
}

func TestResolveSkipsMocks(t *testing.T) {
	md := &Metadata{Packages: []MetadataPackage{
		pkg("farm", local("farm-mock", "/ws/mocks/farm-mock"), local("common", "/ws/common")),
		pkg("common", local("farm-mock", "/ws/mocks/farm-mock")),
		pkg("farm-mock", local("only-from-mock", "/ws/only")),
		pkg("only-from-mock"),
	}}

	edges, err := New().ResolveMetadata(md, "/ws/farm", "farm")
	if err != nil {
		t.Fatalf("ResolveMetadata: %v", err)
	}
	want := []Edge{{Name: "common", Path: "../common", Depth: 1}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("ResolveMetadata = %+v, want %+v", edges, want)
	}
}

func TestResolveCustomExclusion(t *testing.T) {
	md := &Metadata{Packages: []MetadataPackage{
		pkg("farm", local("farm-mock", "/ws/farm-mock"), local("fake-oracle", "/ws/fake")),
		pkg("farm-mock"),
		pkg("fake-oracle"),
	}}

	edges, err := New(WithMockMarker("fake")).ResolveMetadata(md, "/ws/farm", "farm")
	if err != nil {
		t.Fatalf("ResolveMetadata: %v", err)
	}
	if len(edges) != 1 || edges[0].Name != "farm-mock" {
		t.Errorf("ResolveMetadata = %+v, want only farm-mock", edges)
	}
}

func TestResolveUnknownPackage(t *testing.T) {
	md := &Metadata{Packages: []MetadataPackage{
		pkg("farm", local("ghost", "/ws/ghost")),
	}}

	_, err := New().ResolveMetadata(md, "/ws/farm", "farm")
	var unknown ErrUnknownPackage
	if !errors.As(err, &unknown) {
		t.Fatalf("ResolveMetadata error = %v, want ErrUnknownPackage", err)
	}
	if unknown.Name != "ghost" {
		t.Errorf("unknown package = %q", unknown.Name)
	}
}

func TestResolveWithoutQuerier(t *testing.T) {
	if _, err := New().Resolve("/ws/farm", "farm"); err == nil {
		t.Fatal("Resolve should fail without a querier")
	}
}

func TestCheckPresent(t *testing.T) {
	root := t.TempDir()
	contract := filepath.Join(root, "farm")
	if err := os.MkdirAll(filepath.Join(root, "common"), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := CheckPresent(contract, []Edge{{Path: "../common", Depth: 1}}); err != nil {
		t.Errorf("CheckPresent: %v", err)
	}
	err := CheckPresent(contract, []Edge{{Path: "../missing", Depth: 1}})
	var missing ErrMissingDependency
	if !errors.As(err, &missing) {
		t.Errorf("CheckPresent error = %v, want ErrMissingDependency", err)
	}
}
