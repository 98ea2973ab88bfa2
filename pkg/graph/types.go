package graph

import (
	"github.com/hashicorp/go-hclog"
)

// Metadata is the subset of the workspace metadata document that the
// resolver walks.
type Metadata struct {
	Packages []MetadataPackage `json:"packages"`
}

// MetadataPackage is one package known to the workspace.
type MetadataPackage struct {
	Name         string               `json:"name"`
	Version      string               `json:"version"`
	ManifestPath string               `json:"manifest_path"`
	Dependencies []MetadataDependency `json:"dependencies"`
}

// MetadataDependency is a declared dependency of a package.  Path is
// only set for dependencies given as filesystem locations.
type MetadataDependency struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// Local reports whether the dependency lives inside the workspace.
func (d MetadataDependency) Local() bool {
	return d.Path != ""
}

// An Edge is one resolved local dependency.  Path is relative to the
// contract that was resolved, Depth counts hops from that contract.
type Edge struct {
	Name  string
	Path  string
	Depth int
}

// A MetadataQuerier produces the dependency metadata of the workspace
// a contract directory belongs to.
type MetadataQuerier interface {
	Query(dir string) (*Metadata, error)
}

// Resolver computes the local dependency closure of contracts.
type Resolver struct {
	l hclog.Logger

	querier  MetadataQuerier
	excluded func(name string) bool
}

// Option configures a Resolver.
type Option func(*Resolver)
