package graph

import (
	"strings"

	"github.com/hashicorp/go-hclog"
)

// DefaultMockMarker is the package name fragment that marks test
// doubles.
const DefaultMockMarker = "mock"

// WithLogger sets up the logging instance for the resolver.
func WithLogger(l hclog.Logger) Option {
	return func(r *Resolver) {
		r.l = l.Named("graph")
	}
}

// WithQuerier provides the source of workspace metadata.
func WithQuerier(q MetadataQuerier) Option {
	return func(r *Resolver) {
		r.querier = q
	}
}

// WithExcludePredicate replaces the rule deciding which packages are
// never shipped with a contract's sources.
func WithExcludePredicate(f func(string) bool) Option {
	return func(r *Resolver) {
		r.excluded = f
	}
}

// WithMockMarker excludes every package whose name contains marker.
// An empty marker excludes nothing.
func WithMockMarker(marker string) Option {
	return WithExcludePredicate(NameContains(marker))
}

// NameContains returns a predicate matching names containing marker.
func NameContains(marker string) func(string) bool {
	return func(name string) bool {
		return marker != "" && strings.Contains(name, marker)
	}
}
