package builder

import (
	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/config"
	"github.com/the-maldridge/scbuild/pkg/graph"
	"github.com/the-maldridge/scbuild/pkg/toolchain"
)

// WithLogger sets the parent logger.
func WithLogger(l hclog.Logger) Option {
	return func(b *Builder) {
		b.l = l.Named("builder")
	}
}

// WithCompiler sets the contract compiler.
func WithCompiler(c toolchain.Compiler) Option {
	return func(b *Builder) {
		b.compiler = c
	}
}

// WithDisassembler sets the tool producing text and import listings.
func WithDisassembler(d toolchain.Disassembler) Option {
	return func(b *Builder) {
		b.disassembler = d
	}
}

// WithResolver enables shipping local dependencies inside packaged
// sources.  Without a resolver only the contract's own tree and the
// workspace files above it are packaged.
func WithResolver(r *graph.Resolver) Option {
	return func(b *Builder) {
		b.resolver = r
	}
}

// WithArchiveLimits sets the size ceilings of the source and output
// archives.
func WithArchiveLimits(src, out int64) Option {
	return func(b *Builder) {
		b.srcMax = src
		b.outMax = out
	}
}

// WithConfig wires the real toolchain named in c: cargo as compiler
// and metadata source, wabt as disassembler, the configured mock
// marker and archive ceilings.  Collaborators set by other options
// are kept.
func WithConfig(c *config.Config) Option {
	return func(b *Builder) {
		b.cfg = c
	}
}
