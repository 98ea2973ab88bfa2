package verify

import (
	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/builder"
	"github.com/the-maldridge/scbuild/pkg/ledger"
)

// Output subdirectories of the two builds.
const (
	UsingProject     = "using-project"
	UsingPackagedSrc = "using-packaged-src"
)

// Verifier builds a contract twice, once from the project and once
// from its own packaged sources, and compares the code hashes.
type Verifier struct {
	l hclog.Logger

	builder *builder.Builder
	ledger  *ledger.Ledger
}

// Option configures a Verifier.
type Option func(*Verifier)

// Result is the outcome of verifying one contract.
type Result struct {
	Contract string
	Version  string

	ProjectHash  string
	PackagedHash string

	// PackagedSource is the packaged project the second build used.
	PackagedSource string
}

// Reproducible reports whether both builds produced the same module.
func (r *Result) Reproducible() bool {
	return r.ProjectHash != "" && r.ProjectHash == r.PackagedHash
}
