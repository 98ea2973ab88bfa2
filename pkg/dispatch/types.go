package dispatch

import (
	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/config"
)

// A Request is all the information required for a remote build.
// Exactly one of PackagedProject and ProjectGit names the sources.
type Request struct {
	Contract        string `json:"contract"`
	PackagedProject string `json:"packaged_project,omitempty"`
	ProjectGit      string `json:"project_git,omitempty"`
	ProjectRev      string `json:"project_rev,omitempty"`
	NoWasmOpt       bool   `json:"no_wasm_opt,omitempty"`
	Verify          bool   `json:"verify,omitempty"`
}

// A Provider runs builds somewhere.
type Provider interface {
	Dispatch(Request) error
	List() ([]Request, error)
}

// A Factory is a constructor of a provider.  It takes a logger which
// should be used to write out early init issues, and the loaded
// config.
type Factory func(l hclog.Logger, c *config.Config) (Provider, error)
