package main

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/the-maldridge/scbuild/pkg/config"
	"github.com/the-maldridge/scbuild/pkg/dispatch"
)

func cmdDispatch(l hclog.Logger, cfg *config.Config, args []string) error {
	var r dispatch.Request
	var provider string
	var list bool
	fs := pflag.NewFlagSet("dispatch", pflag.ContinueOnError)
	fs.StringVar(&r.Contract, "contract", "", "contract to build")
	fs.StringVar(&r.PackagedProject, "packaged-project", "", "packaged project URL the remote build fetches")
	fs.StringVar(&r.ProjectGit, "project-git", "", "git repository the remote build clones")
	fs.StringVar(&r.ProjectRev, "project-rev", "", "revision to check out of --project-git")
	fs.BoolVar(&r.NoWasmOpt, "no-wasm-opt", false, "do not optimize the wasm binary")
	fs.BoolVar(&r.Verify, "verify", false, "verify instead of building")
	fs.StringVar(&provider, "provider", "nomad", "where the build runs")
	fs.StringVar(&cfg.Nomad.Job, "job", cfg.Nomad.Job, "parameterized nomad job to dispatch")
	fs.BoolVar(&list, "list", false, "list running builds instead of dispatching")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := dispatch.Construct(provider, cfg)
	if err != nil {
		return err
	}

	if list {
		builds, err := p.List()
		if err != nil {
			return err
		}
		for _, b := range builds {
			l.Info("Running", "contract", b.Contract, "packaged_project", b.PackagedProject, "project_git", b.ProjectGit, "project_rev", b.ProjectRev)
		}
		return nil
	}

	if err := r.Validate(); err != nil {
		return err
	}
	if err := p.Dispatch(r); err != nil {
		return err
	}
	// In process providers build in the background.
	if w, ok := p.(interface{ Wait() error }); ok {
		return w.Wait()
	}
	return nil
}
