package main

import (
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/the-maldridge/scbuild/pkg/builder"
	"github.com/the-maldridge/scbuild/pkg/config"
	"github.com/the-maldridge/scbuild/pkg/ledger"
	"github.com/the-maldridge/scbuild/pkg/storage"
	"github.com/the-maldridge/scbuild/pkg/toolchain"
	"github.com/the-maldridge/scbuild/pkg/verify"
)

// projectFlags registers the flags describing where a project comes
// from and where its outputs go.
func projectFlags(fs *pflag.FlagSet, o *builder.Options) {
	fs.StringVar(&o.ProjectDir, "project", "", "project folder")
	fs.StringVar(&o.ProjectGit, "project-git", "", "git repository to clone the project from")
	fs.StringVar(&o.ProjectRev, "project-rev", "", "revision to check out of --project-git")
	fs.StringVar(&o.PackagedProject, "packaged-project", "", "packaged project, as a path or an http(s) URL")
	fs.StringVar(&o.OutputDir, "output", "output", "output folder")
	fs.StringVar(&o.TargetDir, "cargo-target-dir", "", "cargo target directory")
	fs.BoolVar(&o.NoWasmOpt, "no-wasm-opt", false, "do not optimize the wasm binary")
}

func cmdBuild(l hclog.Logger, cfg *config.Config, args []string) error {
	o := builder.Options{ScratchRoot: cfg.ScratchRoot}
	fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
	projectFlags(fs, &o)
	fs.StringVar(&o.Contract, "contract", "", "only build the contract of that name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b := builder.New(builder.WithLogger(l), builder.WithConfig(cfg))
	acc, err := b.Run(o)
	if err != nil {
		return err
	}
	l.Info("Built contracts", "contracts", acc.Contracts(), "output", o.OutputDir)
	return nil
}

func cmdVerify(l hclog.Logger, cfg *config.Config, args []string) error {
	o := builder.Options{ScratchRoot: cfg.ScratchRoot}
	var contracts []string
	var noLedger bool
	fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	projectFlags(fs, &o)
	fs.StringArrayVar(&contracts, "contract", nil, "contract to verify, may be repeated")
	fs.BoolVar(&noLedger, "no-ledger", false, "do not record results in the ledger")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(contracts) == 0 {
		return builder.NewErrConfig("at least one --contract must be provided")
	}

	opts := []verify.Option{
		verify.WithLogger(l),
		verify.WithBuilder(builder.New(builder.WithLogger(l), builder.WithConfig(cfg))),
	}
	if !noLedger {
		store, err := storage.Initialize(cfg.Ledger.Backend, cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, verify.WithLedger(ledger.New(l, store)))
	}
	return verifyAll(l, verify.New(opts...), o, contracts)
}

// verifyAll verifies each contract in turn and returns the first
// error.  A mismatch moves on to the next contract, a failing tool
// stops the run since the remaining builds would fail the same way.
func verifyAll(l hclog.Logger, v *verify.Verifier, o builder.Options, contracts []string) error {
	var failed error
	for _, c := range contracts {
		co := o
		co.Contract = c
		res, err := v.Verify(co)
		if errors.As(err, &toolchain.ErrToolFailed{}) {
			l.Error("Build tool failed", "contract", c, "error", err)
			return err
		}
		if err != nil {
			l.Error("Verification failed", "contract", c, "error", err)
			if failed == nil {
				failed = err
			}
			continue
		}
		l.Info("Verified", "contract", res.Contract, "version", res.Version, "codehash", res.ProjectHash)
	}
	return failed
}
