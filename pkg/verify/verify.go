// Package verify checks that a contract's packaged sources carry
// everything its build needs.
package verify

import (
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/artifacts"
	"github.com/the-maldridge/scbuild/pkg/builder"
	"github.com/the-maldridge/scbuild/pkg/ledger"
	"github.com/the-maldridge/scbuild/pkg/packaged"
)

// New returns a verifier.  A builder must be provided.
func New(opts ...Option) *Verifier {
	x := Verifier{
		l: hclog.NewNullLogger(),
	}
	for _, o := range opts {
		o(&x)
	}
	return &x
}

// Verify builds o.Contract from the project described by o into
// OutputDir/using-project, then builds it again from the packaged
// sources that run produced into OutputDir/using-packaged-src.  A
// difference in code hash is returned as ErrHashMismatch together
// with the result.
func (v *Verifier) Verify(o builder.Options) (*Result, error) {
	if o.Contract == "" {
		return nil, builder.NewErrConfig("a contract to verify must be provided")
	}
	if o.OutputDir == "" {
		return nil, builder.NewErrConfig("an output directory must be provided")
	}
	if v.builder == nil {
		return nil, builder.NewErrConfig("no builder configured")
	}

	first := o
	first.OutputDir = filepath.Join(o.OutputDir, UsingProject)
	v.l.Info("Building from project", "contract", o.Contract, "output", first.OutputDir)
	acc, err := v.builder.Run(first)
	if err != nil {
		return nil, err
	}
	set, _ := acc.Get(o.Contract)

	res := &Result{
		Contract:       o.Contract,
		ProjectHash:    set[artifacts.CodeHash],
		PackagedSource: filepath.Join(first.OutputDir, o.Contract, set[artifacts.SrcPackage]),
	}

	second := builder.Options{
		PackagedProject: res.PackagedSource,
		Contract:        o.Contract,
		OutputDir:       filepath.Join(o.OutputDir, UsingPackagedSrc),
		TargetDir:       o.TargetDir,
		NoWasmOpt:       o.NoWasmOpt,
		ScratchRoot:     o.ScratchRoot,
	}
	v.l.Info("Building from packaged sources", "contract", o.Contract, "source", res.PackagedSource, "output", second.OutputDir)
	acc, err = v.builder.Run(second)
	if err != nil {
		return nil, err
	}
	set, _ = acc.Get(o.Contract)
	res.PackagedHash = set[artifacts.CodeHash]

	src, err := packaged.Load(res.PackagedSource)
	if err != nil {
		return nil, err
	}
	res.Version = src.Version

	if v.ledger != nil {
		e := ledger.Entry{
			Contract:     res.Contract,
			Version:      res.Version,
			CodeHash:     res.ProjectHash,
			PackagedHash: res.PackagedHash,
			Reproducible: res.Reproducible(),
			VerifiedAt:   time.Now().UTC(),
		}
		if err := v.ledger.Record(e, src); err != nil {
			return res, err
		}
	}

	if !res.Reproducible() {
		v.l.Error("Code hashes differ", "contract", res.Contract, "project", res.ProjectHash, "packaged", res.PackagedHash)
		return res, NewErrHashMismatch(res)
	}
	v.l.Info("Code hashes match", "contract", res.Contract, "hash", res.ProjectHash)
	return res, nil
}
