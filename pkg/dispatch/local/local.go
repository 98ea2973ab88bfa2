// Package local runs dispatched builds in this process, one at a
// time.  It exists for single host setups and to make testing the
// rest of the system easier.
package local

import (
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/builder"
	"github.com/the-maldridge/scbuild/pkg/config"
	"github.com/the-maldridge/scbuild/pkg/dispatch"
	"github.com/the-maldridge/scbuild/pkg/verify"
)

// Local is a provider that builds one request at a time into a
// single output tree.
type Local struct {
	l      hclog.Logger
	b      *builder.Builder
	output string

	mu      sync.Mutex
	ongoing *dispatch.Request
	last    error
	wg      sync.WaitGroup
}

func init() {
	dispatch.RegisterInitCallback(cb)
}

func cb() {
	dispatch.RegisterFactory("local", factory)
}

func factory(l hclog.Logger, c *config.Config) (dispatch.Provider, error) {
	b := builder.New(builder.WithLogger(l), builder.WithConfig(c))
	return New(l, b, c.HTTP.Output), nil
}

// New returns a local provider that builds with b into output.
func New(l hclog.Logger, b *builder.Builder, output string) *Local {
	return &Local{
		l:      l.Named("local"),
		b:      b,
		output: output,
	}
}

// Dispatch starts the build in the background if no build is
// currently running.
func (c *Local) Dispatch(r dispatch.Request) error {
	if err := r.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ongoing != nil {
		return dispatch.ErrBusy{}
	}
	c.ongoing = &r

	c.wg.Add(1)
	go c.run(r)
	return nil
}

// List returns the build in progress, if one exists.
func (c *Local) List() ([]dispatch.Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ongoing == nil {
		return nil, nil
	}
	return []dispatch.Request{*c.ongoing}, nil
}

// Wait blocks until the build in progress has finished and returns
// the error of the most recent build.
func (c *Local) Wait() error {
	c.wg.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Local) run(r dispatch.Request) {
	var err error
	defer c.wg.Done()
	defer func() {
		c.mu.Lock()
		c.ongoing = nil
		c.last = err
		c.mu.Unlock()
	}()

	o := builder.Options{
		PackagedProject: r.PackagedProject,
		ProjectGit:      r.ProjectGit,
		ProjectRev:      r.ProjectRev,
		Contract:        r.Contract,
		OutputDir:       c.output,
		NoWasmOpt:       r.NoWasmOpt,
	}

	if r.Verify {
		_, err = verify.New(verify.WithLogger(c.l), verify.WithBuilder(c.b)).Verify(o)
	} else {
		_, err = c.b.Run(o)
	}
	if err != nil {
		c.l.Warn("Build failed", "contract", r.Contract, "error", err)
		return
	}
	c.l.Info("Build finished", "contract", r.Contract, "output", c.output)
}
