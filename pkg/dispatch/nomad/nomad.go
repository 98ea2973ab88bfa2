// Package nomad dispatches builds as instances of a parameterized
// Nomad batch job.
package nomad

import (
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/nomad/api"

	"github.com/the-maldridge/scbuild/pkg/config"
	"github.com/the-maldridge/scbuild/pkg/dispatch"
)

// Provider dispatches builds to Nomad.
type Provider struct {
	l hclog.Logger
	c *api.Client

	job string
}

func init() {
	dispatch.RegisterInitCallback(cb)
}

func cb() {
	dispatch.RegisterFactory("nomad", factory)
}

func factory(l hclog.Logger, c *config.Config) (dispatch.Provider, error) {
	cfg := api.DefaultConfig()
	if c.Nomad.Namespace != "" {
		cfg.Namespace = c.Nomad.Namespace
	}
	return New(l, cfg, c.Nomad.Job)
}

// New returns a wrapper around a nomad client that dispatches
// instances of job.  The address and credentials come from cfg,
// usually api.DefaultConfig() which reads the NOMAD_* environment.
func New(l hclog.Logger, cfg *api.Config, job string) (*Provider, error) {
	c, err := api.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	x := &Provider{
		l:   l.Named("nomad"),
		c:   c,
		job: job,
	}
	return x, nil
}

// Dispatch starts a build unless the same build is already running.
func (n *Provider) Dispatch(r dispatch.Request) error {
	running, err := n.List()
	if err != nil {
		return err
	}
	for _, b := range running {
		if b.Equal(r) {
			n.l.Debug("Build already running", "contract", r.Contract)
			return dispatch.ErrBusy{}
		}
	}

	res, _, err := n.c.Jobs().Dispatch(n.job, r.ToMap(), nil, nil)
	if err != nil {
		n.l.Warn("Nomad error", "error", err)
		return err
	}
	n.l.Info("Dispatched job", "contract", r.Contract, "eval", res.EvalID, "jid", res.DispatchedJobID)
	return nil
}

// List returns the builds that are pending or running.
func (n *Provider) List() ([]dispatch.Request, error) {
	qopts := &api.QueryOptions{
		Prefix: n.job + "/dispatch-",
	}
	jobs, _, err := n.c.Jobs().List(qopts)
	if err != nil {
		return nil, err
	}
	builds := []dispatch.Request{}
	for _, stub := range jobs {
		if stub.Type != "batch" || (stub.Status != "running" && stub.Status != "pending") {
			continue
		}
		job, _, err := n.c.Jobs().Info(stub.ID, nil)
		if err != nil {
			n.l.Trace("Unable to inspect job", "job", stub.ID, "error", err)
			continue
		}
		b := dispatch.FromMap(job.Meta)
		n.l.Trace("Found running build", "job", stub.ID, "contract", b.Contract)
		builds = append(builds, b)
	}
	return builds, nil
}
