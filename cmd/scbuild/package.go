package main

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/the-maldridge/scbuild/pkg/builder"
	"github.com/the-maldridge/scbuild/pkg/config"
	"github.com/the-maldridge/scbuild/pkg/packaged"
)

func cmdPackage(l hclog.Logger, cfg *config.Config, args []string) error {
	var folder, out string
	fs := pflag.NewFlagSet("package", pflag.ContinueOnError)
	fs.StringVar(&folder, "folder", ".", "contract folder to package")
	fs.StringVar(&out, "output", "", "packaged project file, <name>-<version>.source.json if empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := packaged.FromFolder(folder)
	if err != nil {
		return err
	}
	if out == "" {
		out = packaged.Filename(p.Name, p.Version)
	}
	if err := p.Save(out); err != nil {
		return err
	}
	l.Info("Packaged", "folder", folder, "name", p.Name, "version", p.Version, "entries", len(p.Entries), "file", out)
	return nil
}

func cmdUnwrap(l hclog.Logger, cfg *config.Config, args []string) error {
	var location, out string
	fs := pflag.NewFlagSet("unwrap", pflag.ContinueOnError)
	fs.StringVar(&location, "packaged-project", "", "packaged project, as a path or an http(s) URL")
	fs.StringVar(&out, "output", "", "folder to unwrap into")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if location == "" || out == "" {
		return builder.NewErrConfig("--packaged-project and --output must be provided")
	}

	p, err := packaged.Fetch(l, location)
	if err != nil {
		return err
	}
	if err := p.Unwrap(out); err != nil {
		return err
	}
	l.Info("Unwrapped", "name", p.Name, "version", p.Version, "entries", len(p.Entries), "folder", out)
	return nil
}
