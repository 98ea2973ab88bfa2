package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/the-maldridge/scbuild/pkg/config"
	"github.com/the-maldridge/scbuild/pkg/dispatch"
	"github.com/the-maldridge/scbuild/pkg/http"
	"github.com/the-maldridge/scbuild/pkg/ledger"
	"github.com/the-maldridge/scbuild/pkg/receiver"
	"github.com/the-maldridge/scbuild/pkg/storage"
)

func cmdServe(l hclog.Logger, cfg *config.Config, args []string) error {
	var provider string
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.StringVar(&cfg.HTTP.Bind, "bind", cfg.HTTP.Bind, "address to listen on")
	fs.StringVar(&cfg.HTTP.Output, "output", cfg.HTTP.Output, "output folder to serve and build into")
	fs.StringVar(&provider, "provider", "local", "where dispatched builds run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	srv, err := http.New(l)
	if err != nil {
		return err
	}

	store, err := storage.Initialize(cfg.Ledger.Backend, cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := dispatch.Construct(provider, cfg)
	if err != nil {
		return err
	}

	srv.Mount("/api", receiver.New(l, cfg.HTTP.Output, ledger.New(l, store)).HTTPEntry())
	srv.Mount("/builds", dispatch.NewService(l, p).HTTPEntry())

	errs := make(chan error, 1)
	go func() { errs <- srv.Serve(cfg.HTTP.Bind) }()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, os.Interrupt)

	select {
	case err = <-errs:
		return err
	case <-stop:
	}

	l.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-errs
}
