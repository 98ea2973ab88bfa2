package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/the-maldridge/scbuild/pkg/config"
	"github.com/the-maldridge/scbuild/pkg/dispatch"
	"github.com/the-maldridge/scbuild/pkg/storage"

	_ "github.com/the-maldridge/scbuild/pkg/dispatch/local"
	_ "github.com/the-maldridge/scbuild/pkg/dispatch/nomad"
	_ "github.com/the-maldridge/scbuild/pkg/storage/bc"
	_ "github.com/the-maldridge/scbuild/pkg/storage/mem"
)

type command func(l hclog.Logger, cfg *config.Config, args []string) error

var commands = map[string]command{
	"build":    cmdBuild,
	"verify":   cmdVerify,
	"package":  cmdPackage,
	"unwrap":   cmdUnwrap,
	"serve":    cmdServe,
	"dispatch": cmdDispatch,
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	appLogger := hclog.New(&hclog.LoggerOptions{
		Name:  "scbuild",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	if len(args) < 1 {
		usage()
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		usage()
		return 2
	}

	storage.SetLogger(appLogger)
	storage.DoCallbacks()
	dispatch.SetLogger(appLogger)
	dispatch.DoCallbacks()

	err = cmd(appLogger, cfg, args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	return exitCode(appLogger, err)
}

// exitCode maps errors carrying a process status, such as a failed
// compiler run, to that status.
func exitCode(l hclog.Logger, err error) int {
	if err == nil {
		return 0
	}
	l.Error("Run failed", "error", err)
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) && coder.ExitCode() != 0 {
		return coder.ExitCode()
	}
	return 1
}

func usage() {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Fprintln(os.Stderr, "Usage: scbuild <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	for _, n := range names {
		fmt.Fprintln(os.Stderr, "  "+n)
	}
}
