package builder

import (
	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/archive"
	"github.com/the-maldridge/scbuild/pkg/config"
	"github.com/the-maldridge/scbuild/pkg/graph"
	"github.com/the-maldridge/scbuild/pkg/toolchain"
)

// Options describe one build run.
type Options struct {
	// ProjectDir is a live project folder.  When empty the project
	// is obtained from ProjectGit or PackagedProject, in that order.
	ProjectDir      string
	ProjectGit      string
	ProjectRev      string
	PackagedProject string

	// Contract restricts the run to the contract of that name.
	Contract string

	OutputDir string
	TargetDir string
	NoWasmOpt bool

	// ScratchRoot is where per run scratch directories are created,
	// the system temporary directory if empty.
	ScratchRoot string
}

// Builder runs the per contract build pipeline.
type Builder struct {
	l   hclog.Logger
	cfg *config.Config

	compiler     toolchain.Compiler
	disassembler toolchain.Disassembler
	resolver     *graph.Resolver

	srcMax      int64
	outMax      int64
	srcArchiver *archive.Archiver
	outArchiver *archive.Archiver
}

// Option configures a Builder.
type Option func(*Builder)
