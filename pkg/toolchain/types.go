package toolchain

import (
	"github.com/hashicorp/go-hclog"
)

// A BuildRequest describes one contract compilation.
type BuildRequest struct {
	// ContractDir is the contract's root, holding meta/ and wasm/.
	ContractDir string

	// TargetDir is handed to cargo as --target-dir.
	TargetDir string

	NoWasmOpt bool
}

// A Compiler turns a contract directory into a binary module placed
// in the contract's output directory.
type Compiler interface {
	Build(BuildRequest) error
}

// A Disassembler produces text and import listings of binary
// modules.
type Disassembler interface {
	ToText(wasm, out string) error
	Imports(wasm string) ([]string, error)
}

// Cargo drives the cargo based contract build and workspace metadata
// queries.
type Cargo struct {
	l   hclog.Logger
	bin string
}

// Wabt uses the WebAssembly binary toolkit for disassembly.
type Wabt struct {
	l        hclog.Logger
	wasm2wat string
	objdump  string
}
