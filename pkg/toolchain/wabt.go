package toolchain

import (
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// NewWabt returns a disassembler using the named binaries, or the
// usual wabt names when empty.
func NewWabt(l hclog.Logger, wasm2wat, objdump string) *Wabt {
	if wasm2wat == "" {
		wasm2wat = "wasm2wat"
	}
	if objdump == "" {
		objdump = "wasm-objdump"
	}
	return &Wabt{
		l:        l.Named("wabt"),
		wasm2wat: wasm2wat,
		objdump:  objdump,
	}
}

// ToText converts the module to its text format.
func (w *Wabt) ToText(wasm, out string) error {
	w.l.Info("Convert WASM to WAT", "wasm", wasm)
	if err := exec.Command(w.wasm2wat, wasm, "-o", out).Run(); err != nil {
		return toolError(w.wasm2wat, err)
	}
	return nil
}

// Imports lists the host functions the module imports.
func (w *Wabt) Imports(wasm string) ([]string, error) {
	w.l.Info("Extract imports", "wasm", wasm)
	dump, err := exec.Command(w.objdump, wasm, "--details", "--section", "Import").Output()
	if err != nil {
		return nil, toolError(w.objdump, err)
	}
	return ParseImports(string(dump)), nil
}

// ParseImports picks the imported host function names out of an
// objdump import section listing.  Lines naming both a function and
// the env module count, the name is whatever follows the last dot.
func ParseImports(text string) []string {
	imports := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.Contains(line, "func") || !strings.Contains(line, "env") {
			continue
		}
		imports = append(imports, line[strings.LastIndex(line, ".")+1:])
	}
	return imports
}
