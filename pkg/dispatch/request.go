package dispatch

import "strconv"

// Meta keys of a dispatched build.
const (
	MetaContract        = "contract"
	MetaPackagedProject = "packaged_project"
	MetaProjectGit      = "project_git"
	MetaProjectRev      = "project_rev"
	MetaNoWasmOpt       = "no_wasm_opt"
	MetaVerify          = "verify"
)

// Validate checks that the request names a contract and one source.
func (r Request) Validate() error {
	if r.Contract == "" {
		return ErrBadRequest{"a contract must be provided"}
	}
	if (r.PackagedProject == "") == (r.ProjectGit == "") {
		return ErrBadRequest{"exactly one of a packaged project and a git project must be provided"}
	}
	return nil
}

// ToMap flattens the request into string metadata.
func (r Request) ToMap() map[string]string {
	return map[string]string{
		MetaContract:        r.Contract,
		MetaPackagedProject: r.PackagedProject,
		MetaProjectGit:      r.ProjectGit,
		MetaProjectRev:      r.ProjectRev,
		MetaNoWasmOpt:       strconv.FormatBool(r.NoWasmOpt),
		MetaVerify:          strconv.FormatBool(r.Verify),
	}
}

// FromMap is the inverse of ToMap.  Malformed flags read as false.
func FromMap(m map[string]string) Request {
	noWasmOpt, _ := strconv.ParseBool(m[MetaNoWasmOpt])
	verify, _ := strconv.ParseBool(m[MetaVerify])
	return Request{
		Contract:        m[MetaContract],
		PackagedProject: m[MetaPackagedProject],
		ProjectGit:      m[MetaProjectGit],
		ProjectRev:      m[MetaProjectRev],
		NoWasmOpt:       noWasmOpt,
		Verify:          verify,
	}
}

// Equal reports whether two requests describe the same build.
func (r Request) Equal(o Request) bool {
	return r == o
}
