package verify

import "fmt"

// ErrHashMismatch is returned when the build from packaged sources
// does not reproduce the build from the project.
type ErrHashMismatch struct {
	Contract string
	Project  string
	Packaged string
}

// NewErrHashMismatch returns the mismatch error for a result.
func NewErrHashMismatch(r *Result) ErrHashMismatch {
	return ErrHashMismatch{
		Contract: r.Contract,
		Project:  r.ProjectHash,
		Packaged: r.PackagedHash,
	}
}

func (e ErrHashMismatch) Error() string {
	return fmt.Sprintf("%s: code hash %s from the project differs from %s from packaged sources", e.Contract, e.Project, e.Packaged)
}
