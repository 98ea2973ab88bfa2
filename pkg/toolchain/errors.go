package toolchain

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrToolFailed is returned when an external tool exits unsuccessfully.
type ErrToolFailed struct {
	Tool   string
	Code   int
	Stderr string
}

func (e ErrToolFailed) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.Code)
}

// ExitCode returns the tool's exit status so that callers can exit
// with it.
func (e ErrToolFailed) ExitCode() int {
	return e.Code
}

// toolError converts an exec error into ErrToolFailed when the tool
// ran and failed.  Other errors, such as a missing binary, are
// wrapped as they are.
func toolError(tool string, err error) error {
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return ErrToolFailed{Tool: tool, Code: exitError.ExitCode(), Stderr: string(exitError.Stderr)}
	}
	return fmt.Errorf("running %s: %w", tool, err)
}
