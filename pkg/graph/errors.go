package graph

// ErrUnknownPackage is returned when the dependency walk reaches a
// package the workspace metadata does not describe.
type ErrUnknownPackage struct {
	Name string
}

// NewErrUnknownPackage returns a new error for the named package.
func NewErrUnknownPackage(name string) ErrUnknownPackage {
	return ErrUnknownPackage{name}
}

func (e ErrUnknownPackage) Error() string {
	return "could not find package " + e.Name + " in project metadata"
}

// ErrMissingDependency is returned when a resolved dependency is not
// present on disk.
type ErrMissingDependency struct {
	Path string
}

func (e ErrMissingDependency) Error() string {
	return "local dependency " + e.Path + " does not exist"
}
