package dispatch

// ErrBusy is returned when a provider refuses a build because it has
// no capacity left or is already running the same build.
type ErrBusy struct{}

func (e ErrBusy) Error() string {
	return "insufficient capacity"
}

// ErrUnknownProvider is returned when a provider factory is requested
// that has not been registered.
type ErrUnknownProvider struct {
	attempted string
}

// NewErrUnknownProvider returns a new error specialized to the
// attempted provider.
func NewErrUnknownProvider(s string) ErrUnknownProvider {
	return ErrUnknownProvider{s}
}

func (e ErrUnknownProvider) Error() string {
	return "no factory with name " + e.attempted + " exists"
}

// ErrBadRequest is returned for requests that cannot be built.
type ErrBadRequest struct {
	msg string
}

func (e ErrBadRequest) Error() string {
	return e.msg
}
