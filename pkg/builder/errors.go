package builder

// ErrConfig is returned when the inputs of a run are missing or
// inconsistent.
type ErrConfig struct {
	msg string
}

// NewErrConfig returns a configuration error with the given message.
func NewErrConfig(msg string) ErrConfig {
	return ErrConfig{msg}
}

func (e ErrConfig) Error() string {
	return e.msg
}
