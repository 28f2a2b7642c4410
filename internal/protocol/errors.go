package protocol

// incompatibleError signals a peer speaking another major protocol version.
type incompatibleError struct{ version string }

func (e incompatibleError) Error() string {
	return "incompatible protocol version " + e.version + " (want " + Version + ")"
}

// ErrIncompatible constructs an incompatibleError.
func ErrIncompatible(version string) error { return incompatibleError{version: version} }

// IsIncompatible reports whether err indicates a protocol version mismatch.
func IsIncompatible(err error) bool {
	_, ok := err.(incompatibleError)
	return ok
}

type malformedError struct{ msg string }

func (e malformedError) Error() string { return "malformed message: " + e.msg }

// ErrMalformed constructs an error for a message missing its envelope.
func ErrMalformed(msg string) error { return malformedError{msg: msg} }

// IsMalformed reports whether err indicates a malformed envelope.
func IsMalformed(err error) bool {
	_, ok := err.(malformedError)
	return ok
}
