package client

import "strconv"

// serverError carries a non-2xx answer from the debug server.
type serverError struct {
	status int
	msg    string
}

func (e serverError) Error() string {
	return "server returned " + strconv.Itoa(e.status) + ": " + e.msg
}

// StatusCode implements the HTTP status accessor.
func (e serverError) StatusCode() int { return e.status }

// ErrServer constructs a serverError.
func ErrServer(status int, msg string) error { return serverError{status: status, msg: msg} }

// IsServerError reports whether err came from an error envelope or status.
func IsServerError(err error) bool {
	_, ok := err.(serverError)
	return ok
}
