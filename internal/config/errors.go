package config

// unsupportedExtensionError signals a config file with an unknown format.
type unsupportedExtensionError struct{ ext string }

func (e unsupportedExtensionError) Error() string {
	return "unsupported config extension: " + e.ext
}

// ErrUnsupportedExtension constructs an unsupportedExtensionError.
func ErrUnsupportedExtension(ext string) error { return unsupportedExtensionError{ext: ext} }

// IsUnsupportedExtension reports whether err indicates an unknown config format.
func IsUnsupportedExtension(err error) bool {
	_, ok := err.(unsupportedExtensionError)
	return ok
}
