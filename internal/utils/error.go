package utils

import "fmt"

// CodecError is returned by GunzipFile when the compressed stream itself is
// corrupt. Err carries the codec's own message.
type CodecError struct {
	Path string
	Err  error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("gzip read error while reading from %s: %s", e.Path, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// IOError is returned by GunzipFile when reading the source or writing the
// destination fails at the operating system level.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
