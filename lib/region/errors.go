package region

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is returned when an existing file does not start with the expected magic number.
	ErrFormat = errors.New("region: file header does not match magic number")
	// ErrAlignment is returned when the mapped payload is not aligned for the record type.
	ErrAlignment = errors.New("region: mapped address is not aligned for record")
	// ErrBind is returned when the record type cannot be bound to raw mapped bytes.
	ErrBind = errors.New("region: record cannot be bound to mapped bytes")
	// ErrSize is returned when the header plus payload exceeds the configured ceiling.
	ErrSize = errors.New("region: record exceeds maximum mapping size")
	// ErrClosed is returned when a closed region is accessed.
	ErrClosed = errors.New("region: closed")
)

// IOError reports a failed file system or mapping call during Open, Sync or Close.
// Err is the underlying error; errors.As(err, &syscall.Errno) yields the error code.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("region: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
