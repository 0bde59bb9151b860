package processor

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies why an operation failed.
type Kind int

const (
	NotFound Kind = iota + 1
	ReadError
	WriteError
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NOT_FOUND"
	case ReadError:
		return "READ_ERROR"
	case WriteError:
		return "WRITE_ERROR"
	}
	return "UNKNOWN"
}

// Error is returned by every operation in this package.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case NotFound:
		return fmt.Sprintf("%s: file %q was not found", e.Op, e.Path)
	case WriteError:
		return fmt.Sprintf("%s: failed to write %q: %v", e.Op, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s: failed to read %q: %v", e.Op, e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func readErr(op, path string, err error) *Error {
	if errors.Is(err, fs.ErrNotExist) {
		return &Error{Kind: NotFound, Op: op, Path: path, Err: err}
	}
	return &Error{Kind: ReadError, Op: op, Path: path, Err: err}
}

func writeErr(op, path string, err error) *Error {
	return &Error{Kind: WriteError, Op: op, Path: path, Err: err}
}
