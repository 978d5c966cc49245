/*
Package asseterr defines the error kinds shared by the asset encoders and the
archive packer.

Every failure is fatal for the asset being processed. Errors returned by the
maupack packages wrap one of the kinds below so callers can decide with
errors.Is whether to carry on with the remaining assets, while the underlying
cause (for example fs.ErrNotExist) stays reachable as well.
*/
package asseterr

import (
	"errors"
	"fmt"
)

var (
	// ErrInputFormat reports a malformed source document or an image that
	// could not be decoded.
	ErrInputFormat = errors.New("invalid input format")

	// ErrUnknownMapping reports a name or extension with no table entry.
	ErrUnknownMapping = errors.New("unknown mapping")

	// ErrIO reports an unreadable source or an unwritable destination.
	ErrIO = errors.New("i/o failure")

	// ErrEncodingLimit reports a value that does not fit its fixed-width
	// field.
	ErrEncodingLimit = errors.New("encoding limit exceeded")
)

// Error records the stage and path of a failed operation along with its
// kind and cause.
type Error struct {
	Kind  error
	Stage string
	Path  string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Stage != "" && e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Stage, e.Path, msg)
	case e.Stage != "":
		return fmt.Sprintf("%s: %s", e.Stage, msg)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, msg)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap annotates err with a stage and path. If err already carries a kind it
// is kept, otherwise kind is used. A nil err returns nil.
func Wrap(kind error, stage, path string, err error) error {
	if err == nil {
		return nil
	}
	if k := KindOf(err); k != nil {
		kind = k
	}
	return &Error{Kind: kind, Stage: stage, Path: path, Err: err}
}

// New returns an error of the given kind with a formatted message.
func New(kind error, format string, a ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, a...)}
}

// KindOf returns the kind carried by err, or nil if it has none.
func KindOf(err error) error {
	for _, k := range []error{ErrInputFormat, ErrUnknownMapping, ErrIO, ErrEncodingLimit} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
