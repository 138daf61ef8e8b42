// Package codecerr defines the tagged failure kinds shared by every layer
// of the codec, and the helpers to wrap, mark, and classify them.
package codecerr

import (
	"github.com/cockroachdb/errors"
)

// Kind tags a codec failure so that callers several layers removed from the
// point of failure can still tell what kind of thing went wrong without
// string-matching an error message.
type Kind int8

const (
	// KindIOError is an underlying source/sink failure; it carries the OS error.
	KindIOError Kind = iota
	// KindUnexpectedEOF means the bit stream ended mid-token during decompression.
	KindUnexpectedEOF
	// KindInvalidState is a contract violation inside the codec, such as
	// encoding a word absent from the dictionary or reading out-of-range bits.
	KindInvalidState
	// KindFormatError is well-formed bytes that do not describe a valid frame.
	KindFormatError
	// KindLimitExceeded means a value does not fit the varuint or huflen range.
	KindLimitExceeded
	// KindInvalidArgument is a caller-supplied parameter out of bounds.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindIOError:
		return "IOError"
	case KindUnexpectedEOF:
		return "UnexpectedEof"
	case KindInvalidState:
		return "InvalidState"
	case KindFormatError:
		return "FormatError"
	case KindLimitExceeded:
		return "LimitExceeded"
	case KindInvalidArgument:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

type marker struct{ kind Kind }

func (m marker) Error() string { return m.kind.String() }

// sentinels, one per Kind, used purely as errors.Mark targets.
var sentinels = [...]error{
	KindIOError:         marker{KindIOError},
	KindUnexpectedEOF:   marker{KindUnexpectedEOF},
	KindInvalidState:    marker{KindInvalidState},
	KindFormatError:     marker{KindFormatError},
	KindLimitExceeded:   marker{KindLimitExceeded},
	KindInvalidArgument: marker{KindInvalidArgument},
}

// New creates an error of the given kind with a formatted message, already
// marked so that Kind(err) and Is(err, kind) work on it and anything that
// wraps it.
func New(kind Kind, format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), sentinels[kind])
}

// Wrap marks err with kind and attaches msg as context, preserving the
// original error in the chain for errors.Is/As and for logging.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), sentinels[kind])
}

// Is reports whether err (or anything it wraps) was marked with kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, sentinels[kind])
}

// KindOf extracts the marked Kind from err, defaulting to KindInvalidState if
// err was never marked by this package (a programmer error: every exported
// codec function must mark its errors).
func KindOf(err error) Kind {
	for k := range sentinels {
		if errors.Is(err, sentinels[k]) {
			return Kind(k)
		}
	}
	return KindInvalidState
}

// IOError, UnexpectedEOF, InvalidState, FormatError, LimitExceeded and
// InvalidArgument are convenience constructors mirroring New for the six
// kinds, used throughout the codec instead of spelling out the Kind.
func IOError(err error, msg string) error           { return Wrap(KindIOError, err, msg) }
func UnexpectedEOF(msg string) error                { return New(KindUnexpectedEOF, "%s", msg) }
func InvalidState(format string, a ...any) error    { return New(KindInvalidState, format, a...) }
func FormatError(format string, a ...any) error     { return New(KindFormatError, format, a...) }
func LimitExceeded(format string, a ...any) error   { return New(KindLimitExceeded, format, a...) }
func InvalidArgument(format string, a ...any) error { return New(KindInvalidArgument, format, a...) }
