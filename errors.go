package archive

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds. Every encode or decode failure matches exactly one of these
// with errors.Is.
var (
	// ErrIO is returned when opening, reading, writing or mapping a file fails.
	ErrIO = errors.New("archive i/o failure")

	// ErrCorruptArchive is returned when the header-declared metadata length does
	// not fit the archive, or when a stored payload digest does not match.
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrInvalidMetadata is returned when the metadata region is not a valid
	// encoded record.
	ErrInvalidMetadata = errors.New("invalid metadata")

	// ErrEncoding is returned when a record cannot be encoded.
	ErrEncoding = errors.New("metadata encoding failure")
)

var (
	// ErrNoDigest is returned by VerifyPayload when the record carries no digest.
	ErrNoDigest = errors.New("archive has no payload digest")

	// ErrClosed is returned when operating on a closed archive.
	ErrClosed = errors.New("archive is closed")

	// ErrHeaderSize is returned for a header size other than 4 or 8.
	ErrHeaderSize = errors.New("header size must be 4 or 8")
)

// Error carries the context needed to diagnose a failure without re-reading
// the file. Offset is absolute within the archive; Want and Have are byte
// counts and are zero when not applicable.
type Error struct {
	Kind   error
	Op     string
	Path   string
	Offset uint64
	Want   uint64
	Have   uint64
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteByte(' ')
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Want != 0 || e.Have != 0 {
		fmt.Fprintf(&b, " (offset %d: want %d bytes, have %d)", e.Offset, e.Want, e.Have)
	} else if e.Offset != 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func ioError(op, path string, err error) error {
	return &Error{Kind: ErrIO, Op: op, Path: path, Err: err}
}

// kindLabel maps an error to its metrics label.
func kindLabel(err error) string {
	switch {
	case errors.Is(err, ErrCorruptArchive):
		return "corrupt"
	case errors.Is(err, ErrInvalidMetadata):
		return "invalid_metadata"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrIO):
		return "io"
	}
	return "other"
}
