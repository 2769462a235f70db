// Package errs holds the sentinel errors shared by the container parsers
// and the merge entry points. It sits below every other package so both
// the format packages and their callers can match on the same values.
package errs

import "errors"

var (
	// ErrFormatMismatch indicates a buffer that does not start with the
	// magic bytes of its claimed container type. Fatal to the call.
	ErrFormatMismatch = errors.New("format mismatch")

	// ErrTruncated indicates a declared length or offset that exceeds the
	// buffer. Parsers stop and return what was decoded; this sentinel only
	// surfaces where a caller needs to distinguish a short read.
	ErrTruncated = errors.New("truncated data")

	// ErrUnsupported is returned for containers this engine cannot merge
	// metadata into (e.g. AVIF).
	ErrUnsupported = errors.New("unsupported format")
)
