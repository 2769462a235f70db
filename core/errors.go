package core

import "github.com/george-yg9ea/figma-export-images-with-metadata/core/errs"

// Sentinel errors, re-exported so callers only ever import core. The
// format packages return the same values, so errors.Is matches across
// package boundaries.
var (
	ErrFormatMismatch = errs.ErrFormatMismatch
	ErrTruncated      = errs.ErrTruncated
	ErrUnsupported    = errs.ErrUnsupported
)
