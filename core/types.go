// Package core defines the shared types, format detection, and the
// merge/inspect entry points for moving metadata between an originally
// uploaded image and a freshly rendered export of the same image.
package core

import (
	"github.com/george-yg9ea/figma-export-images-with-metadata/core/exif"
	"github.com/george-yg9ea/figma-export-images-with-metadata/core/iptc"
	"github.com/george-yg9ea/figma-export-images-with-metadata/core/xmp"
)

// MetaField represents a single metadata key-value pair for display.
type MetaField struct {
	Key      string // Canonical field name (e.g. "Make", "Headline", "Title")
	Value    string // String representation of the value
	Category string // Category label (e.g. "EXIF", "IPTC", "XMP")
}

// Dimensions holds pixel width and height.
type Dimensions struct {
	Width  int
	Height int
}

// UnifiedMetadata is a read-only snapshot of everything discoverable in a
// single source image. It is built once per image and rebuilt from scratch
// whenever the active image changes; it is never mutated in place.
type UnifiedMetadata struct {
	Format      Format
	Dimensions  Dimensions
	Exif        *exif.Data // nil when the image carries no EXIF
	Iptc        *iptc.Data // nil when the image carries no IPTC
	Xmp         *xmp.Data  // nil when the image carries no XMP
	ICC         []byte     // raw ICC profile bytes, nil when absent
	HasMetadata bool

	// Fields is a flat display-oriented view of all decoded values,
	// including the raw EXIF tag walk. Order follows discovery order.
	Fields []MetaField
}

// EncodeOptions parameterizes a pixel encoder strategy.
type EncodeOptions struct {
	Quality int    // 1-100 where the codec supports it
	Format  Format // target container
}

// Encoder is the pluggable pixel-encoding strategy. The AVIF-capable codec
// in the host application satisfies this contract; metadata injection into
// its output container is not implemented here.
type Encoder interface {
	Encode(pixels []byte, opts EncodeOptions) ([]byte, error)
}

// Config is passed to the composition root at startup. It replaces any
// module-level feature toggles: whether an alternative encoder is available
// is decided here, once, by the caller.
type Config struct {
	// AVIFEncoder, when non-nil, is used for AVIF exports. Merged outputs
	// for that container keep their rendered bytes untouched.
	AVIFEncoder Encoder
}
