package core

import "bytes"

// Format enumerates every recognised container format.
type Format string

const (
	FmtJPEG Format = "jpeg"
	FmtPNG  Format = "png"
	FmtAVIF Format = "avif"

	FmtUnknown Format = "unknown"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// DetectFormat returns the Format for the given buffer by reading magic
// bytes. It never reads past the first sixteen bytes.
func DetectFormat(data []byte) Format {
	if len(data) < 4 {
		return FmtUnknown
	}
	switch {
	// JPEG: FF D8 FF
	case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return FmtJPEG
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	case bytes.HasPrefix(data, pngSignature):
		return FmtPNG
	// AVIF: ISOBMFF ftyp box with an avif/avis brand
	case len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")) &&
		(bytes.Equal(data[8:12], []byte("avif")) || bytes.Equal(data[8:12], []byte("avis"))):
		return FmtAVIF
	}
	return FmtUnknown
}

// MIMEType returns the MIME type to persist merged output under.
func MIMEType(f Format) string {
	switch f {
	case FmtJPEG:
		return "image/jpeg"
	case FmtPNG:
		return "image/png"
	case FmtAVIF:
		return "image/avif"
	default:
		return "application/octet-stream"
	}
}
