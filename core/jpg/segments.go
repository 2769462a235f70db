// Package jpg implements the JPEG segment model and the JPEG-to-JPEG
// metadata merge engine.
package jpg

import (
	"encoding/binary"
	"fmt"

	"github.com/george-yg9ea/figma-export-images-with-metadata/core/errs"
)

// Marker bytes.
const (
	MarkerSOI   = 0xD8
	MarkerEOI   = 0xD9
	MarkerSOS   = 0xDA
	MarkerAPP0  = 0xE0 // JFIF
	MarkerAPP1  = 0xE1 // EXIF and XMP
	MarkerAPP2  = 0xE2 // ICC profile
	MarkerAPP13 = 0xED // IPTC / Photoshop resources
	MarkerCOM   = 0xFE // comment
)

// Segment is one marker segment of a JPEG stream. Raw and Data are views
// into the buffer handed to ParseSegments, never copies: Raw spans the
// whole segment (0xFF, marker, length, payload), Data spans the payload
// after the two length bytes. Standalone markers have a two-byte Raw and a
// nil Data.
type Segment struct {
	Marker byte
	Raw    []byte
	Data   []byte
}

// standalone reports whether a marker carries no length field.
func standalone(marker byte) bool {
	return marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7)
}

// ParseSegments scans the header segments of a JPEG stream. It returns the
// ordered segments up to (not including) SOS or EOI, and the tail from the
// SOS marker to the end of the buffer ("scan data", opaque and copied
// verbatim by callers — never reparsed). The SOI marker is returned as the
// first segment, so concatenating every Raw plus the tail reproduces the
// input exactly.
//
// A declared segment end past the buffer stops the scan; everything
// collected so far is returned with a nil tail.
func ParseSegments(data []byte) ([]Segment, []byte, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != MarkerSOI {
		return nil, nil, fmt.Errorf("%w: not a JPEG", errs.ErrFormatMismatch)
	}

	segs := []Segment{{Marker: MarkerSOI, Raw: data[0:2]}}

	i := 2
	for i+1 < len(data) {
		if data[i] != 0xFF {
			// Stray byte where a marker is expected; treat the rest of
			// the buffer as opaque.
			return segs, data[i:], nil
		}
		marker := data[i+1]

		// Fill bytes before a marker.
		if marker == 0xFF {
			i++
			continue
		}

		if marker == MarkerSOS || marker == MarkerEOI {
			return segs, data[i:], nil
		}

		if standalone(marker) {
			segs = append(segs, Segment{Marker: marker, Raw: data[i : i+2]})
			i += 2
			continue
		}

		if i+4 > len(data) {
			// Length field itself is truncated.
			return segs, nil, nil
		}
		length := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		end := i + 2 + length
		if length < 2 || end > len(data) {
			return segs, nil, nil
		}
		segs = append(segs, Segment{
			Marker: marker,
			Raw:    data[i:end],
			Data:   data[i+4 : end],
		})
		i = end
	}
	return segs, nil, nil
}

// WriteSegments reassembles segments and an optional scan-data tail into a
// JPEG byte stream.
func WriteSegments(segs []Segment, tail []byte) []byte {
	n := len(tail)
	for _, s := range segs {
		n += len(s.Raw)
	}
	out := make([]byte, 0, n)
	for _, s := range segs {
		out = append(out, s.Raw...)
	}
	return append(out, tail...)
}

// EncodeSegment builds a fresh marker segment around payload. The length
// field includes its own two bytes per the JPEG specification.
func EncodeSegment(marker byte, payload []byte) []byte {
	length := len(payload) + 2
	out := make([]byte, 0, len(payload)+4)
	out = append(out, 0xFF, marker, byte(length>>8), byte(length))
	return append(out, payload...)
}
