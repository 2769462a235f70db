package jpg

import "fmt"

// Metadata-bearing segments carried over from the original upload. The
// rendered export's own copies of these are dropped so a re-merge never
// accumulates duplicates.
var metaMarkers = map[byte]bool{
	MarkerAPP1:  true, // EXIF / XMP
	MarkerAPP2:  true, // ICC profile
	MarkerAPP13: true, // IPTC / Photoshop
	MarkerCOM:   true, // comment
}

// Merge combines the metadata segments of original with the pixel data of
// rendered, both JPEG streams. The rendered scan data is appended verbatim
// and never reparsed; only header segments are rearranged. Returns a
// format-mismatch error when either input does not start with SOI, in
// which case the caller is expected to fall back to the rendered bytes.
func Merge(original, rendered []byte) ([]byte, error) {
	origSegs, _, err := ParseSegments(original)
	if err != nil {
		return nil, fmt.Errorf("original: %w", err)
	}
	rendSegs, tail, err := ParseSegments(rendered)
	if err != nil {
		return nil, fmt.Errorf("rendered: %w", err)
	}

	// All matching segments are kept, not just the first: an upload
	// commonly carries two APP1 segments, one EXIF and one XMP.
	var keep []Segment
	for _, s := range origSegs {
		if metaMarkers[s.Marker] {
			keep = append(keep, s)
		}
	}

	out := make([]Segment, 0, len(rendSegs)+len(keep))
	out = append(out, rendSegs[0]) // SOI

	// Preserve the render's leading JFIF segment ahead of the injected
	// metadata so JFIF/thumbnail info survives.
	rest := rendSegs[1:]
	if len(rest) > 0 && rest[0].Marker == MarkerAPP0 {
		out = append(out, rest[0])
		rest = rest[1:]
	}

	out = append(out, keep...)

	for _, s := range rest {
		if metaMarkers[s.Marker] {
			continue
		}
		out = append(out, s)
	}

	return WriteSegments(out, tail), nil
}
