package png

import (
	"errors"
	"log/slog"

	"github.com/george-yg9ea/figma-export-images-with-metadata/core/jpg"
)

// xmpKeyword is the registered iTXt keyword for an XMP packet, followed by
// the null separator, compression flag, compression method, and empty
// language tag / translated keyword separators.
var xmpKeyword = []byte("XML:com.adobe.xmp\x00\x00\x00\x00\x00")

// MergeFromJPEG injects the EXIF and XMP payloads of an original JPEG
// upload into a rendered PNG as eXIf and iTXt chunks. Metadata here is
// strictly best-effort: any internal failure returns rendered unchanged,
// because image delivery must never fail over metadata.
func MergeFromJPEG(original, rendered []byte) []byte {
	out, err := mergeFromJPEG(original, rendered)
	if err != nil {
		slog.Debug("png metadata merge skipped", "error", err)
		return rendered
	}
	return out
}

func mergeFromJPEG(original, rendered []byte) ([]byte, error) {
	exifPayload := jpg.ExtractEXIF(original)
	xmpText := jpg.ExtractXMP(original)

	// ICC is detected for logging only: PNG's iCCP chunk requires a
	// deflate-compressed payload, which this engine does not produce.
	if icc := jpg.ExtractICC(original); len(icc) > 0 {
		slog.Debug("icc profile present in original; iCCP injection not supported", "bytes", len(icc))
	}

	if len(exifPayload) == 0 && len(xmpText) == 0 {
		return rendered, nil
	}

	chunks, err := ParseChunks(rendered)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 || chunks[0].Type != "IHDR" {
		return nil, errors.New("png: missing IHDR")
	}

	// Insert immediately after IHDR and before the first IDAT.
	insert := 1
	for i, c := range chunks {
		if c.Type == "IDAT" {
			insert = i
			break
		}
	}

	var injected []Chunk
	if len(exifPayload) > 6 {
		// eXIf carries the TIFF header onward, without "Exif\0\0".
		tiff := exifPayload[6:]
		injected = append(injected, Chunk{Type: "eXIf", Length: uint32(len(tiff)), Data: tiff})
	}
	if len(xmpText) > 0 {
		data := append(append([]byte(nil), xmpKeyword...), xmpText...)
		injected = append(injected, Chunk{Type: "iTXt", Length: uint32(len(data)), Data: data})
	}

	out := make([]Chunk, 0, len(chunks)+len(injected))
	out = append(out, chunks[:insert]...)
	out = append(out, injected...)
	out = append(out, chunks[insert:]...)
	return WriteChunks(out), nil
}
