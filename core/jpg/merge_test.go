package jpg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/george-yg9ea/figma-export-images-with-metadata/core/errs"
)

func exifAPP1() []byte {
	payload := append([]byte("Exif\x00\x00"), canonTIFF()...)
	return seg(MarkerAPP1, payload)
}

// canonTIFF is a minimal little-endian TIFF block: one IFD entry,
// Make = "Canon".
func canonTIFF() []byte {
	return []byte{
		'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00,
		0x01, 0x00, // one entry
		0x0F, 0x01, 0x02, 0x00, 0x06, 0x00, 0x00, 0x00, 0x1A, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // next IFD
		'C', 'a', 'n', 'o', 'n', 0x00,
	}
}

func xmpAPP1() []byte {
	payload := append([]byte("http://ns.adobe.com/xap/1.0/\x00"),
		[]byte(`<?xpacket begin=""?><x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF><rdf:Description><dc:title>Poster</dc:title></rdf:Description></rdf:RDF></x:xmpmeta>`)...)
	return seg(MarkerAPP1, payload)
}

func iccAPP2(chunk byte, total byte, profile []byte) []byte {
	payload := append([]byte("ICC_PROFILE\x00"), chunk, total)
	return seg(MarkerAPP2, append(payload, profile...))
}

func TestMerge_CarriesMetadataSegments(t *testing.T) {
	original := buildJPEG(
		exifAPP1(),
		xmpAPP1(),
		iccAPP2(1, 1, []byte("profile")),
		seg(MarkerAPP13, []byte("Photoshop 3.0\x00")),
		seg(MarkerCOM, []byte("shot on film")),
		seg(0xDB, bytes.Repeat([]byte{0x22}, 64)), // original's tables must not carry over
	)
	rendered := buildJPEG(
		seg(MarkerAPP0, []byte("JFIF\x00\x01\x01\x00\x00\x48\x00\x48\x00\x00")),
		seg(MarkerAPP1, append([]byte("Exif\x00\x00"), 0x4D, 0x4D, 0x00, 0x2A)), // render's own EXIF is dropped
		seg(0xDB, bytes.Repeat([]byte{0x33}, 64)),
	)

	merged, err := Merge(original, rendered)
	require.NoError(t, err)

	segs, tail, err := ParseSegments(merged)
	require.NoError(t, err)

	var markers []byte
	for _, s := range segs {
		markers = append(markers, s.Marker)
	}
	assert.Equal(t, []byte{
		MarkerSOI,
		MarkerAPP0,  // render's JFIF stays first
		MarkerAPP1,  // original EXIF
		MarkerAPP1,  // original XMP
		MarkerAPP2,  // original ICC
		MarkerAPP13, // original IPTC
		MarkerCOM,   // original comment
		0xDB,        // render's quantization table
	}, markers)

	// The carried APP1s are the original's, byte for byte.
	assert.True(t, bytes.HasPrefix(segs[2].Data, []byte("Exif\x00\x00")))
	assert.Equal(t, canonTIFF(), segs[2].Data[6:])
	assert.Contains(t, string(segs[3].Data), "dc:title")

	// Scan data of the render is untouched.
	assert.Equal(t, scanTail(), tail)
	assert.Equal(t, bytes.Repeat([]byte{0x33}, 64), segs[7].Data)
}

func TestMerge_Idempotent(t *testing.T) {
	original := buildJPEG(exifAPP1(), seg(MarkerCOM, []byte("c")))
	rendered := buildJPEG(
		seg(MarkerAPP0, []byte("JFIF\x00")),
		seg(0xDB, []byte{0x01, 0x02}),
	)

	once, err := Merge(original, rendered)
	require.NoError(t, err)
	twice, err := Merge(original, once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestMerge_NoAPP0InRender(t *testing.T) {
	original := buildJPEG(exifAPP1())
	rendered := buildJPEG(seg(0xDB, []byte{0x01}))

	merged, err := Merge(original, rendered)
	require.NoError(t, err)

	segs, _, err := ParseSegments(merged)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, byte(MarkerAPP1), segs[1].Marker)
	assert.Equal(t, byte(0xDB), segs[2].Marker)
}

func TestMerge_FormatMismatch(t *testing.T) {
	valid := buildJPEG(seg(0xDB, []byte{0x01}))
	garbage := []byte("not an image at all")

	_, err := Merge(garbage, valid)
	assert.ErrorIs(t, err, errs.ErrFormatMismatch)

	_, err = Merge(valid, garbage)
	assert.ErrorIs(t, err, errs.ErrFormatMismatch)
}

func TestExtractEXIF(t *testing.T) {
	data := buildJPEG(xmpAPP1(), exifAPP1())
	payload := ExtractEXIF(data)
	require.NotNil(t, payload)
	assert.Equal(t, canonTIFF(), payload[6:])

	assert.Nil(t, ExtractEXIF(buildJPEG(xmpAPP1())))
	assert.Nil(t, ExtractEXIF([]byte("nope")))
}

func TestExtractXMP(t *testing.T) {
	data := buildJPEG(exifAPP1(), xmpAPP1())
	xml := ExtractXMP(data)
	require.NotNil(t, xml)
	// The namespace header is stripped, the packet text kept.
	assert.True(t, bytes.HasPrefix(xml, []byte("<?xpacket")))
	assert.Contains(t, string(xml), "dc:title")
}

func TestExtractICC_ConcatenatesChunks(t *testing.T) {
	data := buildJPEG(
		iccAPP2(1, 2, []byte("first-")),
		iccAPP2(2, 2, []byte("second")),
	)
	assert.Equal(t, []byte("first-second"), ExtractICC(data))
	assert.Nil(t, ExtractICC(buildJPEG(exifAPP1())))
}

func TestIsXMPPayload(t *testing.T) {
	assert.True(t, IsXMPPayload([]byte("http://ns.adobe.com/xap/1.0/\x00<x:xmpmeta/>")))
	assert.True(t, IsXMPPayload([]byte("<?xpacket begin=\"\"?>")))
	assert.False(t, IsXMPPayload([]byte("Exif\x00\x00II*\x00")))
	// Signature past the first ~100 bytes does not count.
	far := append(bytes.Repeat([]byte{' '}, 150), []byte("<?xpacket")...)
	assert.False(t, IsXMPPayload(far))
}
