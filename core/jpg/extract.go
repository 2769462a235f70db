package jpg

import "bytes"

var (
	exifPrefix = []byte("Exif\x00\x00")
	iccPrefix  = []byte("ICC_PROFILE\x00")

	xmpSignatures = [][]byte{
		[]byte("http://ns.adobe.com/xap/1.0/"),
		[]byte("<?xpacket"),
		[]byte("<x:xmpmeta"),
	}
)

// IsEXIFPayload reports whether an APP1 payload carries EXIF: the literal
// ASCII bytes "Exif" followed by two zero bytes.
func IsEXIFPayload(data []byte) bool {
	return bytes.HasPrefix(data, exifPrefix)
}

// IsXMPPayload reports whether an APP1 payload carries XMP, by looking for
// an Adobe XMP namespace or XML declaration signature near its start.
func IsXMPPayload(data []byte) bool {
	head := data
	if len(head) > 100 {
		head = head[:100]
	}
	for _, sig := range xmpSignatures {
		if bytes.Contains(head, sig) {
			return true
		}
	}
	return false
}

// ExtractEXIF returns the first APP1 EXIF payload of a JPEG stream,
// including its leading "Exif\0\0" marker, or nil.
func ExtractEXIF(data []byte) []byte {
	segs, _, err := ParseSegments(data)
	if err != nil {
		return nil
	}
	for _, s := range segs {
		if s.Marker == MarkerAPP1 && IsEXIFPayload(s.Data) {
			return s.Data
		}
	}
	return nil
}

// ExtractXMP returns the raw XML text of the first APP1 XMP payload of a
// JPEG stream, with the namespace header stripped, or nil.
func ExtractXMP(data []byte) []byte {
	segs, _, err := ParseSegments(data)
	if err != nil {
		return nil
	}
	for _, s := range segs {
		if s.Marker == MarkerAPP1 && IsXMPPayload(s.Data) {
			return XMPText(s.Data)
		}
	}
	return nil
}

// XMPText returns the XML text of an APP1 XMP payload, with the
// "http://ns.adobe.com/xap/1.0/\0" namespace header stripped when present.
func XMPText(payload []byte) []byte {
	if i := bytes.IndexByte(payload, 0); i >= 0 && bytes.HasPrefix(payload, xmpSignatures[0]) {
		payload = payload[i+1:]
	}
	return payload
}

// ExtractICC concatenates the profile bytes of all APP2 ICC_PROFILE
// segments of a JPEG stream in order, or returns nil. Each segment carries
// a 14-byte header: the "ICC_PROFILE\0" tag plus sequence and chunk-count
// bytes.
func ExtractICC(data []byte) []byte {
	segs, _, err := ParseSegments(data)
	if err != nil {
		return nil
	}
	var icc []byte
	for _, s := range segs {
		if s.Marker != MarkerAPP2 || !bytes.HasPrefix(s.Data, iccPrefix) {
			continue
		}
		if len(s.Data) > 14 {
			icc = append(icc, s.Data[14:]...)
		}
	}
	return icc
}
