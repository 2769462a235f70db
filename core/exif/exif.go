// Package exif decodes the TIFF IFD structure of an EXIF payload into a
// sparse field map of the camera settings worth displaying.
package exif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// TIFF data types.
const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeUndefined = 7
	typeSLong     = 9
	typeSRational = 10
)

// Tag IDs.
const (
	tagMake             = 0x010F
	tagModel            = 0x0110
	tagDateTime         = 0x0132
	tagExifIFD          = 0x8769
	tagExposureTime     = 0x829A
	tagFNumber          = 0x829D
	tagExposureProgram  = 0x8822
	tagISO              = 0x8827
	tagDateTimeOriginal = 0x9003
	tagMeteringMode     = 0x9207
	tagFocalLength      = 0x920A
	tagColorSpace       = 0xA001
)

var exifPrefix = []byte("Exif\x00\x00")

// Data is the decoded field map. Empty string (or zero ISO) means absent.
// Fields are first-seen-wins: a tag already set is never overwritten by a
// later occurrence in the same or a sub-IFD.
type Data struct {
	Make             string
	Model            string
	FocalLength      string
	FNumber          string
	ExposureTime     string
	ISO              int
	DateTimeOriginal string
	DateTime         string
	ColorSpace       string
	MeteringMode     string
	ExposureProgram  string
}

// Empty reports whether no field was decoded.
func (d *Data) Empty() bool {
	return *d == Data{}
}

var meteringModes = map[uint32]string{
	0: "Unknown",
	1: "Average",
	2: "Center-weighted average",
	3: "Spot",
	4: "Multi-spot",
	5: "Pattern",
	6: "Partial",
}

var exposurePrograms = map[uint32]string{
	0: "Not defined",
	1: "Manual",
	2: "Normal program",
	3: "Aperture priority",
	4: "Shutter priority",
	5: "Creative program",
	6: "Action program",
	7: "Portrait mode",
	8: "Landscape mode",
}

// Parse decodes an EXIF APP1 payload, "Exif\0\0" prefix included. The
// primary IFD is parsed for description tags and the EXIF sub-IFD (tag
// 0x8769) for exposure tags. Thumbnail and next-IFD pointers are read but
// not followed.
func Parse(segment []byte) (*Data, error) {
	if !bytes.HasPrefix(segment, exifPrefix) {
		return nil, fmt.Errorf("exif: missing Exif header")
	}
	return ParseTIFF(segment[6:])
}

// ParseTIFF decodes a raw TIFF blob (byte-order marker onward), as carried
// by a PNG eXIf chunk.
func ParseTIFF(tiff []byte) (*Data, error) {
	if len(tiff) < 8 {
		return nil, fmt.Errorf("exif: short TIFF header")
	}

	var order binary.ByteOrder
	switch {
	case tiff[0] == 'I' && tiff[1] == 'I':
		order = binary.LittleEndian
	case tiff[0] == 'M' && tiff[1] == 'M':
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("exif: invalid byte order marker")
	}
	if order.Uint16(tiff[2:4]) != 42 {
		return nil, fmt.Errorf("exif: invalid TIFF magic")
	}

	d := &Data{}
	ifdOffset := int(order.Uint32(tiff[4:8]))
	parseIFD(tiff, ifdOffset, order, d, 0)
	return d, nil
}

// parseIFD walks the 12-byte entries of one IFD. All value offsets are
// relative to the start of the TIFF header.
func parseIFD(tiff []byte, offset int, order binary.ByteOrder, d *Data, depth int) {
	if depth > 4 || offset < 0 || offset+2 > len(tiff) {
		return
	}
	n := int(order.Uint16(tiff[offset : offset+2]))
	offset += 2

	for i := 0; i < n && offset+12 <= len(tiff); i++ {
		entry := tiff[offset : offset+12]
		offset += 12

		tag := order.Uint16(entry[0:2])
		typ := order.Uint16(entry[2:4])
		count := order.Uint32(entry[4:8])

		size := typeSize(typ) * int(count)
		var value []byte
		if size <= 4 {
			value = entry[8 : 8+size]
		} else {
			at := int(order.Uint32(entry[8:12]))
			if at < 0 || at+size > len(tiff) {
				continue
			}
			value = tiff[at : at+size]
		}

		if tag == tagExifIFD {
			parseIFD(tiff, int(order.Uint32(entry[8:12])), order, d, depth+1)
			continue
		}
		applyTag(d, tag, typ, value, order)
	}
	// The next-IFD pointer after the entries would lead to the thumbnail
	// IFD; it is deliberately not followed.
}

func applyTag(d *Data, tag, typ uint16, value []byte, order binary.ByteOrder) {
	switch tag {
	case tagMake:
		setIfEmpty(&d.Make, asciiValue(value))
	case tagModel:
		setIfEmpty(&d.Model, asciiValue(value))
	case tagDateTime:
		setIfEmpty(&d.DateTime, asciiValue(value))
	case tagDateTimeOriginal:
		setIfEmpty(&d.DateTimeOriginal, asciiValue(value))
	case tagFocalLength:
		if v, ok := rationalValue(value, typ, order); ok {
			setIfEmpty(&d.FocalLength, fmt.Sprintf("%g mm", v))
		}
	case tagFNumber:
		if v, ok := rationalValue(value, typ, order); ok {
			setIfEmpty(&d.FNumber, fmt.Sprintf("f/%g", v))
		}
	case tagExposureTime:
		setIfEmpty(&d.ExposureTime, exposureString(value, typ, order))
	case tagISO:
		if d.ISO == 0 {
			d.ISO = int(uintValue(value, typ, order))
		}
	case tagMeteringMode:
		v := uintValue(value, typ, order)
		name, ok := meteringModes[v]
		if !ok {
			if v == 255 {
				name = "Other"
			} else {
				name = fmt.Sprintf("Mode %d", v)
			}
		}
		setIfEmpty(&d.MeteringMode, name)
	case tagExposureProgram:
		v := uintValue(value, typ, order)
		name, ok := exposurePrograms[v]
		if !ok {
			name = fmt.Sprintf("Mode %d", v)
		}
		setIfEmpty(&d.ExposureProgram, name)
	case tagColorSpace:
		switch uintValue(value, typ, order) {
		case 1:
			setIfEmpty(&d.ColorSpace, "sRGB")
		case 0xFFFF:
			setIfEmpty(&d.ColorSpace, "Uncalibrated")
		}
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func typeSize(typ uint16) int {
	switch typ {
	case typeByte, typeASCII, typeUndefined:
		return 1
	case typeShort:
		return 2
	case typeLong, typeSLong:
		return 4
	case typeRational, typeSRational:
		return 8
	default:
		return 1
	}
}

func asciiValue(value []byte) string {
	return strings.TrimSpace(strings.TrimRight(string(value), "\x00"))
}

func uintValue(value []byte, typ uint16, order binary.ByteOrder) uint32 {
	switch typ {
	case typeShort:
		if len(value) >= 2 {
			return uint32(order.Uint16(value[0:2]))
		}
	case typeLong:
		if len(value) >= 4 {
			return order.Uint32(value[0:4])
		}
	case typeByte:
		if len(value) >= 1 {
			return uint32(value[0])
		}
	}
	return 0
}

// rationalValue decodes a RATIONAL or SRATIONAL. A zero denominator
// decodes to 0, never an error.
func rationalValue(value []byte, typ uint16, order binary.ByteOrder) (float64, bool) {
	if (typ != typeRational && typ != typeSRational) || len(value) < 8 {
		return 0, false
	}
	num := order.Uint32(value[0:4])
	den := order.Uint32(value[4:8])
	if den == 0 {
		return 0, true
	}
	if typ == typeSRational {
		return float64(int32(num)) / float64(int32(den)), true
	}
	return float64(num) / float64(den), true
}

// exposureString formats an exposure time: values below one second become
// a reduced "1/<n>" fraction, anything else the literal decimal.
func exposureString(value []byte, typ uint16, order binary.ByteOrder) string {
	v, ok := rationalValue(value, typ, order)
	if !ok || v == 0 {
		return ""
	}
	if v < 1 {
		return fmt.Sprintf("1/%.0f", 1/v)
	}
	return fmt.Sprintf("%g", v)
}
