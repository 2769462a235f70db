// Package iptc decodes IPTC/IIM editorial metadata, either wrapped in
// Photoshop "8BIM" resource blocks or as direct top-level records.
package iptc

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	iimMarker      = 0x1C
	appRecord      = 2      // "Application" record number; others are skipped
	iptcResourceID = 0x0404 // Photoshop resource ID carrying IIM data
)

var (
	resourceTag     = []byte("8BIM")
	photoshopHeader = []byte("Photoshop 3.0\x00")
)

// Application-record dataset numbers.
const (
	dsObjectName    = 5
	dsKeywords      = 25
	dsInstructions  = 40
	dsDateCreated   = 55
	dsTimeCreated   = 60
	dsByline        = 80
	dsCity          = 90
	dsSubLocation   = 92
	dsProvinceState = 95
	dsCountry       = 101
	dsHeadline      = 105
	dsCredit        = 110
	dsContact       = 118
	dsCaption       = 120
)

// Data is the decoded field map. Scalar fields are first-seen-wins with
// two exceptions: Headline (dataset 105) always overwrites, and ObjectName
// (dataset 5) only fills Headline when it is still absent. Keywords
// accumulate as a de-duplicated ordered list.
type Data struct {
	Headline      string
	Caption       string
	Credit        string
	Byline        string
	Contact       string
	Instructions  string
	SubLocation   string
	DateCreated   string
	TimeCreated   string
	City          string
	ProvinceState string
	Country       string
	Keywords      []string
}

// Empty reports whether no field was decoded.
func (d *Data) Empty() bool {
	return len(d.Keywords) == 0 &&
		d.Headline == "" && d.Caption == "" && d.Credit == "" &&
		d.Byline == "" && d.Contact == "" && d.Instructions == "" &&
		d.SubLocation == "" && d.DateCreated == "" && d.TimeCreated == "" &&
		d.City == "" && d.ProvinceState == "" && d.Country == ""
}

// Parse decodes IPTC data from a buffer. Both container shapes are scanned
// unconditionally against the same bytes: embedded 8BIM resource blocks
// first, then direct IIM records. Field precedence rules make the double
// pass harmless when a buffer carries both. Parse never fails; malformed
// structures simply contribute nothing.
func Parse(segment []byte) *Data {
	d := &Data{}
	parseResourceBlocks(segment, d)

	body := segment
	if bytes.HasPrefix(body, photoshopHeader) {
		body = body[len(photoshopHeader):]
	}
	parseRecords(body, d)
	return d
}

// parseResourceBlocks walks Photoshop "8BIM" resource blocks looking for
// the IPTC resource. Each block is tag, 2-byte resource ID, a
// length-prefixed even-padded Pascal name, a 4-byte big-endian size, then
// the payload.
func parseResourceBlocks(data []byte, d *Data) {
	i := 0
	for i+8 < len(data) {
		if !bytes.Equal(data[i:i+4], resourceTag) {
			i++
			continue
		}
		id := binary.BigEndian.Uint16(data[i+4 : i+6])
		nameLen := int(data[i+6])
		if nameLen%2 == 0 {
			nameLen++ // name is padded to an even total with its length byte
		}
		i += 7 + nameLen
		if i+4 > len(data) {
			return
		}
		size := int(binary.BigEndian.Uint32(data[i : i+4]))
		i += 4
		if size < 0 || i+size > len(data) {
			return
		}
		if id == iptcResourceID {
			parseRecords(data[i:i+size], d)
		}
		i += size
		if size%2 != 0 {
			i++ // blocks are padded to even length
		}
	}
}

// parseRecords scans for IIM records by locating the 0x1C marker byte.
// Records of other than the Application record, and records with a bad
// declared size, advance the scan by a single byte so a misaligned or
// corrupt stream cannot swallow valid records behind it.
func parseRecords(data []byte, d *Data) {
	i := 0
	for i+5 <= len(data) {
		if data[i] != iimMarker {
			i++
			continue
		}
		record := data[i+1]
		dataset := data[i+2]
		size := int(binary.BigEndian.Uint16(data[i+3 : i+5]))
		if record != appRecord {
			i++
			continue
		}
		if size == 0 || size >= 65536 || i+5+size > len(data) {
			i++
			continue
		}
		apply(d, dataset, data[i+5:i+5+size])
		i += 5 + size
	}
}

func apply(d *Data, dataset byte, raw []byte) {
	text := decodeText(raw)
	if text == "" {
		return
	}
	switch dataset {
	case dsHeadline:
		d.Headline = text // always overwrites
	case dsObjectName:
		setIfEmpty(&d.Headline, text)
	case dsCaption:
		setIfEmpty(&d.Caption, text)
	case dsCredit:
		setIfEmpty(&d.Credit, text)
	case dsByline:
		setIfEmpty(&d.Byline, text)
	case dsContact:
		setIfEmpty(&d.Contact, text)
	case dsInstructions:
		setIfEmpty(&d.Instructions, text)
	case dsSubLocation:
		setIfEmpty(&d.SubLocation, text)
	case dsDateCreated:
		setIfEmpty(&d.DateCreated, text)
	case dsTimeCreated:
		setIfEmpty(&d.TimeCreated, text)
	case dsCity:
		setIfEmpty(&d.City, text)
	case dsProvinceState:
		setIfEmpty(&d.ProvinceState, text)
	case dsCountry:
		setIfEmpty(&d.Country, text)
	case dsKeywords:
		for _, kw := range d.Keywords {
			if kw == text {
				return
			}
		}
		d.Keywords = append(d.Keywords, text)
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// decodeText strips NUL padding and whitespace. IIM predates UTF-8, so
// bytes that do not form valid UTF-8 are decoded as Latin-1.
func decodeText(raw []byte) string {
	if !utf8.Valid(raw) {
		if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
			raw = decoded
		}
	}
	return strings.TrimSpace(strings.Trim(string(raw), "\x00"))
}
