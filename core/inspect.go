package core

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/george-yg9ea/figma-export-images-with-metadata/core/exif"
	"github.com/george-yg9ea/figma-export-images-with-metadata/core/iptc"
	"github.com/george-yg9ea/figma-export-images-with-metadata/core/jpg"
	"github.com/george-yg9ea/figma-export-images-with-metadata/core/png"
	"github.com/george-yg9ea/figma-export-images-with-metadata/core/xmp"
)

// Inspect builds the unified metadata record for a source image. The
// record is a fresh snapshot over the given bytes; decode anomalies inside
// individual payloads produce absent fields, never an error.
func Inspect(data []byte) (*UnifiedMetadata, error) {
	switch DetectFormat(data) {
	case FmtJPEG:
		return inspectJPEG(data)
	case FmtPNG:
		return inspectPNG(data)
	default:
		return nil, fmt.Errorf("%w: cannot inspect buffer", ErrFormatMismatch)
	}
}

func inspectJPEG(data []byte) (*UnifiedMetadata, error) {
	segs, _, err := jpg.ParseSegments(data)
	if err != nil {
		return nil, err
	}

	m := &UnifiedMetadata{Format: FmtJPEG}
	for _, s := range segs {
		switch {
		case s.Marker == jpg.MarkerAPP1 && jpg.IsEXIFPayload(s.Data):
			if m.Exif == nil {
				if d, err := exif.Parse(s.Data); err == nil && !d.Empty() {
					m.Exif = d
				}
			}
		case s.Marker == jpg.MarkerAPP1 && jpg.IsXMPPayload(s.Data):
			if m.Xmp == nil {
				if d := xmp.Parse(jpg.XMPText(s.Data)); !d.Empty() {
					m.Xmp = d
				}
			}
		case s.Marker == jpg.MarkerAPP13:
			if m.Iptc == nil {
				if d := iptc.Parse(s.Data); !d.Empty() {
					m.Iptc = d
				}
			}
		case isSOF(s.Marker):
			if len(s.Data) >= 5 {
				m.Dimensions.Height = int(binary.BigEndian.Uint16(s.Data[1:3]))
				m.Dimensions.Width = int(binary.BigEndian.Uint16(s.Data[3:5]))
			}
		}
	}
	m.ICC = jpg.ExtractICC(data)

	// Full raw tag dump for display, on top of the structured decode.
	if x, err := goexif.Decode(bytes.NewReader(data)); err == nil {
		x.Walk(&fieldWalker{m: m})
	}
	appendStructuredFields(m)
	finishRecord(m)
	return m, nil
}

func inspectPNG(data []byte) (*UnifiedMetadata, error) {
	chunks, err := png.ParseChunks(data)
	if err != nil {
		return nil, err
	}

	m := &UnifiedMetadata{Format: FmtPNG}
	for _, c := range chunks {
		switch c.Type {
		case "IHDR":
			if len(c.Data) >= 8 {
				m.Dimensions.Width = int(binary.BigEndian.Uint32(c.Data[0:4]))
				m.Dimensions.Height = int(binary.BigEndian.Uint32(c.Data[4:8]))
			}
		case "eXIf":
			if m.Exif == nil {
				if d, err := exif.ParseTIFF(c.Data); err == nil && !d.Empty() {
					m.Exif = d
				}
				if x, err := goexif.Decode(bytes.NewReader(c.Data)); err == nil {
					x.Walk(&fieldWalker{m: m})
				}
			}
		case "iTXt":
			if i := bytes.IndexByte(c.Data, 0); i > 0 {
				keyword := string(c.Data[:i])
				if keyword == "XML:com.adobe.xmp" && m.Xmp == nil {
					if d := xmp.Parse(c.Data[i:]); !d.Empty() {
						m.Xmp = d
					}
				}
			}
		case "tEXt":
			// keyword\0value
			if i := bytes.IndexByte(c.Data, 0); i > 0 {
				m.Fields = append(m.Fields, MetaField{
					Key:      string(c.Data[:i]),
					Value:    string(c.Data[i+1:]),
					Category: "PNG tEXt",
				})
			}
		}
	}
	appendStructuredFields(m)
	finishRecord(m)
	return m, nil
}

// fieldWalker adapts the goexif tag walk into display fields.
type fieldWalker struct {
	m *UnifiedMetadata
}

func (w *fieldWalker) Walk(name goexif.FieldName, tag *tiff.Tag) error {
	val := tag.String()
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}
	w.m.Fields = append(w.m.Fields, MetaField{
		Key:      string(name),
		Value:    val,
		Category: "EXIF",
	})
	return nil
}

func appendStructuredFields(m *UnifiedMetadata) {
	add := func(key, value, category string) {
		if value != "" {
			m.Fields = append(m.Fields, MetaField{Key: key, Value: value, Category: category})
		}
	}
	if d := m.Iptc; d != nil {
		add("Headline", d.Headline, "IPTC")
		add("Caption", d.Caption, "IPTC")
		add("Credit", d.Credit, "IPTC")
		add("Byline", d.Byline, "IPTC")
		add("Contact", d.Contact, "IPTC")
		add("Instructions", d.Instructions, "IPTC")
		add("SubLocation", d.SubLocation, "IPTC")
		add("DateCreated", d.DateCreated, "IPTC")
		add("TimeCreated", d.TimeCreated, "IPTC")
		add("City", d.City, "IPTC")
		add("ProvinceState", d.ProvinceState, "IPTC")
		add("Country", d.Country, "IPTC")
		if len(d.Keywords) > 0 {
			add("Keywords", strings.Join(d.Keywords, ", "), "IPTC")
		}
	}
	if d := m.Xmp; d != nil {
		add("Title", d.Title, "XMP")
		add("Description", d.Description, "XMP")
		add("Headline", d.Headline, "XMP")
		add("Credit", d.Credit, "XMP")
		add("Creator", d.Creator, "XMP")
		if len(d.Keywords) > 0 {
			add("Keywords", strings.Join(d.Keywords, ", "), "XMP")
		}
	}
	if len(m.ICC) > 0 {
		add("Profile", fmt.Sprintf("%d bytes", len(m.ICC)), "ICC")
	}
}

func finishRecord(m *UnifiedMetadata) {
	m.HasMetadata = m.Exif != nil || m.Iptc != nil || m.Xmp != nil || len(m.ICC) > 0
}

// isSOF reports a start-of-frame marker (dimension-bearing).
func isSOF(marker byte) bool {
	switch marker {
	case 0xC0, 0xC1, 0xC2, 0xC3, 0xC5, 0xC6, 0xC7, 0xC9, 0xCA, 0xCB, 0xCD, 0xCE, 0xCF:
		return true
	}
	return false
}
