package iptc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record builds one IIM application record.
func record(dataset byte, text string) []byte {
	out := []byte{iimMarker, appRecord, dataset, 0, 0}
	binary.BigEndian.PutUint16(out[3:5], uint16(len(text)))
	return append(out, text...)
}

// resourceBlock wraps records in a Photoshop 8BIM resource with an empty
// Pascal name.
func resourceBlock(id uint16, payload []byte) []byte {
	out := []byte("8BIM")
	out = binary.BigEndian.AppendUint16(out, id)
	out = append(out, 0x00, 0x00) // empty name, even-padded
	out = binary.BigEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)
	if len(payload)%2 != 0 {
		out = append(out, 0x00)
	}
	return out
}

func TestParse_DirectRecords(t *testing.T) {
	buf := append(record(dsHeadline, "Hello"), record(dsCredit, "Wire Service")...)
	buf = append(buf, record(dsCity, "Oslo")...)

	d := Parse(buf)
	assert.Equal(t, "Hello", d.Headline)
	assert.Equal(t, "Wire Service", d.Credit)
	assert.Equal(t, "Oslo", d.City)
	assert.False(t, d.Empty())
}

func TestParse_HeadlinePrecedence(t *testing.T) {
	t.Run("object name never overrides headline", func(t *testing.T) {
		buf := append(record(dsHeadline, "Hello"), record(dsObjectName, "World")...)
		d := Parse(buf)
		assert.Equal(t, "Hello", d.Headline)
	})
	t.Run("object name fills absent headline", func(t *testing.T) {
		d := Parse(record(dsObjectName, "World"))
		assert.Equal(t, "World", d.Headline)
	})
	t.Run("headline always overwrites", func(t *testing.T) {
		buf := append(record(dsObjectName, "World"), record(dsHeadline, "Hello")...)
		d := Parse(buf)
		assert.Equal(t, "Hello", d.Headline)
	})
}

func TestParse_ScalarFirstSeenWins(t *testing.T) {
	buf := append(record(dsCredit, "First"), record(dsCredit, "Second")...)
	d := Parse(buf)
	assert.Equal(t, "First", d.Credit)
}

func TestParse_KeywordsDeduplicated(t *testing.T) {
	buf := append(record(dsKeywords, "cat"), record(dsKeywords, "dog")...)
	buf = append(buf, record(dsKeywords, "cat")...)

	d := Parse(buf)
	assert.Equal(t, []string{"cat", "dog"}, d.Keywords)
}

func TestParse_PhotoshopHeaderOffset(t *testing.T) {
	buf := append([]byte("Photoshop 3.0\x00"), record(dsHeadline, "Hi")...)
	d := Parse(buf)
	assert.Equal(t, "Hi", d.Headline)
}

func TestParse_ResourceBlock(t *testing.T) {
	records := append(record(dsHeadline, "Framed"), record(dsKeywords, "print")...)
	buf := append([]byte("Photoshop 3.0\x00"), resourceBlock(iptcResourceID, records)...)

	d := Parse(buf)
	assert.Equal(t, "Framed", d.Headline)
	assert.Equal(t, []string{"print"}, d.Keywords)
}

func TestParse_NonIPTCResourceSkipped(t *testing.T) {
	buf := resourceBlock(0x03E9, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	d := Parse(buf)
	assert.True(t, d.Empty())
}

func TestParse_BothEncodingsInOneBuffer(t *testing.T) {
	// The 8BIM pass and the direct-marker pass both run; the marker scan
	// re-reads the wrapped records, so dedup rules must absorb them.
	records := append(record(dsKeywords, "cat"), record(dsHeadline, "Once")...)
	buf := append(resourceBlock(iptcResourceID, records), record(dsKeywords, "dog")...)

	d := Parse(buf)
	assert.Equal(t, []string{"cat", "dog"}, d.Keywords)
	assert.Equal(t, "Once", d.Headline)
}

func TestParse_InvalidRecordsResync(t *testing.T) {
	t.Run("zero size", func(t *testing.T) {
		bad := []byte{iimMarker, appRecord, dsHeadline, 0x00, 0x00}
		buf := append(bad, record(dsCredit, "Kept")...)
		d := Parse(buf)
		assert.Empty(t, d.Headline)
		assert.Equal(t, "Kept", d.Credit)
	})
	t.Run("size past buffer", func(t *testing.T) {
		bad := []byte{iimMarker, appRecord, dsHeadline, 0xFF, 0xFF, 'x'}
		buf := append(bad, record(dsCredit, "Kept")...)
		d := Parse(buf)
		assert.Empty(t, d.Headline)
		assert.Equal(t, "Kept", d.Credit)
	})
	t.Run("other record numbers skipped bytewise", func(t *testing.T) {
		envelope := []byte{iimMarker, 0x01, 90, 0x00, 0x02, 0x00, 0x02}
		buf := append(envelope, record(dsCity, "Lagos")...)
		d := Parse(buf)
		assert.Equal(t, "Lagos", d.City)
	})
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"nul padding stripped", []byte("hello\x00\x00"), "hello"},
		{"whitespace trimmed", []byte("  spaced  "), "spaced"},
		{"latin-1 fallback", []byte{'c', 'a', 'f', 0xE9}, "café"},
		{"valid utf-8 untouched", []byte("café"), "café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeText(tt.raw))
		})
	}
}

func TestParse_LatinOneRecord(t *testing.T) {
	raw := []byte{'M', 0xFC, 'n', 'c', 'h', 'e', 'n'}
	rec := []byte{iimMarker, appRecord, dsCity, 0x00, byte(len(raw))}
	rec = append(rec, raw...)

	d := Parse(rec)
	require.Equal(t, "München", d.City)
}
