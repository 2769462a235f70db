// Package png implements the PNG chunk model and the JPEG-to-PNG metadata
// merge engine.
package png

import (
	"encoding/binary"
	"fmt"

	"github.com/george-yg9ea/figma-export-images-with-metadata/core/errs"
)

// Signature is the fixed 8-byte PNG magic.
var Signature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// Chunk is one length-prefixed, type-tagged, CRC-checked block of a PNG
// stream. Data is a view into the buffer handed to ParseChunks, not a copy.
type Chunk struct {
	Length uint32
	Type   string // 4-byte ASCII tag
	Data   []byte
	CRC    uint32
}

// ParseChunks scans the chunk structure of a PNG stream. IEND terminates
// the scan; a chunk whose declared end exceeds the buffer stops the scan
// without consuming further bytes, returning everything collected so far.
func ParseChunks(data []byte) ([]Chunk, error) {
	if len(data) < 8 || string(data[:8]) != string(Signature) {
		return nil, fmt.Errorf("%w: not a PNG", errs.ErrFormatMismatch)
	}

	var chunks []Chunk
	i := 8
	for i+8 <= len(data) {
		length := binary.BigEndian.Uint32(data[i : i+4])
		end := i + 8 + int(length) + 4
		if end > len(data) {
			break
		}
		typ := string(data[i+4 : i+8])
		chunks = append(chunks, Chunk{
			Length: length,
			Type:   typ,
			Data:   data[i+8 : i+8+int(length)],
			CRC:    binary.BigEndian.Uint32(data[end-4 : end]),
		})
		i = end
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}

// EncodeChunk assembles length + type + data + CRC32(type‖data) in PNG
// byte order.
func EncodeChunk(typ string, data []byte) []byte {
	out := make([]byte, 0, len(data)+12)
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	out = append(out, typ...)
	out = append(out, data...)
	return binary.BigEndian.AppendUint32(out, CRC32([]byte(typ), data))
}

// WriteChunks reassembles the signature and every chunk into a PNG byte
// stream, recomputing each CRC.
func WriteChunks(chunks []Chunk) []byte {
	out := append([]byte(nil), Signature...)
	for _, c := range chunks {
		out = append(out, EncodeChunk(c.Type, c.Data)...)
	}
	return out
}

// PNG CRC32: reflected polynomial 0xEDB88320, initial and final XOR of
// 0xFFFFFFFF. The table is generated once at initialization.
var crcTable = makeCRCTable()

func makeCRCTable() [256]uint32 {
	const poly = 0xEDB88320
	var table [256]uint32
	for i := range table {
		c := uint32(i)
		for j := 0; j < 8; j++ {
			if c&1 != 0 {
				c = poly ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		table[i] = c
	}
	return table
}

// CRC32 computes the PNG chunk checksum over typ followed by data.
func CRC32(typ, data []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, b := range typ {
		crc = crcTable[(crc^uint32(b))&0xFF] ^ (crc >> 8)
	}
	for _, b := range data {
		crc = crcTable[(crc^uint32(b))&0xFF] ^ (crc >> 8)
	}
	return crc ^ 0xFFFFFFFF
}
