// Package mpegtest builds MPEG audio streams for tests.
package mpegtest

import (
	"bytes"
	"encoding/binary"

	"github.com/sigurn/crc16"

	"github.com/zachfi/mpegscan/pkg/mpeg"
)

var (
	// Header128k is MPEG-1 Layer III, 128 kbit/s, 44100 Hz, stereo. Its
	// frames are 417 bytes long.
	Header128k = mpeg.Header{0xFF, 0xFB, 0x90, 0x00}

	// Header128kCRC is Header128k with a CRC. Its frames are 419 bytes long.
	Header128kCRC = mpeg.Header{0xFF, 0xFA, 0x90, 0x00}

	// Header64k is MPEG-1 Layer III, 64 kbit/s, 44100 Hz, stereo. Its frames
	// are 208 bytes long.
	Header64k = mpeg.Header{0xFF, 0xFB, 0x50, 0x00}
)

// PayloadByte fills frame payloads. It never starts a frame sync.
const PayloadByte = 0x55

// FrameBytes returns n bytes starting with h and padded with PayloadByte.
func FrameBytes(h mpeg.Header, n int) []byte {
	b := bytes.Repeat([]byte{PayloadByte}, n)
	copy(b, h[:min(n, mpeg.HeaderSize)])
	return b
}

// FullFrame returns a complete frame for h.
func FullFrame(h mpeg.Header) []byte {
	n, err := h.FrameLength()
	if err != nil {
		panic(err)
	}
	return FrameBytes(h, n)
}

// Builder composes a stream from frames and junk.
type Builder struct {
	buf bytes.Buffer
}

func (b *Builder) Frame(h mpeg.Header, n int) *Builder {
	b.buf.Write(FrameBytes(h, n))
	return b
}

func (b *Builder) Frames(h mpeg.Header, count int) *Builder {
	for range count {
		b.buf.Write(FullFrame(h))
	}
	return b
}

// Junk appends n zero bytes.
func (b *Builder) Junk(n int) *Builder {
	b.buf.Write(make([]byte, n))
	return b
}

func (b *Builder) Raw(p []byte) *Builder {
	b.buf.Write(p)
	return b
}

// ID3 appends an ID3v2 tag with size bytes of zeroed content.
func (b *Builder) ID3(size int) *Builder {
	b.buf.Write([]byte{'I', 'D', '3', 0x04, 0x00, 0x00,
		byte(size >> 21 & 0x7F), byte(size >> 14 & 0x7F), byte(size >> 7 & 0x7F), byte(size & 0x7F)})
	b.buf.Write(make([]byte, size))
	return b
}

func (b *Builder) Len() int { return b.buf.Len() }

func (b *Builder) Bytes() []byte { return b.buf.Bytes() }

// LAME describes the tag LAMEFrame writes.
type LAME struct {
	Frames   uint32
	Bytes    uint32
	MusicCRC uint16

	// CorruptInfoCRC stores a wrong info CRC.
	CorruptInfoCRC bool
}

// MusicCRC returns the CRC-16/ARC a LAME tag stores for audio b.
func MusicCRC(b []byte) uint16 {
	return crc16.Checksum(b, crc16.MakeTable(crc16.CRC16_ARC))
}

// LAMEFrame returns a 417 byte Header128k frame carrying an "Info" tag and
// a LAME tag.
func LAMEFrame(l LAME) []byte {
	b := FullFrame(Header128k)

	// side information for MPEG-1 stereo is 32 bytes
	x := b[mpeg.HeaderSize+32:]
	copy(x, "Info")
	binary.BigEndian.PutUint32(x[4:], 0x03)
	binary.BigEndian.PutUint32(x[8:], l.Frames)
	binary.BigEndian.PutUint32(x[12:], l.Bytes)

	copy(b[0x9C:], "LAME3.100")
	binary.BigEndian.PutUint16(b[0xBC:], l.MusicCRC)

	info := crc16.Checksum(b[:190], crc16.MakeTable(crc16.CRC16_ARC))
	if l.CorruptInfoCRC {
		info++
	}
	binary.BigEndian.PutUint16(b[0xBE:], info)
	return b
}
