package mpeg

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
)

var (
	// MPEG-1 Layer III, 128 kbit/s, 44100 Hz, stereo: 417 bytes
	hdr128k = Header{0xFF, 0xFB, 0x90, 0x00}
	// as hdr128k with a CRC: 419 bytes
	hdr128kCRC = Header{0xFF, 0xFA, 0x90, 0x00}
	// MPEG-1 Layer III, free bitrate, 44100 Hz
	hdrFree = Header{0xFF, 0xFB, 0x00, 0x00}
)

// payloadByte never starts a frame sync.
const payloadByte = 0x55

// frameBytes returns n bytes starting with h, padded with payloadByte.
func frameBytes(h Header, n int) []byte {
	b := bytes.Repeat([]byte{payloadByte}, n)
	copy(b, h[:min(n, HeaderSize)])
	return b
}

type region struct {
	frame bool
	n     int
}

func (r region) String() string {
	if r.frame {
		return fmt.Sprintf("F%d", r.n)
	}
	return fmt.Sprintf("J%d", r.n)
}

// streamBuilder composes test streams from frames and junk.
type streamBuilder struct {
	buf bytes.Buffer
}

func (b *streamBuilder) frame(h Header, n int) *streamBuilder {
	b.buf.Write(frameBytes(h, n))
	return b
}

func (b *streamBuilder) frames(h Header, count int) *streamBuilder {
	n, err := h.FrameLength()
	if err != nil {
		panic(err)
	}
	for range count {
		b.frame(h, n)
	}
	return b
}

func (b *streamBuilder) junk(n int) *streamBuilder {
	b.buf.Write(make([]byte, n))
	return b
}

func (b *streamBuilder) raw(p []byte) *streamBuilder {
	b.buf.Write(p)
	return b
}

func (b *streamBuilder) bytes() []byte { return b.buf.Bytes() }

// randomStream mixes frames, truncated frames, valid headers and noise.
func randomStream(rng *rand.Rand, parts int) []byte {
	var b streamBuilder
	for range parts {
		switch rng.Intn(6) {
		case 0, 1:
			b.frames(hdr128k, 1+rng.Intn(4))
		case 2:
			b.frame(hdr128kCRC, 6+rng.Intn(414))
		case 3:
			noise := make([]byte, rng.Intn(4000))
			rng.Read(noise)
			b.raw(noise)
		case 4:
			b.raw(hdr128k[:])
		case 5:
			b.frame(hdrFree, HeaderSize+rng.Intn(600))
		}
	}
	return b.bytes()
}

// segment runs a segmenter over data and checks the invariants every
// output must hold.
func segment(t *testing.T, data []byte) []region {
	t.Helper()

	s, err := NewSegmenter(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewSegmenter() error = %v", err)
	}
	return collect(t, s, data)
}

func collect(t *testing.T, s *Segmenter, data []byte) []region {
	t.Helper()

	var (
		out    []region
		joined bytes.Buffer
	)
	for r, err := range s.Regions() {
		if err != nil {
			t.Fatalf("Regions() error = %v", err)
		}
		if r.Offset() != int64(joined.Len()) {
			t.Fatalf("region %d offset = %d, want %d", len(out), r.Offset(), joined.Len())
		}
		switch v := r.(type) {
		case *Frame:
			out = append(out, region{frame: true, n: v.Len()})
		case *Junk:
			if v.Len() == 0 || v.Len() > MaxJunkLength {
				t.Fatalf("junk region %d has %d bytes", len(out), v.Len())
			}
			out = append(out, region{n: v.Len()})
		default:
			t.Fatalf("unexpected region type %T", r)
		}
		if _, err := r.WriteTo(&joined); err != nil {
			t.Fatalf("WriteTo() error = %v", err)
		}
	}
	if !bytes.Equal(joined.Bytes(), data) {
		t.Fatalf("regions do not reproduce the input: got %d bytes, want %d", joined.Len(), len(data))
	}
	return out
}
