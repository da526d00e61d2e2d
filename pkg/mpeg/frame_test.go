package mpeg

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestNewFrame(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		err       error
		truncated bool
	}{
		{"complete", frameBytes(hdr128k, 417), nil, false},
		{"truncated", frameBytes(hdr128k, 200), nil, true},
		{"header only", frameBytes(hdr128k, 4), nil, true},
		{"too long", frameBytes(hdr128k, 418), ErrFrameTooLong, false},
		{"too short", []byte{0xFF, 0xFB}, ErrFrameTooShort, false},
		{"empty", nil, ErrFrameTooShort, false},
		{"invalid header", frameBytes(Header{0xFF, 0xFB, 0xF0, 0x00}, 100), ErrInvalidHeader, false},
		{"crc missing", frameBytes(hdr128kCRC, 5), ErrFrameTooShort, false},
		{"crc present", frameBytes(hdr128kCRC, 6), nil, true},
		{"free bitrate", frameBytes(hdrFree, 5000), nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := NewFrame(tc.data)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("NewFrame() error = %v, want %v", err, tc.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFrame() error = %v", err)
			}
			if got := f.IsTruncated(); got != tc.truncated {
				t.Errorf("IsTruncated() = %t, want %t", got, tc.truncated)
			}
			if got := f.ActualLength(); got != len(tc.data) {
				t.Errorf("ActualLength() = %d, want %d", got, len(tc.data))
			}
		})
	}
}

func TestFrameCopiesInput(t *testing.T) {
	data := frameBytes(hdr128k, 417)
	f, err := NewFrame(data)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}

	data[10] = 0xAA
	if f.Bytes()[10] == 0xAA {
		t.Errorf("frame aliases its input")
	}

	out := f.Bytes()
	out[10] = 0xAA
	if f.Bytes()[10] == 0xAA {
		t.Errorf("Bytes() aliases the frame")
	}
}

func TestFrameAccessors(t *testing.T) {
	data := frameBytes(hdr128kCRC, 419)
	data[4], data[5] = 0x12, 0x34

	f, err := NewFrame(data)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	if f.Header() != hdr128kCRC {
		t.Errorf("Header() = %s", f.Header())
	}
	n, err := f.CalculatedLength()
	if err != nil || n != 419 {
		t.Errorf("CalculatedLength() = %d, %v, want 419", n, err)
	}
	crc, err := f.CRC()
	if err != nil {
		t.Fatalf("CRC() error = %v", err)
	}
	if !bytes.Equal(crc, []byte{0x12, 0x34}) {
		t.Errorf("CRC() = % x, want 12 34", crc)
	}
	if got := len(f.Payload()); got != 419-6 {
		t.Errorf("len(Payload()) = %d, want %d", got, 419-6)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Errorf("WriteTo() wrote different bytes")
	}
}

func TestFrameWithoutCRC(t *testing.T) {
	f, err := NewFrame(frameBytes(hdr128k, 417))
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	if _, err := f.CRC(); !errors.Is(err, ErrNoCRC) {
		t.Errorf("CRC() error = %v, want ErrNoCRC", err)
	}
}

func TestFreeBitrateFrameLength(t *testing.T) {
	f, err := NewFrame(frameBytes(hdrFree, 300))
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	if _, err := f.CalculatedLength(); !errors.Is(err, ErrFreeBitrate) {
		t.Errorf("CalculatedLength() error = %v, want ErrFreeBitrate", err)
	}
	if f.IsTruncated() {
		t.Errorf("IsTruncated() = true, want false")
	}
}
