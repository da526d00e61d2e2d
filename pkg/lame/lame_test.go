package lame

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/zachfi/mpegscan/pkg/mpeg"
	"github.com/zachfi/mpegscan/pkg/mpeg/mpegtest"
)

func mustFrame(t *testing.T, b []byte) *mpeg.Frame {
	t.Helper()
	f, err := mpeg.NewFrame(b)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	return f
}

func TestChecksum(t *testing.T) {
	if got := Checksum([]byte("123456789")); got != 0xBB3D {
		t.Errorf("Checksum() = %#04x, want 0xbb3d", got)
	}
}

func TestMusicCRC(t *testing.T) {
	m := NewMusicCRC()
	for _, part := range []string{"1234", "", "56789"} {
		if _, err := m.Write([]byte(part)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if got := m.Sum16(); got != 0xBB3D {
		t.Errorf("Sum16() = %#04x, want 0xbb3d", got)
	}
	if m.Len() != 9 {
		t.Errorf("Len() = %d, want 9", m.Len())
	}
	if got := NewMusicCRC().Sum16(); got != 0 {
		t.Errorf("empty Sum16() = %#04x, want 0", got)
	}
}

func TestParse(t *testing.T) {
	f := mustFrame(t, mpegtest.LAMEFrame(mpegtest.LAME{MusicCRC: 0xBEEF}))

	h, err := Parse(f)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if h.Frame() != f {
		t.Errorf("Frame() is not the parsed frame")
	}
	if got := h.Encoder(); got != "LAME3.100" {
		t.Errorf("Encoder() = %q, want LAME3.100", got)
	}
	if crc, ok := h.MusicCRC(); !ok || crc != 0xBEEF {
		t.Errorf("MusicCRC() = %#04x, %t, want 0xbeef", crc, ok)
	}
	if !h.InfoCRCMatches() {
		stored, _ := h.InfoCRC()
		calculated, _ := h.CalculateInfoCRC()
		t.Errorf("InfoCRCMatches() = false: stored %#04x, calculated %#04x", stored, calculated)
	}
}

func TestParseCorruptInfoCRC(t *testing.T) {
	f := mustFrame(t, mpegtest.LAMEFrame(mpegtest.LAME{CorruptInfoCRC: true}))

	h, err := Parse(f)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if h.InfoCRCMatches() {
		t.Errorf("InfoCRCMatches() = true, want false")
	}
}

func TestParseNoTag(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"plain frame", mpegtest.FullFrame(mpegtest.Header128k)},
		{"short frame", mpegtest.FrameBytes(mpegtest.Header128k, 0x9E)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(mustFrame(t, tc.data)); !errors.Is(err, ErrNoTag) {
				t.Errorf("Parse() error = %v, want ErrNoTag", err)
			}
		})
	}
	if _, err := Parse(nil); !errors.Is(err, ErrNoTag) {
		t.Errorf("Parse(nil) error = %v, want ErrNoTag", err)
	}
}

func TestParseTruncatedTag(t *testing.T) {
	h, err := Parse(mustFrame(t, mpegtest.LAMEFrame(mpegtest.LAME{})[:0xA0]))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := h.InfoCRC(); ok {
		t.Errorf("InfoCRC() ok on a truncated frame")
	}
	if _, ok := h.MusicCRC(); ok {
		t.Errorf("MusicCRC() ok on a truncated frame")
	}
	if h.InfoCRCMatches() {
		t.Errorf("InfoCRCMatches() = true on a truncated frame")
	}
	if got := h.Encoder(); got != "LAME" {
		t.Errorf("Encoder() = %q, want LAME", got)
	}
}

func TestParseXing(t *testing.T) {
	f := mustFrame(t, mpegtest.LAMEFrame(mpegtest.LAME{Frames: 100, Bytes: 41700}))

	x, ok := ParseXing(f)
	if !ok {
		t.Fatalf("ParseXing() ok = false")
	}
	if x.Tag != "Info" || !x.HasFrames || !x.HasBytes || x.Frames != 100 || x.Bytes != 41700 {
		t.Errorf("ParseXing() = %+v", x)
	}

	avg, ok := x.AverageBitrate(f.Header())
	if !ok {
		t.Fatalf("AverageBitrate() ok = false")
	}
	// 41700 bytes in 100 frames of 1152 samples at 44100 Hz
	if want := 41700 * 8 * 44100 / (100 * 1152); avg != want {
		t.Errorf("AverageBitrate() = %d, want %d", avg, want)
	}

	if _, ok := ParseXing(mustFrame(t, mpegtest.FullFrame(mpegtest.Header128k))); ok {
		t.Errorf("ParseXing() ok on a frame without a tag")
	}
}

func TestAverageBitrate(t *testing.T) {
	if got := AverageBitrate(417*10, 10, 1152, 44100); got != 127706 {
		t.Errorf("AverageBitrate() = %d, want 127706", got)
	}
	if got := AverageBitrate(100, 0, 1152, 44100); got != 0 {
		t.Errorf("AverageBitrate() with no frames = %d, want 0", got)
	}
}
