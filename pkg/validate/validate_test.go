package validate

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"

	"github.com/zachfi/mpegscan/pkg/mpeg"
	"github.com/zachfi/mpegscan/pkg/mpeg/mpegtest"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func run(t *testing.T, data []byte, validators ...Validator) *Report {
	t.Helper()
	r, err := Validate(context.Background(), t.Name(), bytes.NewReader(data), quiet, validators...)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return r
}

func types(r *Report) []FailureType {
	out := make([]FailureType, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.Type)
	}
	return out
}

func only(r *Report, kind FailureType) []Failure {
	var out []Failure
	for _, f := range r.Failures {
		if f.Type == kind {
			out = append(out, f)
		}
	}
	return out
}

// lameStream returns a LAME tag frame followed by audio, with the tag's
// counts and music CRC matching the audio.
func lameStream(audio []byte, frames int, tweak func(*mpegtest.LAME)) []byte {
	frameLen, _ := mpegtest.Header128k.FrameLength()
	l := mpegtest.LAME{
		Frames:   uint32(frames + 1),
		Bytes:    uint32(len(audio) + frameLen),
		MusicCRC: mpegtest.MusicCRC(audio),
	}
	if tweak != nil {
		tweak(&l)
	}
	return append(mpegtest.LAMEFrame(l), audio...)
}

func TestValidateClean(t *testing.T) {
	audio := new(mpegtest.Builder).Frames(mpegtest.Header128k, 10).Bytes()
	data := new(mpegtest.Builder).ID3(20).Raw(lameStream(audio, 10, nil)).Bytes()

	r := run(t, data)
	if !r.Valid() {
		t.Fatalf("Failures = %v", r.Failures)
	}
	if r.Frames != 11 || r.JunkRegions != 1 || r.JunkBytes != 30 {
		t.Errorf("Frames, JunkRegions, JunkBytes = %d, %d, %d, want 11, 1, 30", r.Frames, r.JunkRegions, r.JunkBytes)
	}
	if r.Bytes != int64(len(data)) || r.Regions != 12 {
		t.Errorf("Bytes, Regions = %d, %d, want %d, 12", r.Bytes, r.Regions, len(data))
	}
	if r.Name != t.Name() {
		t.Errorf("Name = %q, want %q", r.Name, t.Name())
	}
}

func TestValidateMissingLameHeader(t *testing.T) {
	r := run(t, new(mpegtest.Builder).Frames(mpegtest.Header128k, 3).Bytes())

	got := types(r)
	if len(got) != 1 || got[0] != FailureLameHeaderMissing {
		t.Fatalf("Failures = %v, want [%s]", r.Failures, FailureLameHeaderMissing)
	}
	if r.Failures[0].Offset != 0 {
		t.Errorf("Offset = %d, want 0", r.Failures[0].Offset)
	}
}

func TestValidateEmptyStream(t *testing.T) {
	r := run(t, nil)

	got := types(r)
	if len(got) != 1 || got[0] != FailureLameHeaderMissing {
		t.Fatalf("Failures = %v, want [%s]", r.Failures, FailureLameHeaderMissing)
	}
	if r.Failures[0].Offset != NoOffset {
		t.Errorf("Offset = %d, want NoOffset", r.Failures[0].Offset)
	}
}

func TestValidateBrokenFrame(t *testing.T) {
	audio := new(mpegtest.Builder).Frames(mpegtest.Header128k, 10).Frame(mpegtest.Header128k, 200).Bytes()
	r := run(t, lameStream(audio, 11, nil))

	got := types(r)
	if len(got) != 1 || got[0] != FailureBrokenFrame {
		t.Fatalf("Failures = %v, want [%s]", r.Failures, FailureBrokenFrame)
	}
	if want := int64(11 * 417); r.Failures[0].Offset != want {
		t.Errorf("Offset = %d, want %d", r.Failures[0].Offset, want)
	}
}

func TestValidateJunkData(t *testing.T) {
	audio := new(mpegtest.Builder).
		Frames(mpegtest.Header128k, 5).
		Junk(100).
		Frames(mpegtest.Header128k, 5).
		Junk(4000).
		Frames(mpegtest.Header128k, 2).
		Bytes()
	data := new(mpegtest.Builder).ID3(20).Raw(lameStream(audio, 12, func(l *mpegtest.LAME) {
		// the declared size covers the audio only
		l.Bytes = 13 * 417
	})).Bytes()

	r := run(t, data)
	junk := only(r, FailureJunkData)
	if len(junk) != 2 {
		t.Fatalf("junk failures = %v, want 2", junk)
	}
	if want := int64(30 + 6*417); junk[0].Offset != want || junk[0].Details != "100 bytes of junk" {
		t.Errorf("first junk failure = %v, want 100 bytes at %d", junk[0], want)
	}
	if want := int64(30 + 11*417 + 100); junk[1].Offset != want || junk[1].Details != "4000 bytes of junk" {
		t.Errorf("second junk failure = %v, want 4000 bytes at %d", junk[1], want)
	}
	if len(r.Failures) != 2 {
		t.Errorf("Failures = %v, want junk failures only", r.Failures)
	}
}

func TestValidateTrailingJunk(t *testing.T) {
	audio := new(mpegtest.Builder).Frames(mpegtest.Header128k, 4).Bytes()
	data := append(lameStream(audio, 4, nil), make([]byte, 50)...)

	r := run(t, data)
	got := types(r)
	if len(got) != 1 || got[0] != FailureJunkData {
		t.Fatalf("Failures = %v, want [%s]", r.Failures, FailureJunkData)
	}
}

func TestValidateLameInfoCRC(t *testing.T) {
	audio := new(mpegtest.Builder).Frames(mpegtest.Header128k, 3).Bytes()
	r := run(t, lameStream(audio, 3, func(l *mpegtest.LAME) { l.CorruptInfoCRC = true }))

	got := types(r)
	if len(got) != 1 || got[0] != FailureLameInfoCRC {
		t.Fatalf("Failures = %v, want [%s]", r.Failures, FailureLameInfoCRC)
	}
}

func TestValidateLameMusicCRC(t *testing.T) {
	audio := new(mpegtest.Builder).Frames(mpegtest.Header128k, 3).Bytes()
	r := run(t, lameStream(audio, 3, func(l *mpegtest.LAME) { l.MusicCRC ^= 0xFFFF }))

	got := types(r)
	if len(got) != 1 || got[0] != FailureLameMusicCRC {
		t.Fatalf("Failures = %v, want [%s]", r.Failures, FailureLameMusicCRC)
	}
	if r.Failures[0].Offset != NoOffset {
		t.Errorf("Offset = %d, want NoOffset", r.Failures[0].Offset)
	}
}

func TestValidateAverageBitrate(t *testing.T) {
	audio := new(mpegtest.Builder).Frames(mpegtest.Header128k, 10).Bytes()
	r := run(t, lameStream(audio, 10, func(l *mpegtest.LAME) { l.Bytes *= 2 }))

	got := types(r)
	if len(got) != 1 || got[0] != FailureAverageBitrate {
		t.Fatalf("Failures = %v, want [%s]", r.Failures, FailureAverageBitrate)
	}
}

// mpegCRC is a bitwise CRC-16 with polynomial 0x8005 and initial value
// 0xFFFF, as the MPEG audio standard defines it.
func mpegCRC(parts ...[]byte) uint16 {
	crc := uint16(0xFFFF)
	for _, p := range parts {
		for _, b := range p {
			for i := 7; i >= 0; i-- {
				bit := (b>>uint(i))&1 == 1
				top := crc&0x8000 != 0
				crc <<= 1
				if top != bit {
					crc ^= 0x8005
				}
			}
		}
	}
	return crc
}

func crcFrame(corrupt bool) []byte {
	b := mpegtest.FullFrame(mpegtest.Header128kCRC)
	for i := 6; i < 38; i++ {
		b[i] = byte(i * 7)
	}
	crc := mpegCRC(b[2:4], b[6:38])
	if corrupt {
		crc ^= 0x0101
	}
	binary.BigEndian.PutUint16(b[4:], crc)
	return b
}

func TestValidateFrameCRC(t *testing.T) {
	data := new(mpegtest.Builder).
		Raw(crcFrame(false)).
		Raw(crcFrame(true)).
		Raw(crcFrame(false)).
		Bytes()

	r := run(t, data, &FrameCRC{})
	if len(r.Failures) != 1 || r.Failures[0].Type != FailureFrameCRC {
		t.Fatalf("Failures = %v, want one %s", r.Failures, FailureFrameCRC)
	}
	if r.Failures[0].Offset != 419 {
		t.Errorf("Offset = %d, want 419", r.Failures[0].Offset)
	}
}

func TestFrameCRCSkipsUnprotectedFrames(t *testing.T) {
	f, err := mpeg.NewFrame(mpegtest.FullFrame(mpegtest.Header128k))
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	if _, _, ok := frameCRC(f); ok {
		t.Errorf("frameCRC() ok for a frame without CRC")
	}

	f, err = mpeg.NewFrame(crcFrame(false)[:20])
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	if _, _, ok := frameCRC(f); ok {
		t.Errorf("frameCRC() ok for a frame shorter than its side information")
	}
}

func TestValidateParserFailure(t *testing.T) {
	errBoom := errors.New("boom")
	data := new(mpegtest.Builder).Frames(mpegtest.Header128k, 2).Bytes()
	r, err := Validate(context.Background(), "broken", io.MultiReader(bytes.NewReader(data), iotest.ErrReader(errBoom)), quiet)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	parser := only(r, FailureParser)
	if len(parser) != 1 {
		t.Fatalf("Failures = %v, want one %s", r.Failures, FailureParser)
	}
	if parser[0].Offset != 417 {
		t.Errorf("Offset = %d, want 417", parser[0].Offset)
	}
}

func TestValidateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := new(mpegtest.Builder).Frames(mpegtest.Header128k, 3).Bytes()
	if _, err := Validate(ctx, "canceled", bytes.NewReader(data), quiet); !errors.Is(err, context.Canceled) {
		t.Errorf("Validate() error = %v, want context.Canceled", err)
	}
}

func TestValidateNilReader(t *testing.T) {
	if _, err := Validate(context.Background(), "nil", nil, quiet); !errors.Is(err, mpeg.ErrNilReader) {
		t.Errorf("Validate() error = %v, want ErrNilReader", err)
	}
}

type panicky struct{}

func (panicky) Name() string { return "panicky" }

func (panicky) Attach(bus *Bus) {
	bus.FoundFrame.Subscribe(func(*mpeg.Frame) error { panic("validator bug") })
}

func TestValidateIsolatesValidators(t *testing.T) {
	data := new(mpegtest.Builder).Frames(mpegtest.Header128k, 2).Frame(mpegtest.Header128k, 100).Bytes()

	r := run(t, data, panicky{}, &BrokenFrame{})
	if r.Frames != 3 {
		t.Errorf("Frames = %d, want 3", r.Frames)
	}
	if got := types(r); len(got) != 1 || got[0] != FailureBrokenFrame {
		t.Errorf("Failures = %v, want [%s]", r.Failures, FailureBrokenFrame)
	}
}
