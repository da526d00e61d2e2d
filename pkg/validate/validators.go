package validate

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/sigurn/crc16"

	"github.com/zachfi/mpegscan/pkg/lame"
	"github.com/zachfi/mpegscan/pkg/mpeg"
)

// A Validator subscribes its checks to a Bus and publishes Failures on it.
// Validators hold per-stream state, so each stream needs a fresh set.
type Validator interface {
	Name() string
	Attach(bus *Bus)
}

// Default returns a fresh instance of every validator.
func Default() []Validator {
	return []Validator{
		&BrokenFrame{},
		&JunkData{},
		&LameHeaderPresent{},
		&LameInfoCRC{},
		&LameMusicCRC{},
		&FrameCRC{},
		&AverageBitrate{},
	}
}

// BrokenFrame reports truncated frames.
type BrokenFrame struct {
	bus *Bus
}

func (v *BrokenFrame) Name() string { return "broken-frame" }

func (v *BrokenFrame) Attach(bus *Bus) {
	v.bus = bus
	bus.FoundFrame.Subscribe(v.foundFrame)
}

func (v *BrokenFrame) foundFrame(f *mpeg.Frame) error {
	if !f.IsTruncated() {
		return nil
	}
	want, _ := f.CalculatedLength()
	v.bus.fail(FailureBrokenFrame, f.Offset(), fmt.Sprintf("frame holds %d of %d bytes", f.Len(), want))
	return nil
}

// JunkData reports every run of junk, except for a leading ID3v2 tag.
type JunkData struct {
	bus *Bus

	tagEnd   int64 // end of the leading tag, 0 if there is none
	runStart int64
	runLen   int64
}

func (v *JunkData) Name() string { return "junk-data" }

func (v *JunkData) Attach(bus *Bus) {
	v.bus = bus
	bus.FoundJunk.Subscribe(v.foundJunk)
	bus.FoundFrame.Subscribe(func(*mpeg.Frame) error {
		v.flush()
		return nil
	})
	bus.EndStream.Subscribe(func(EndStream) error {
		v.flush()
		return nil
	})
}

func (v *JunkData) foundJunk(j *mpeg.Junk) error {
	start, end := j.Offset(), j.Offset()+int64(j.Len())
	if start == 0 {
		if n, ok := mpeg.ID3TagLength(j.Bytes()); ok {
			v.tagEnd = n
		}
	}
	start = max(start, v.tagEnd)
	if start >= end {
		return nil
	}

	if v.runLen == 0 {
		v.runStart = start
	}
	v.runLen += end - start
	return nil
}

func (v *JunkData) flush() {
	if v.runLen == 0 {
		return
	}
	v.bus.fail(FailureJunkData, v.runStart, fmt.Sprintf("%d bytes of junk", v.runLen))
	v.runLen = 0
}

// LameHeaderPresent reports streams whose first frame has no LAME tag.
type LameHeaderPresent struct{}

func (v *LameHeaderPresent) Name() string { return "lame-header-present" }

func (v *LameHeaderPresent) Attach(bus *Bus) {
	bus.MissedLameHeader.Subscribe(func(m MissedLameHeader) error {
		offset := NoOffset
		if m.Frame != nil {
			offset = m.Frame.Offset()
		}
		bus.fail(FailureLameHeaderMissing, offset, "")
		return nil
	})
}

// LameInfoCRC checks the CRC a LAME tag stores over its own frame.
type LameInfoCRC struct{}

func (v *LameInfoCRC) Name() string { return "lame-info-crc" }

func (v *LameInfoCRC) Attach(bus *Bus) {
	bus.FoundLameHeader.Subscribe(func(h *lame.Header) error {
		if h.InfoCRCMatches() {
			return nil
		}
		stored, _ := h.InfoCRC()
		calculated, err := h.CalculateInfoCRC()
		if err != nil {
			bus.fail(FailureLameInfoCRC, h.Frame().Offset(), err.Error())
			return nil
		}
		bus.fail(FailureLameInfoCRC, h.Frame().Offset(), fmt.Sprintf("expected %#04x, found %#04x", stored, calculated))
		return nil
	})
}

// LameMusicCRC checks the CRC a LAME tag stores over the rest of the
// stream: every frame after the tag frame and the junk between them.
// Junk after the last frame is not covered.
type LameMusicCRC struct {
	bus *Bus

	armed   bool
	want    uint16
	frames  int
	pending []*mpeg.Junk
	crc     *lame.MusicCRC
}

func (v *LameMusicCRC) Name() string { return "lame-music-crc" }

func (v *LameMusicCRC) Attach(bus *Bus) {
	v.bus = bus
	v.crc = lame.NewMusicCRC()
	bus.FoundLameHeader.Subscribe(v.foundLameHeader)
	bus.FoundFrame.Subscribe(v.foundFrame)
	bus.FoundJunk.Subscribe(v.foundJunk)
	bus.EndStream.Subscribe(v.endStream)
}

func (v *LameMusicCRC) foundLameHeader(h *lame.Header) error {
	v.want, v.armed = h.MusicCRC()
	return nil
}

func (v *LameMusicCRC) foundFrame(f *mpeg.Frame) error {
	defer func() {
		v.pending = v.pending[:0]
		v.frames++
	}()
	if v.frames == 0 {
		return nil
	}
	for _, j := range v.pending {
		if _, err := j.WriteTo(v.crc); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(v.crc)
	return err
}

func (v *LameMusicCRC) foundJunk(j *mpeg.Junk) error {
	if v.frames > 0 {
		v.pending = append(v.pending, j)
	}
	return nil
}

func (v *LameMusicCRC) endStream(EndStream) error {
	if !v.armed {
		return nil
	}
	if got := v.crc.Sum16(); got != v.want {
		v.bus.fail(FailureLameMusicCRC, NoOffset, fmt.Sprintf("expected %#04x, found %#04x over %d bytes", v.want, got, v.crc.Len()))
	}
	return nil
}

// Layer III frames protect the last two header bytes and the side
// information with CRC-16/CMS.
var frameCRCTable = crc16.MakeTable(crc16.Params{
	Poly:  0x8005,
	Init:  0xFFFF,
	Check: 0xAEE7,
	Name:  "CRC-16/CMS",
})

// FrameCRC checks the CRC of CRC-protected Layer III frames. Frames of
// other layers are not checked.
type FrameCRC struct {
	bus *Bus
}

func (v *FrameCRC) Name() string { return "frame-crc" }

func (v *FrameCRC) Attach(bus *Bus) {
	v.bus = bus
	bus.FoundFrame.Subscribe(v.foundFrame)
}

func (v *FrameCRC) foundFrame(f *mpeg.Frame) error {
	want, got, ok := frameCRC(f)
	if ok && want != got {
		v.bus.fail(FailureFrameCRC, f.Offset(), fmt.Sprintf("expected %#04x, found %#04x", want, got))
	}
	return nil
}

// frameCRC returns the stored and calculated CRC of f. ok is false if f
// cannot be checked.
func frameCRC(f *mpeg.Frame) (stored, calculated uint16, ok bool) {
	h := f.Header()
	if !h.HasCRC() || h.Layer() != mpeg.Layer3 {
		return 0, 0, false
	}
	side, ok := h.SideInfoLength()
	if !ok {
		return 0, 0, false
	}
	b := f.Bytes()
	protected := mpeg.HeaderSize + mpeg.CRCSize + side
	if len(b) < protected {
		return 0, 0, false
	}

	crc := crc16.Init(frameCRCTable)
	crc = crc16.Update(crc, b[2:mpeg.HeaderSize], frameCRCTable)
	crc = crc16.Update(crc, b[mpeg.HeaderSize+mpeg.CRCSize:protected], frameCRCTable)
	return binary.BigEndian.Uint16(b[mpeg.HeaderSize:]), crc16.Complete(crc, frameCRCTable), true
}

// AverageBitrateTolerance is the relative difference between the declared
// and the observed average bitrate above which AverageBitrate fails.
const AverageBitrateTolerance = 0.01

// AverageBitrate compares the average bitrate a Xing/Info tag declares with
// the one observed over the stream's frames.
type AverageBitrate struct {
	bus *Bus

	xing   *lame.Xing
	first  mpeg.Header
	frames int64
	bytes  int64
}

func (v *AverageBitrate) Name() string { return "average-bitrate" }

func (v *AverageBitrate) Attach(bus *Bus) {
	v.bus = bus
	bus.FoundFrame.Subscribe(v.foundFrame)
	bus.EndStream.Subscribe(v.endStream)
}

func (v *AverageBitrate) foundFrame(f *mpeg.Frame) error {
	if v.frames == 0 {
		v.first = f.Header()
		v.xing, _ = lame.ParseXing(f)
	}
	v.frames++
	v.bytes += int64(f.Len())
	return nil
}

func (v *AverageBitrate) endStream(EndStream) error {
	if v.xing == nil {
		return nil
	}
	declared, ok := v.xing.AverageBitrate(v.first)
	if !ok || declared == 0 {
		return nil
	}
	samplerate, err := v.first.Samplerate()
	if err != nil {
		return nil
	}
	observed := lame.AverageBitrate(v.bytes, v.frames, v.first.SamplesPerFrame(), samplerate)

	if diff := math.Abs(float64(observed-declared)) / float64(declared); diff > AverageBitrateTolerance {
		v.bus.fail(FailureAverageBitrate, NoOffset,
			fmt.Sprintf("declared %d bps over %d frames, observed %d bps over %d frames", declared, v.xing.Frames, observed, v.frames))
	}
	return nil
}
