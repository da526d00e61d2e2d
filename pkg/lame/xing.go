package lame

import (
	"encoding/binary"

	"github.com/zachfi/mpegscan/pkg/mpeg"
)

const (
	xingFlagFrames = 0x01
	xingFlagBytes  = 0x02
)

// Xing is the VBR summary a "Xing" or "Info" tag stores in the first frame.
type Xing struct {
	// Tag is "Xing" for VBR streams and "Info" for CBR streams.
	Tag string

	Frames    uint32
	HasFrames bool
	Bytes     uint32
	HasBytes  bool
}

// ParseXing returns the Xing/Info tag of a Layer III frame. The tag sits
// right after the side information.
func ParseXing(f *mpeg.Frame) (*Xing, bool) {
	if f == nil {
		return nil, false
	}
	h := f.Header()
	side, ok := h.SideInfoLength()
	if !ok {
		return nil, false
	}

	offset := mpeg.HeaderSize + side
	if h.HasCRC() {
		offset += mpeg.CRCSize
	}

	b := f.Bytes()
	if len(b) < offset+8 {
		return nil, false
	}
	x := &Xing{Tag: string(b[offset : offset+4])}
	if x.Tag != "Xing" && x.Tag != "Info" {
		return nil, false
	}

	flags := binary.BigEndian.Uint32(b[offset+4:])
	pos := offset + 8
	if flags&xingFlagFrames != 0 {
		if len(b) < pos+4 {
			return nil, false
		}
		x.Frames, x.HasFrames = binary.BigEndian.Uint32(b[pos:]), true
		pos += 4
	}
	if flags&xingFlagBytes != 0 {
		if len(b) < pos+4 {
			return nil, false
		}
		x.Bytes, x.HasBytes = binary.BigEndian.Uint32(b[pos:]), true
	}
	return x, true
}

// AverageBitrate returns the average bitrate in bits per second the tag
// declares for a stream whose frames carry h's samplerate and layout.
func (x *Xing) AverageBitrate(h mpeg.Header) (int, bool) {
	if !x.HasFrames || !x.HasBytes || x.Frames == 0 {
		return 0, false
	}
	samplerate, err := h.Samplerate()
	if err != nil {
		return 0, false
	}
	return AverageBitrate(int64(x.Bytes), int64(x.Frames), h.SamplesPerFrame(), samplerate), true
}

// AverageBitrate converts a byte and frame count into bits per second.
func AverageBitrate(bytes, frames int64, samplesPerFrame, samplerate int) int {
	if frames == 0 || samplesPerFrame == 0 {
		return 0
	}
	return int(bytes * 8 * int64(samplerate) / (frames * int64(samplesPerFrame)))
}
