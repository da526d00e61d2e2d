package mpeg

import (
	"fmt"

	"github.com/pkg/errors"
)

// HeaderSize is the length in bytes of an MPEG audio frame header.
const HeaderSize = 4

// Version is the MPEG audio version ID, stored as its masked bit pattern.
type Version byte

const (
	Version25       Version = 0x00
	VersionReserved Version = 0x08
	Version2        Version = 0x10
	Version1        Version = 0x18
)

func (v Version) String() string {
	switch v {
	case Version1:
		return "MPEG-1"
	case Version2:
		return "MPEG-2"
	case Version25:
		return "MPEG-2.5"
	default:
		return "reserved"
	}
}

// Layer is the MPEG audio layer, stored as its masked bit pattern.
type Layer byte

const (
	LayerReserved Layer = 0x00
	Layer3        Layer = 0x02
	Layer2        Layer = 0x04
	Layer1        Layer = 0x06
)

func (l Layer) String() string {
	switch l {
	case Layer1:
		return "Layer I"
	case Layer2:
		return "Layer II"
	case Layer3:
		return "Layer III"
	default:
		return "reserved"
	}
}

// ChannelMode is the channel mode, stored as its masked bit pattern.
type ChannelMode byte

const (
	Stereo        ChannelMode = 0x00
	JointStereo   ChannelMode = 0x40
	DualChannel   ChannelMode = 0x80
	SingleChannel ChannelMode = 0xC0
)

func (c ChannelMode) String() string {
	switch c {
	case Stereo:
		return "stereo"
	case JointStereo:
		return "joint stereo"
	case DualChannel:
		return "dual channel"
	default:
		return "single channel"
	}
}

// Emphasis is the de-emphasis indicator.
type Emphasis byte

const (
	EmphasisNone      Emphasis = 0x00
	EmphasisFifty15ms Emphasis = 0x01
	EmphasisReserved  Emphasis = 0x02
	EmphasisCCITTJ17  Emphasis = 0x03
)

const (
	maskSync2       = 0xE0
	maskVersion     = 0x18
	maskLayer       = 0x06
	maskNoCRC       = 0x01
	shiftBitrate    = 4
	maskSamplerate  = 0x0C
	shiftSamplerate = 2
	maskPadding     = 0x02
	maskPrivate     = 0x01
	maskChannelMode = 0xC0
	maskCopyright   = 0x08
	maskOriginal    = 0x04
	maskEmphasis    = 0x03

	bitrateFree       = 0x00
	bitrateInvalid    = 0x0F
	samplerateReserve = 0x03
)

// Header is a pure projection of the four bytes that start an MPEG audio
// frame. Any four bytes decode; whether they describe a usable frame is
// answered by IsValid.
type Header [HeaderSize]byte

// DecodeHeader interprets b as a frame header. b must be exactly HeaderSize
// bytes long.
func DecodeHeader(b []byte) (Header, error) {
	var h Header
	if len(b) != HeaderSize {
		return h, errors.Wrapf(ErrHeaderLength, "got %d bytes", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HasFrameSync reports whether the leading 11 bits are all set.
func (h Header) HasFrameSync() bool {
	return h[0] == 0xFF && h[1]&maskSync2 == maskSync2
}

func (h Header) Version() Version { return Version(h[1] & maskVersion) }

func (h Header) Layer() Layer { return Layer(h[1] & maskLayer) }

// HasCRC reports whether a 16-bit CRC follows the header. The protection
// bit is inverted: zero means protected.
func (h Header) HasCRC() bool { return h[1]&maskNoCRC == 0 }

func (h Header) BitrateIndex() int { return int(h[2] >> shiftBitrate) }

func (h Header) HasFreeBitrate() bool { return h.BitrateIndex() == bitrateFree }

func (h Header) HasInvalidBitrate() bool { return h.BitrateIndex() == bitrateInvalid }

func (h Header) SamplerateIndex() int { return int(h[2]&maskSamplerate) >> shiftSamplerate }

func (h Header) HasReservedSamplerate() bool { return h.SamplerateIndex() == samplerateReserve }

func (h Header) HasPadding() bool { return h[2]&maskPadding != 0 }

func (h Header) IsPrivate() bool { return h[2]&maskPrivate != 0 }

func (h Header) ChannelMode() ChannelMode { return ChannelMode(h[3] & maskChannelMode) }

func (h Header) IsCopyright() bool { return h[3]&maskCopyright != 0 }

func (h Header) IsOriginal() bool { return h[3]&maskOriginal != 0 }

func (h Header) Emphasis() Emphasis { return Emphasis(h[3] & maskEmphasis) }

// crcSize is the number of CRC bytes following the header.
func (h Header) crcSize() int {
	if h.HasCRC() {
		return CRCSize
	}
	return 0
}

func (h Header) String() string {
	return fmt.Sprintf("%s %s bitrate=%d samplerate=%d crc=%t padding=%t %s",
		h.Version(), h.Layer(), h.BitrateIndex(), h.SamplerateIndex(), h.HasCRC(), h.HasPadding(), h.ChannelMode())
}
