package mpeg

import "github.com/pkg/errors"

// BitrateKind tags the outcome of a bitrate table lookup.
type BitrateKind uint8

const (
	// BitrateUnknown means the version or layer does not select a table row.
	BitrateUnknown BitrateKind = iota
	BitrateKnown
	BitrateFree
	BitrateInvalid
)

// BitrateLookup is the result of looking up a header's bitrate index. BPS is
// only meaningful when Kind is BitrateKnown.
type BitrateLookup struct {
	Kind BitrateKind
	BPS  int
}

// Bitrate rows in bits per second for indices 1..14. V2 and V2.5 share rows,
// and their Layer II and Layer III rows are the same.
var (
	bitratesV1L1  = [14]int{32000, 64000, 96000, 128000, 160000, 192000, 224000, 256000, 288000, 320000, 352000, 384000, 416000, 448000}
	bitratesV1L2  = [14]int{32000, 48000, 56000, 64000, 80000, 96000, 112000, 128000, 160000, 192000, 224000, 256000, 320000, 384000}
	bitratesV1L3  = [14]int{32000, 40000, 48000, 56000, 64000, 80000, 96000, 112000, 128000, 160000, 192000, 224000, 256000, 320000}
	bitratesV2L1  = [14]int{32000, 48000, 56000, 64000, 80000, 96000, 112000, 128000, 144000, 160000, 176000, 192000, 224000, 256000}
	bitratesV2L23 = [14]int{8000, 16000, 24000, 32000, 40000, 48000, 56000, 64000, 80000, 96000, 112000, 128000, 144000, 160000}
)

var (
	samplerateV1  = [3]int{44100, 48000, 32000}
	samplerateV2  = [3]int{22050, 24000, 16000}
	samplerateV25 = [3]int{11025, 12000, 8000}
)

// Slot scaling per layer. A Layer I slot is 4 bytes, Layer II/III slots are 1.
const (
	l1Scale    = 12
	l1SlotSize = 4
	l23Scale   = 144
	l23Slot    = 1
)

// CRCSize is the length in bytes of the optional CRC following a header.
const CRCSize = 2

func (h Header) bitrateRow() (*[14]int, error) {
	switch h.Version() {
	case Version1:
		switch h.Layer() {
		case Layer1:
			return &bitratesV1L1, nil
		case Layer2:
			return &bitratesV1L2, nil
		case Layer3:
			return &bitratesV1L3, nil
		}
	case Version2, Version25:
		switch h.Layer() {
		case Layer1:
			return &bitratesV2L1, nil
		case Layer2, Layer3:
			return &bitratesV2L23, nil
		}
	default:
		return nil, ErrReservedVersion
	}
	return nil, ErrReservedLayer
}

// LookupBitrate classifies the header's bitrate index.
func (h Header) LookupBitrate() BitrateLookup {
	switch {
	case h.HasFreeBitrate():
		return BitrateLookup{Kind: BitrateFree}
	case h.HasInvalidBitrate():
		return BitrateLookup{Kind: BitrateInvalid}
	}
	row, err := h.bitrateRow()
	if err != nil {
		return BitrateLookup{Kind: BitrateUnknown}
	}
	return BitrateLookup{Kind: BitrateKnown, BPS: row[h.BitrateIndex()-1]}
}

// Bitrate returns the bitrate in bits per second.
func (h Header) Bitrate() (int, error) {
	if h.HasFreeBitrate() {
		return 0, ErrFreeBitrate
	}
	if h.HasInvalidBitrate() {
		return 0, ErrInvalidBitrate
	}
	row, err := h.bitrateRow()
	if err != nil {
		return 0, err
	}
	return row[h.BitrateIndex()-1], nil
}

// CanCalculateBitrate reports whether Bitrate will succeed.
func (h Header) CanCalculateBitrate() bool {
	return !(h.HasFreeBitrate() ||
		h.HasInvalidBitrate() ||
		h.Version() == VersionReserved ||
		h.Layer() == LayerReserved)
}

// Samplerate returns the sample rate in Hz.
func (h Header) Samplerate() (int, error) {
	if h.HasReservedSamplerate() {
		return 0, ErrReservedSamplerate
	}
	idx := h.SamplerateIndex()
	switch h.Version() {
	case Version1:
		return samplerateV1[idx], nil
	case Version2:
		return samplerateV2[idx], nil
	case Version25:
		return samplerateV25[idx], nil
	}
	return 0, ErrReservedVersion
}

// CanCalculateSamplerate reports whether Samplerate will succeed.
func (h Header) CanCalculateSamplerate() bool {
	return !(h.HasReservedSamplerate() || h.Version() == VersionReserved)
}

// CanCalculateFrameLength reports whether FrameLength will succeed.
func (h Header) CanCalculateFrameLength() bool {
	// layer is covered by CanCalculateBitrate
	return h.CanCalculateBitrate() && h.CanCalculateSamplerate()
}

// FrameLength returns the length of the frame in bytes, header and CRC
// included.
func (h Header) FrameLength() (int, error) {
	if h.Version() == VersionReserved {
		return 0, ErrReservedVersion
	}

	var scale, slotSize int
	switch h.Layer() {
	case Layer1:
		scale, slotSize = l1Scale, l1SlotSize
	case Layer2, Layer3:
		scale, slotSize = l23Scale, l23Slot
	default:
		return 0, ErrReservedLayer
	}

	bitrate, err := h.Bitrate()
	if err != nil {
		return 0, errors.Wrap(err, "cannot calculate bitrate")
	}
	samplerate, err := h.Samplerate()
	if err != nil {
		return 0, errors.Wrap(err, "cannot calculate samplerate")
	}

	slots := scale * bitrate / samplerate
	if h.HasPadding() {
		slots++
	}
	return slots*slotSize + h.crcSize(), nil
}

// PayloadLength returns the frame length minus the header and CRC.
func (h Header) PayloadLength() (int, error) {
	n, err := h.FrameLength()
	if err != nil {
		return 0, err
	}
	return n - HeaderSize - h.crcSize(), nil
}

// HasInvalidBitrateForChannelMode reports whether a Layer II header pairs
// its bitrate with a channel mode the standard forbids. Other layers, and
// free or invalid bitrates, are never flagged.
func (h Header) HasInvalidBitrateForChannelMode() bool {
	if h.Layer() != Layer2 {
		return false
	}
	bitrate, err := h.Bitrate()
	if err != nil {
		return false
	}

	mono := h.ChannelMode() == SingleChannel
	switch bitrate {
	case 32000, 48000, 56000, 80000:
		return !mono
	case 224000, 256000, 320000, 384000:
		return mono
	}
	return false
}

// IsValid reports whether the header describes a valid MPEG audio frame.
// A free bitrate alone does not make a header invalid.
func (h Header) IsValid() bool {
	return h.HasFrameSync() &&
		h.Version() != VersionReserved &&
		h.Layer() != LayerReserved &&
		!h.HasInvalidBitrate() &&
		!h.HasReservedSamplerate() &&
		h.Emphasis() != EmphasisReserved &&
		!h.HasInvalidBitrateForChannelMode()
}

// minFrameLength is the shortest buffer a Frame with this header may hold.
func (h Header) minFrameLength() int {
	return HeaderSize + h.crcSize()
}

// SideInfoLength returns the size of the Layer III side information that
// follows the header and CRC. ok is false for other layers.
func (h Header) SideInfoLength() (n int, ok bool) {
	if h.Layer() != Layer3 || h.Version() == VersionReserved {
		return 0, false
	}
	mono := h.ChannelMode() == SingleChannel
	switch {
	case h.Version() == Version1 && mono:
		return 17, true
	case h.Version() == Version1:
		return 32, true
	case mono:
		return 9, true
	default:
		return 17, true
	}
}

// SamplesPerFrame returns the number of PCM samples one frame decodes to.
func (h Header) SamplesPerFrame() int {
	switch h.Layer() {
	case Layer1:
		return 384
	case Layer2:
		return 1152
	case Layer3:
		if h.Version() == Version1 {
			return 1152
		}
		return 576
	}
	return 0
}
