// Package lame reads the encoder information LAME stores in the first frame
// of a stream.
package lame

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/zachfi/mpegscan/pkg/mpeg"
)

const (
	tagOffset      = 0x9C
	tagLength      = 4
	encoderLength  = 9
	musicCRCOffset = 0xBC
	infoCRCOffset  = 0xBE

	// InfoCRCLength is the number of leading frame bytes the info CRC covers.
	InfoCRCLength = 190
)

var tag = [tagLength]byte{'L', 'A', 'M', 'E'}

var ErrNoTag = errors.New("frame does not carry a LAME tag")

// Header is the LAME tag of a frame.
type Header struct {
	frame *mpeg.Frame
	data  []byte
}

// IsLAME reports whether b holds the LAME marker at its fixed offset.
func IsLAME(b []byte) bool {
	if len(b) < tagOffset+tagLength {
		return false
	}
	return [tagLength]byte(b[tagOffset:tagOffset+tagLength]) == tag
}

// Parse returns the LAME tag of f, or ErrNoTag if f has none.
func Parse(f *mpeg.Frame) (*Header, error) {
	if f == nil {
		return nil, errors.Wrap(ErrNoTag, "nil frame")
	}
	data := f.Bytes()
	if !IsLAME(data) {
		return nil, ErrNoTag
	}
	return &Header{frame: f, data: data}, nil
}

func (h *Header) Frame() *mpeg.Frame { return h.frame }

// Encoder returns the encoder version string, e.g. "LAME3.100".
func (h *Header) Encoder() string {
	end := min(tagOffset+encoderLength, len(h.data))
	return string(h.data[tagOffset:end])
}

// MusicCRC is the stored CRC of the audio following the LAME frame. The
// second return is false if the frame is too short to hold it.
func (h *Header) MusicCRC() (uint16, bool) {
	return h.uint16At(musicCRCOffset)
}

// InfoCRC is the stored CRC of the first InfoCRCLength bytes of the frame.
func (h *Header) InfoCRC() (uint16, bool) {
	return h.uint16At(infoCRCOffset)
}

// CalculateInfoCRC computes the info CRC over the frame's bytes.
func (h *Header) CalculateInfoCRC() (uint16, error) {
	if len(h.data) < InfoCRCLength {
		return 0, errors.Errorf("frame is %d bytes, info crc covers %d", len(h.data), InfoCRCLength)
	}
	return Checksum(h.data[:InfoCRCLength]), nil
}

// InfoCRCMatches reports whether the stored and calculated info CRCs agree.
func (h *Header) InfoCRCMatches() bool {
	stored, ok := h.InfoCRC()
	if !ok {
		return false
	}
	calculated, err := h.CalculateInfoCRC()
	if err != nil {
		return false
	}
	return stored == calculated
}

func (h *Header) uint16At(offset int) (uint16, bool) {
	if len(h.data) < offset+2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(h.data[offset:]), true
}
