package mpeg

import "github.com/pkg/errors"

// Frame is one MPEG audio frame, possibly truncated. It is immutable.
type Frame struct {
	span
	header Header
}

// NewFrame copies b into a new Frame. b must start with a valid header, hold
// the CRC if the header declares one, and must not be longer than the
// header's calculated frame length. Shorter buffers are truncated frames.
func NewFrame(b []byte) (*Frame, error) {
	return newFrameAt(b, 0)
}

func newFrameAt(b []byte, offset int64) (*Frame, error) {
	if len(b) < HeaderSize {
		return nil, errors.Wrap(ErrFrameTooShort, "must be at least 4 bytes")
	}

	var h Header
	copy(h[:], b)
	if !h.IsValid() {
		return nil, errors.Wrapf(ErrInvalidHeader, "% x", h[:])
	}
	if h.HasCRC() && len(b) < HeaderSize+CRCSize {
		return nil, errors.Wrap(ErrFrameTooShort, "must be at least 6 bytes with CRC")
	}
	if h.CanCalculateFrameLength() {
		n, err := h.FrameLength()
		if err != nil {
			return nil, err
		}
		if len(b) > n {
			return nil, errors.Wrapf(ErrFrameTooLong, "%d bytes, header declares %d", len(b), n)
		}
	}

	return &Frame{span: newSpan(b, offset), header: h}, nil
}

func (f *Frame) Header() Header { return f.header }

// CalculatedLength is the frame length the header declares.
func (f *Frame) CalculatedLength() (int, error) { return f.header.FrameLength() }

// ActualLength is the number of bytes the frame holds.
func (f *Frame) ActualLength() int { return f.Len() }

// IsTruncated reports whether the frame holds fewer bytes than its header
// declares. Frames whose length cannot be calculated are never truncated.
func (f *Frame) IsTruncated() bool {
	n, err := f.header.FrameLength()
	if err != nil {
		return false
	}
	return f.Len() < n
}

// CRC returns the two CRC bytes that follow the header.
func (f *Frame) CRC() ([]byte, error) {
	if !f.header.HasCRC() {
		return nil, ErrNoCRC
	}
	return []byte{f.data[HeaderSize], f.data[HeaderSize+1]}, nil
}

// Payload returns a copy of the bytes after the header and CRC.
func (f *Frame) Payload() []byte {
	start := f.header.minFrameLength()
	out := make([]byte, f.Len()-start)
	copy(out, f.data[start:])
	return out
}
