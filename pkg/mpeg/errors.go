package mpeg

import "github.com/pkg/errors"

// Precondition failures of the header rules. Each cause has its own value so
// callers can branch with errors.Is.
var (
	ErrFreeBitrate        = errors.New("frame has a free bitrate")
	ErrInvalidBitrate     = errors.New("frame has an invalid bitrate")
	ErrReservedVersion    = errors.New("frame has a reserved version")
	ErrReservedLayer      = errors.New("frame has a reserved layer")
	ErrReservedSamplerate = errors.New("frame has a reserved samplerate")
)

// Construction contract violations.
var (
	ErrHeaderLength  = errors.New("frame header must be 4 bytes long")
	ErrInvalidHeader = errors.New("invalid frame header")
	ErrFrameTooShort = errors.New("data too short for frame")
	ErrFrameTooLong  = errors.New("data too long for frame")
	ErrNoCRC         = errors.New("frame does not have a CRC")
	ErrEmptyJunk     = errors.New("junk region must not be empty")
	ErrJunkTooLong   = errors.New("junk region exceeds maximum length")
	ErrNilReader     = errors.New("reader must not be nil")
)

var (
	// ErrAlreadyIterated is returned when a Segmenter is ranged over a second time.
	ErrAlreadyIterated = errors.New("cannot iterate regions more than once")

	// ErrInternal marks a defect in the segmenter itself, never bad input.
	ErrInternal = errors.New("segmenter invariant violated")
)
