package mpeg

import "github.com/pkg/errors"

// MaxJunkLength caps the length of a single Junk region. It is larger than
// the longest possible frame because up to one frame of bytes may be held
// before the segmenter can judge them. Longer runs are split.
const MaxJunkLength = 2886

// Junk is a non-empty run of bytes that could not be attributed to a
// confirmed frame. It carries no interpretation.
type Junk struct {
	span
}

// NewJunk copies b into a new Junk region. b must hold between 1 and
// MaxJunkLength bytes.
func NewJunk(b []byte) (*Junk, error) {
	return newJunkAt(b, 0)
}

func newJunkAt(b []byte, offset int64) (*Junk, error) {
	if len(b) == 0 {
		return nil, ErrEmptyJunk
	}
	if len(b) > MaxJunkLength {
		return nil, errors.Wrapf(ErrJunkTooLong, "%d bytes", len(b))
	}
	return &Junk{span: newSpan(b, offset)}, nil
}
