package mpeg

import "io"

// Region is a contiguous run of stream bytes: either a *Frame or a *Junk.
// Concatenating the regions a Segmenter yields, in order, reproduces the
// source stream exactly.
type Region interface {
	// Bytes returns a copy of the region's bytes.
	Bytes() []byte
	// Len is the number of bytes in the region.
	Len() int
	// Offset is the absolute stream position of the region's first byte.
	Offset() int64
	// WriteTo writes the region's bytes to w.
	WriteTo(w io.Writer) (int64, error)

	isRegion()
}

// span holds the immutable bytes shared by both region kinds.
type span struct {
	data   []byte
	offset int64
}

func newSpan(b []byte, offset int64) span {
	data := make([]byte, len(b))
	copy(data, b)
	return span{data: data, offset: offset}
}

func (s *span) Bytes() []byte {
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

func (s *span) Len() int { return len(s.data) }

func (s *span) Offset() int64 { return s.offset }

func (s *span) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.data)
	return int64(n), err
}

func (s *span) isRegion() {}
