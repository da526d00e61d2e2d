package mpeg

import (
	"io"
	"iter"

	"github.com/pkg/errors"
)

const (
	// readChunk is the smallest read issued against the source.
	readChunk = 4096

	// maxEmptyReads bounds consecutive (0, nil) reads before giving up.
	maxEmptyReads = 100
)

type state uint8

const (
	// stateStart checks for a leading ID3v2 tag.
	stateStart state = iota
	// stateSeek looks for a header at the first unclassified byte and
	// judges it once found.
	stateSeek
	stateDone
)

// Segmenter splits an MPEG audio elementary stream into frames and junk.
// It reads the source once, forward only, and holds at most one candidate
// frame plus the header that follows it.
//
// A header that merely looks valid is only a candidate: it becomes a Frame
// once the header right after it is valid too, or the stream ends exactly
// where the frame does. A stream that has produced a confirmed frame is
// "proven" and is given the benefit of the doubt over one interruption: a
// candidate whose follower is bad, or that is cut short by the end of the
// stream, is still reported as a (possibly truncated) Frame.
//
// A Segmenter is not safe for concurrent use.
type Segmenter struct {
	r          io.Reader
	buf        []byte // buf[head:] holds bytes not yet emitted
	head       int
	base       int64 // stream offset of buf[head]
	eof        bool
	emptyReads int

	state  state
	junk   int   // leading bytes of buf[head:] classified as junk
	skip   int64 // bytes still to be swallowed as junk without inspection
	proven bool

	out     []Region
	err     error
	started bool
}

// NewSegmenter returns a Segmenter reading from r.
func NewSegmenter(r io.Reader) (*Segmenter, error) {
	if r == nil {
		return nil, ErrNilReader
	}
	return &Segmenter{
		r:   r,
		buf: make([]byte, 0, 2*readChunk),
	}, nil
}

// Next returns the next region of the stream. It returns io.EOF once every
// byte of the source has been emitted. Any other error is sticky.
func (s *Segmenter) Next() (Region, error) {
	for {
		if len(s.out) > 0 {
			r := s.out[0]
			s.out[0] = nil
			s.out = s.out[1:]
			return r, nil
		}
		if s.err != nil {
			return nil, s.err
		}
		if s.state == stateDone {
			return nil, io.EOF
		}
		if err := s.step(); err != nil {
			s.err = err
		}
	}
}

// Regions returns a single-use iterator over the stream's regions. Ranging
// over a Segmenter a second time yields ErrAlreadyIterated. Stopping early
// leaves the rest of the source unread.
func (s *Segmenter) Regions() iter.Seq2[Region, error] {
	return func(yield func(Region, error) bool) {
		if s.started {
			yield(nil, ErrAlreadyIterated)
			return
		}
		s.started = true

		for {
			r, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(r, err) || err != nil {
				return
			}
		}
	}
}

// Proven reports whether the most recent judgement confirmed a frame.
func (s *Segmenter) Proven() bool { return s.proven }

func (s *Segmenter) step() error {
	switch s.state {
	case stateStart:
		return s.stepStart()
	case stateSeek:
		return s.stepSeek()
	}
	return errors.Wrapf(ErrInternal, "step in state %d", s.state)
}

// stepStart swallows a leading ID3v2 tag. It only runs at offset 0.
func (s *Segmenter) stepStart() error {
	s.state = stateSeek

	n, err := s.fill(id3MarkerSize)
	if err != nil {
		return err
	}
	if n < id3MarkerSize || !hasID3Marker(s.window(0, id3MarkerSize)) {
		return nil
	}

	n, err = s.fill(id3HeaderSize)
	if err != nil {
		return err
	}
	if n < id3HeaderSize {
		// a bare marker; the seek loop turns it into junk
		return nil
	}
	s.skip = id3TagLength(s.window(0, id3HeaderSize))
	return nil
}

func (s *Segmenter) stepSeek() error {
	if s.skip > 0 {
		return s.swallow()
	}

	n, err := s.fill(s.junk + HeaderSize)
	if err != nil {
		return err
	}
	if n-s.junk < HeaderSize {
		return s.finish()
	}

	h := s.headerAt(s.junk)
	if !h.IsValid() {
		s.addJunk(1)
		return nil
	}
	if h.HasFreeBitrate() {
		return s.judgeFree(h)
	}
	return s.judgeFixed(h)
}

// swallow classifies the bytes of a skipped tag as junk.
func (s *Segmenter) swallow() error {
	n, err := s.fill(s.junk + 1)
	if err != nil {
		return err
	}
	avail := n - s.junk
	if avail <= 0 {
		s.skip = 0
		return s.finish()
	}
	take := int64(avail)
	if take > s.skip {
		take = s.skip
	}
	if room := int64(MaxJunkLength - s.junk); take > room {
		take = room
	}
	s.skip -= take
	s.addJunk(int(take))
	return nil
}

// judgeFixed decides the fate of a candidate whose length the header
// declares.
func (s *Segmenter) judgeFixed(h Header) error {
	length, err := h.FrameLength()
	if err != nil {
		return errors.Wrapf(ErrInternal, "valid header without frame length: %v", err)
	}

	n, err := s.fill(s.junk + length + HeaderSize)
	if err != nil {
		return err
	}
	avail := n - s.junk

	switch {
	case avail >= length+HeaderSize:
		if s.headerAt(s.junk + length).IsValid() {
			return s.confirm(length)
		}
		return s.rejectFixed(h, length)

	case avail == length:
		// the stream ends exactly where the frame does
		return s.confirm(length)

	case avail > length:
		// a partial header follows, too short to judge
		if s.proven {
			s.proven = false
			return s.emitFrame(length)
		}

	default:
		if s.proven && avail >= h.minFrameLength() {
			s.proven = false
			return s.emitFrame(avail)
		}
	}

	s.addJunk(1)
	return nil
}

// rejectFixed handles a candidate whose follower is not a valid header.
// Unproven streams treat the candidate's sync as coincidental and resume
// the scan one byte later. A proven stream keeps the frame, cut short
// where a valid header reappears inside it.
func (s *Segmenter) rejectFixed(h Header, length int) error {
	if !s.proven {
		s.addJunk(1)
		return nil
	}
	s.proven = false

	for i := 1; i < length; i++ {
		if !s.headerAt(s.junk + i).IsValid() {
			continue
		}
		if i < h.minFrameLength() {
			s.addJunk(i)
			return nil
		}
		return s.emitFrame(i)
	}
	return s.emitFrame(length)
}

// judgeFree delimits a free bitrate candidate by the next valid header.
func (s *Segmenter) judgeFree(h Header) error {
	minimum := h.minFrameLength()

	for length := minimum; length <= MaxJunkLength; length++ {
		n, err := s.fill(s.junk + length + HeaderSize)
		if err != nil {
			return err
		}
		avail := n - s.junk

		if avail < length+HeaderSize {
			if s.proven && avail >= minimum {
				s.proven = false
				return s.emitFrame(avail)
			}
			break
		}
		if s.headerAt(s.junk + length).IsValid() {
			return s.confirm(length)
		}
	}

	s.proven = false
	s.addJunk(1)
	return nil
}

func (s *Segmenter) confirm(length int) error {
	if err := s.emitFrame(length); err != nil {
		return err
	}
	s.proven = true
	return nil
}

// emitFrame queues the pending junk followed by a frame of length bytes.
func (s *Segmenter) emitFrame(length int) error {
	if err := s.flushJunk(); err != nil {
		return err
	}
	offset := s.base
	f, err := newFrameAt(s.consume(length), offset)
	if err != nil {
		return errors.Wrapf(ErrInternal, "frame at offset %d: %v", offset, err)
	}
	s.out = append(s.out, f)
	return nil
}

// addJunk classifies n more bytes as junk, emitting full regions as the
// run reaches MaxJunkLength.
func (s *Segmenter) addJunk(n int) {
	s.junk += n
	for s.junk >= MaxJunkLength {
		if err := s.emitJunk(MaxJunkLength); err != nil {
			s.err = err
			return
		}
	}
}

func (s *Segmenter) flushJunk() error {
	for s.junk > 0 {
		n := min(s.junk, MaxJunkLength)
		if err := s.emitJunk(n); err != nil {
			return err
		}
	}
	return nil
}

func (s *Segmenter) emitJunk(n int) error {
	offset := s.base
	j, err := newJunkAt(s.consume(n), offset)
	if err != nil {
		return errors.Wrapf(ErrInternal, "junk at offset %d: %v", offset, err)
	}
	s.junk -= n
	s.out = append(s.out, j)
	return nil
}

// finish emits whatever is left once no header fits in the remaining bytes.
func (s *Segmenter) finish() error {
	s.junk = len(s.buf) - s.head
	if err := s.flushJunk(); err != nil {
		return err
	}
	s.state = stateDone

	if s.head != len(s.buf) {
		return errors.Wrapf(ErrInternal, "%d bytes left in buffer", len(s.buf)-s.head)
	}
	if !s.eof {
		return errors.Wrap(ErrInternal, "finished before end of stream")
	}
	return nil
}

// fill reads until at least n unemitted bytes are buffered or the source is
// exhausted, and returns the number of unemitted bytes buffered.
func (s *Segmenter) fill(n int) (int, error) {
	for !s.eof && len(s.buf)-s.head < n {
		s.reserve(max(n-(len(s.buf)-s.head), readChunk))

		m, err := s.r.Read(s.buf[len(s.buf):cap(s.buf)])
		s.buf = s.buf[:len(s.buf)+m]

		switch {
		case errors.Is(err, io.EOF):
			s.eof = true
		case err != nil:
			return 0, errors.Wrapf(err, "reading stream at offset %d", s.base+int64(len(s.buf)-s.head))
		case m == 0:
			s.emptyReads++
			if s.emptyReads >= maxEmptyReads {
				return 0, io.ErrNoProgress
			}
		default:
			s.emptyReads = 0
		}
	}
	return len(s.buf) - s.head, nil
}

// reserve makes room for n more bytes after the buffered data, moving the
// unemitted bytes to the front of the buffer first.
func (s *Segmenter) reserve(n int) {
	if cap(s.buf)-len(s.buf) >= n {
		return
	}
	live := len(s.buf) - s.head
	if s.head > 0 && cap(s.buf)-live >= n {
		copy(s.buf, s.buf[s.head:])
		s.buf = s.buf[:live]
		s.head = 0
		return
	}
	grown := make([]byte, live, live+n)
	copy(grown, s.buf[s.head:])
	s.buf = grown
	s.head = 0
}

// consume removes n bytes from the front of the buffer. The returned slice
// is only valid until the next fill.
func (s *Segmenter) consume(n int) []byte {
	b := s.buf[s.head : s.head+n]
	s.head += n
	s.base += int64(n)
	return b
}

func (s *Segmenter) window(i, n int) []byte {
	return s.buf[s.head+i : s.head+i+n]
}

func (s *Segmenter) headerAt(i int) Header {
	var h Header
	copy(h[:], s.window(i, HeaderSize))
	return h
}
