package shoutcast

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

const userAgent = "iTunes/12.9.2 (Macintosh; OS X 10.14.3) AppleWebKit/606.4.5"

// metadataBlockUnit is the multiplier of the ICY metadata length byte.
const metadataBlockUnit = 16

// MetadataCallbackFunc is the type of the function called when the stream metadata changes
type MetadataCallbackFunc func(m *Metadata)

// Stream represents an open shoutcast stream. Read returns audio bytes only;
// metadata blocks are consumed and reported through MetadataCallbackFunc.
type Stream struct {
	// The name of the server
	Name string

	// What category the server falls under
	Genre string

	// The description of the stream
	Description string

	// Homepage of the server
	URL string

	// Bitrate of the server
	Bitrate int

	// Optional function to be executed when stream metadata changes
	MetadataCallbackFunc MetadataCallbackFunc

	logger *slog.Logger

	// Amount of bytes to read before expecting a metadata block. Zero when
	// the server sends no metadata.
	metaint int

	// Stream metadata
	metadata *Metadata

	// The number of audio bytes read since last metadata block
	pos int

	// The underlying data stream
	rc io.ReadCloser
}

func newClient(responseTimeout time.Duration) *http.Client {
	// Timeout for establishing the connection only, the stream itself is
	// read indefinitely.
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	return &http.Client{Transport: &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: responseTimeout,
	}}
}

func newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("accept", "*/*")
	req.Header.Add("user-agent", userAgent)
	req.Header.Add("icy-metadata", "1")
	return req, nil
}

// Open establishes a connection to a remote server.
// It automatically handles playlist files (.pls, .m3u) and resolves them to stream URLs.
// The stream is closed when ctx is done.
func Open(ctx context.Context, url string, logger *slog.Logger) (*Stream, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("url", url)
	logger.Info("opening stream")

	resolvedURL, err := resolvePlaylistURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve playlist URL: %w", err)
	}
	if resolvedURL != url {
		logger.Info("resolved playlist to stream URL", "stream_url", resolvedURL)
		url = resolvedURL
	}

	req, err := newRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	resp, err := newClient(10 * time.Second).Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	for k, v := range resp.Header {
		logger.Debug("HTTP header", "key", k, "value", v[0])
	}

	var bitrate int
	if rawBitrate := resp.Header.Get("icy-br"); rawBitrate != "" {
		bitrate, err = strconv.Atoi(rawBitrate)
		if err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("cannot parse bitrate: %w", err)
		}
	}

	var metaint int
	if rawMetaint := resp.Header.Get("icy-metaint"); rawMetaint != "" {
		metaint, err = strconv.Atoi(rawMetaint)
		if err != nil || metaint < 0 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("cannot parse metaint %q: %w", rawMetaint, err)
		}
	}

	return &Stream{
		Name:        resp.Header.Get("icy-name"),
		Genre:       resp.Header.Get("icy-genre"),
		Description: resp.Header.Get("icy-description"),
		URL:         resp.Header.Get("icy-url"),
		Bitrate:     bitrate,
		logger:      logger,
		metaint:     metaint,
		rc:          resp.Body,
	}, nil
}

// Read implements io.Reader over the audio bytes of the stream. A read never
// spans a metadata block.
func (s *Stream) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	if s.metaint > 0 {
		if s.pos == s.metaint {
			if err := s.readMetadata(); err != nil {
				return 0, err
			}
			s.pos = 0
		}
		buf = buf[:min(len(buf), s.metaint-s.pos)]
	}

	n, err := s.rc.Read(buf)
	s.pos += n
	return n, err
}

// readMetadata consumes one metadata block and reports it if it changed.
func (s *Stream) readMetadata() error {
	var length [1]byte
	if _, err := io.ReadFull(s.rc, length[:]); err != nil {
		return err
	}

	n := int(length[0]) * metadataBlockUnit
	if n == 0 {
		return nil
	}

	block := make([]byte, n)
	if _, err := io.ReadFull(s.rc, block); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}

	if m := NewMetadata(block); !m.Equals(s.metadata) {
		s.metadata = m
		s.logger.Debug("metadata changed", "title", m.StreamTitle)
		if s.MetadataCallbackFunc != nil {
			s.MetadataCallbackFunc(m)
		}
	}
	return nil
}

// Metadata returns the most recent metadata, or nil if none was received.
func (s *Stream) Metadata() *Metadata { return s.metadata }

// HasMetadata reports whether the server interleaves ICY metadata.
func (s *Stream) HasMetadata() bool { return s.metaint > 0 }

// Close closes the stream
func (s *Stream) Close() error {
	s.logger.Info("closing stream")
	return s.rc.Close()
}
