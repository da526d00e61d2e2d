package shoutcast

import (
	"strings"
)

// Metadata is the content of one ICY metadata block.
type Metadata struct {
	// Title of the currently playing track, usually "Artist - Title"
	StreamTitle string

	// Optional URL announced alongside the title
	StreamURL string
}

// NewMetadata parses an ICY metadata block of the form
// StreamTitle='...';StreamUrl='...'; padded with NUL bytes. Unknown keys
// are ignored.
func NewMetadata(b []byte) *Metadata {
	m := &Metadata{}

	s := strings.TrimRight(string(b), "\x00")
	for len(s) > 0 {
		eq := strings.Index(s, "='")
		if eq < 0 {
			break
		}
		key := strings.TrimSpace(s[:eq])
		s = s[eq+2:]

		// values may contain quotes, so a value ends at the first "';"
		end := strings.Index(s, "';")
		var value string
		if end < 0 {
			value = strings.TrimSuffix(s, "'")
			s = ""
		} else {
			value = s[:end]
			s = s[end+2:]
		}

		switch key {
		case "StreamTitle":
			m.StreamTitle = value
		case "StreamUrl":
			m.StreamURL = value
		}
	}
	return m
}

// Equals reports whether m and other describe the same track. A nil
// Metadata only equals nil.
func (m *Metadata) Equals(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.StreamTitle == other.StreamTitle && m.StreamURL == other.StreamURL
}
