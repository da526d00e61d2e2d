// Package validate checks MPEG audio streams for defects. A Crawler
// publishes the regions of a stream onto a Bus and validators subscribed to
// the Bus publish Failures.
package validate

import (
	"log/slog"

	"github.com/zachfi/mpegscan/pkg/events"
	"github.com/zachfi/mpegscan/pkg/lame"
	"github.com/zachfi/mpegscan/pkg/mpeg"
)

// BeginStream is published before the first region of a stream.
type BeginStream struct {
	Name string
}

// EndStream is published after the last region of a stream.
type EndStream struct {
	Name    string
	Regions int
	Bytes   int64
}

// MissedLameHeader is published when the first frame carries no LAME tag,
// or when the stream has no frames at all. Frame is nil in the latter case.
type MissedLameHeader struct {
	Frame *mpeg.Frame
}

// Bus is the set of topics one stream is validated over. Every subscriber
// of a topic receives every event published on it.
type Bus struct {
	BeginStream      *events.Topic[BeginStream]
	FoundFrame       *events.Topic[*mpeg.Frame]
	FoundJunk        *events.Topic[*mpeg.Junk]
	FoundLameHeader  *events.Topic[*lame.Header]
	MissedLameHeader *events.Topic[MissedLameHeader]
	EndStream        *events.Topic[EndStream]
	Failure          *events.Topic[Failure]
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		BeginStream:      events.NewTopic[BeginStream]("begin_stream", logger),
		FoundFrame:       events.NewTopic[*mpeg.Frame]("found_frame", logger),
		FoundJunk:        events.NewTopic[*mpeg.Junk]("found_junk", logger),
		FoundLameHeader:  events.NewTopic[*lame.Header]("found_lame_header", logger),
		MissedLameHeader: events.NewTopic[MissedLameHeader]("missed_lame_header", logger),
		EndStream:        events.NewTopic[EndStream]("end_stream", logger),
		Failure:          events.NewTopic[Failure]("failure", logger),
	}
}

// fail publishes a Failure on the bus.
func (b *Bus) fail(kind FailureType, offset int64, details string) {
	b.Failure.Publish(Failure{Type: kind, Details: details, Offset: offset})
}
