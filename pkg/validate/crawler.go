package validate

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/zachfi/mpegscan/pkg/lame"
	"github.com/zachfi/mpegscan/pkg/mpeg"
)

// Crawler segments a stream and publishes its regions.
type Crawler struct {
	bus    *Bus
	logger *slog.Logger
}

func NewCrawler(bus *Bus, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{bus: bus, logger: logger}
}

// Crawl publishes BeginStream, every region of r and EndStream, in that
// order. A segmenter error ends the crawl and is published as a parser
// Failure before EndStream. Crawl only returns an error when ctx is done,
// in which case EndStream is not published.
func (c *Crawler) Crawl(ctx context.Context, name string, r io.Reader) error {
	s, err := mpeg.NewSegmenter(r)
	if err != nil {
		return errors.Wrap(err, "creating segmenter")
	}

	c.bus.BeginStream.Publish(BeginStream{Name: name})

	end := EndStream{Name: name}
	for region, err := range s.Regions() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			c.logger.Error("parser failure", "stream", name, "offset", end.Bytes, "err", err)
			c.bus.fail(FailureParser, end.Bytes, err.Error())
			break
		}

		end.Regions++
		end.Bytes += int64(region.Len())

		switch v := region.(type) {
		case *mpeg.Frame:
			c.bus.FoundFrame.Publish(v)
		case *mpeg.Junk:
			c.bus.FoundJunk.Publish(v)
		}
	}

	c.bus.EndStream.Publish(end)
	return nil
}

// LameHeaderService inspects the first frame of a stream for a LAME tag.
type LameHeaderService struct {
	bus  *Bus
	seen bool
}

func NewLameHeaderService(bus *Bus) *LameHeaderService {
	s := &LameHeaderService{bus: bus}
	bus.FoundFrame.Subscribe(s.foundFrame)
	bus.EndStream.Subscribe(s.endStream)
	return s
}

func (s *LameHeaderService) foundFrame(f *mpeg.Frame) error {
	if s.seen {
		return nil
	}
	s.seen = true

	h, err := lame.Parse(f)
	if err != nil {
		s.bus.MissedLameHeader.Publish(MissedLameHeader{Frame: f})
		return nil
	}
	s.bus.FoundLameHeader.Publish(h)
	return nil
}

func (s *LameHeaderService) endStream(EndStream) error {
	if !s.seen {
		s.seen = true
		s.bus.MissedLameHeader.Publish(MissedLameHeader{})
	}
	return nil
}
