package ripper

import (
	"context"
	"log/slog"
	"time"

	"github.com/grafana/dskit/backoff"
	"github.com/grafana/dskit/services"
	"github.com/pkg/errors"

	"github.com/zachfi/mpegscan/pkg/mpeg"
	"github.com/zachfi/mpegscan/pkg/shoutcast"
)

const module = "ripper"

// Ripper records a shoutcast stream into one file per title. Only bytes the
// segmenter confirms as MPEG frames are written unless KeepJunk is set.
type Ripper struct {
	services.Service
	cfg    *Config
	logger *slog.Logger
}

// New creates and returns a new Ripper.
func New(cfg Config, logger *slog.Logger) (*Ripper, error) {
	if cfg.URL == "" {
		return nil, errors.New("ripper url is required")
	}
	if cfg.WriteBufferSize == 0 {
		cfg.WriteBufferSize = defaultWriteBufferSize
	}
	if cfg.ReconnectBackoff <= 0 {
		cfg.ReconnectBackoff = defaultReconnectInitial
	}
	if cfg.ReconnectBackoffMax < cfg.ReconnectBackoff {
		cfg.ReconnectBackoffMax = max(defaultReconnectMax, cfg.ReconnectBackoff)
	}

	r := &Ripper{
		cfg:    &cfg,
		logger: logger.With("module", module),
	}

	r.Service = services.NewBasicService(nil, r.running, r.stopping)

	return r, nil
}

func (r *Ripper) running(ctx context.Context) error {
	boff := backoff.New(ctx, backoff.Config{
		MinBackoff: r.cfg.ReconnectBackoff,
		MaxBackoff: r.cfg.ReconnectBackoffMax,
	})

	for boff.Ongoing() {
		stream, err := shoutcast.Open(ctx, r.cfg.URL, r.logger)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			r.logger.Error("error opening stream", "err", err, "retries", boff.NumRetries())
			metricReconnects.Inc()
			boff.Wait()
			continue
		}

		frames, err := r.record(ctx, stream)
		_ = stream.Close()

		if ctx.Err() != nil {
			break
		}
		if err != nil {
			r.logger.Error("stream failed", "err", err, "frames", frames)
		} else {
			r.logger.Warn("stream ended", "frames", frames)
		}

		// A connection that delivered audio starts the delay over.
		if frames > 0 {
			boff.Reset()
		}
		metricReconnects.Inc()
		boff.Wait()
	}

	return nil
}

// record segments the stream until it ends, switching tracks when the
// stream title changes. It returns the number of frames read.
func (r *Ripper) record(ctx context.Context, stream *shoutcast.Stream) (int, error) {
	// The callback runs inside stream.Read, which only the segmenter below
	// calls, so title needs no lock.
	var title string
	stream.MetadataCallbackFunc = func(m *shoutcast.Metadata) {
		r.logger.Info("now listening to", "title", m.StreamTitle)
		title = m.StreamTitle
	}
	if !stream.HasMetadata() {
		title = time.Now().Format("2006-01-02T15-04-05")
	}

	seg, err := mpeg.NewSegmenter(stream)
	if err != nil {
		return 0, err
	}

	var (
		t      *track
		frames int
	)
	defer func() {
		if t != nil {
			r.closeTrack(t)
		}
	}()

	for region, err := range seg.Regions() {
		if err != nil {
			return frames, err
		}
		if ctx.Err() != nil {
			return frames, ctx.Err()
		}

		kind := "junk"
		if _, ok := region.(*mpeg.Frame); ok {
			kind = "frame"
			frames++
		}
		metricRegionBytes.WithLabelValues(kind).Add(float64(region.Len()))

		// Audio before the first title cannot be named.
		if title == "" {
			continue
		}

		if t == nil || t.title != title {
			if t != nil {
				r.closeTrack(t)
				t = nil
			}
			if t, err = r.newTrack(stream.Name, title); err != nil {
				return frames, err
			}
		}

		if err := t.write(region, r.cfg.KeepJunk); err != nil {
			return frames, errors.Wrap(err, "error writing to file")
		}
	}

	return frames, nil
}

// stopping runs once running has returned. The stream request is bound to
// the running context, so a pending read has already been aborted.
func (r *Ripper) stopping(_ error) error {
	r.logger.Info("stopping")
	return nil
}
