package validate

import (
	"context"
	"io"
	"log/slog"

	"github.com/zachfi/mpegscan/pkg/mpeg"
)

// Report summarises one validated stream.
type Report struct {
	Name        string    `json:"name,omitempty"`
	Regions     int       `json:"regions"`
	Bytes       int64     `json:"bytes"`
	Frames      int       `json:"frames"`
	JunkRegions int       `json:"junk_regions"`
	JunkBytes   int64     `json:"junk_bytes"`
	Failures    []Failure `json:"failures"`
}

// Valid reports whether no failure was found.
func (r *Report) Valid() bool { return len(r.Failures) == 0 }

// Collector gathers the Failures and region counts published on a Bus.
type Collector struct {
	report Report
}

func NewCollector(bus *Bus) *Collector {
	c := &Collector{report: Report{Failures: []Failure{}}}

	bus.FoundFrame.Subscribe(func(*mpeg.Frame) error {
		c.report.Frames++
		return nil
	})
	bus.FoundJunk.Subscribe(func(j *mpeg.Junk) error {
		c.report.JunkRegions++
		c.report.JunkBytes += int64(j.Len())
		return nil
	})
	bus.Failure.Subscribe(func(f Failure) error {
		c.report.Failures = append(c.report.Failures, f)
		return nil
	})
	bus.BeginStream.Subscribe(func(b BeginStream) error {
		c.report.Name = b.Name
		return nil
	})
	bus.EndStream.Subscribe(func(e EndStream) error {
		c.report.Regions = e.Regions
		c.report.Bytes = e.Bytes
		return nil
	})
	return c
}

// Report returns the collected report.
func (c *Collector) Report() *Report {
	r := c.report
	return &r
}

// Validate runs validators over r and returns the report. With no
// validators, Default is used. Defects in the stream are reported as
// Failures; an error is returned only for a nil reader or when ctx ends
// before the stream does.
func Validate(ctx context.Context, name string, r io.Reader, logger *slog.Logger, validators ...Validator) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(validators) == 0 {
		validators = Default()
	}

	bus := NewBus(logger)
	collector := NewCollector(bus)
	NewLameHeaderService(bus)
	for _, v := range validators {
		v.Attach(bus)
	}

	if err := NewCrawler(bus, logger).Crawl(ctx, name, r); err != nil {
		return nil, err
	}
	return collector.Report(), nil
}
