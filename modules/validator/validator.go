package validator

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/grafana/dskit/modules"
	"github.com/grafana/dskit/services"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/zachfi/zkit/pkg/tracing"

	"github.com/zachfi/mpegscan/pkg/validate"
)

const module = "validator"

var tracer = otel.Tracer("github.com/zachfi/mpegscan/modules/validator")

// Result is the outcome of validating one file. Err is set when the file
// could not be read to the end; defects in its content are Report failures.
type Result struct {
	Path   string
	Report *validate.Report
	Err    error
}

// Validator validates MPEG audio files named in its config on start and
// streams posted to its HTTP handler.
type Validator struct {
	services.Service
	cfg    *Config
	logger *slog.Logger
}

// New creates and returns a new Validator.
func New(cfg Config, logger *slog.Logger) (*Validator, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = defaultMaxUploadSize
	}

	v := &Validator{
		cfg:    &cfg,
		logger: logger.With("module", module),
	}

	v.Service = services.NewBasicService(nil, v.running, nil)

	return v, nil
}

func (v *Validator) running(ctx context.Context) error {
	if len(v.cfg.Paths) > 0 {
		invalid := 0
		for _, res := range v.ValidateFiles(ctx, v.cfg.Paths) {
			if res.Err != nil || !res.Report.Valid() {
				invalid++
			}
		}
		v.logger.Info("validated paths", "files", len(v.cfg.Paths), "invalid", invalid)

		if v.cfg.Oneshot && ctx.Err() == nil {
			return modules.ErrStopProcess
		}
	}

	<-ctx.Done()
	return nil
}

// ValidateFiles validates paths with at most Concurrency files open at
// once. Results are in the order of paths.
func (v *Validator) ValidateFiles(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.Concurrency)

	for i, path := range paths {
		g.Go(func() error {
			report, err := v.validateFile(ctx, path)
			results[i] = Result{Path: path, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (v *Validator) validateFile(ctx context.Context, path string) (*validate.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		metricStreams.WithLabelValues(resultError).Inc()
		v.logger.Error("failed to open file", "path", path, "err", err)
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer f.Close()

	return v.Validate(ctx, path, f)
}

// Validate validates one stream, logs its failures and records metrics.
func (v *Validator) Validate(ctx context.Context, name string, r io.Reader) (*validate.Report, error) {
	ctx, span := tracer.Start(ctx, "Validate")
	span.SetAttributes(attribute.String("name", name))

	logger := v.logger.With("name", name)

	report, err := validate.Validate(ctx, name, r, logger)
	if err != nil {
		metricStreams.WithLabelValues(resultError).Inc()
		return nil, tracing.ErrHandler(span, err, "validation failed", logger)
	}

	span.SetAttributes(
		attribute.Int("frames", report.Frames),
		attribute.Int("junk_regions", report.JunkRegions),
		attribute.Int("failures", len(report.Failures)),
	)

	metricRegions.WithLabelValues("frame").Add(float64(report.Frames))
	metricRegions.WithLabelValues("junk").Add(float64(report.JunkRegions))
	metricJunkBytes.Add(float64(report.JunkBytes))
	for _, failure := range report.Failures {
		metricFailures.WithLabelValues(string(failure.Type)).Inc()
		logger.Warn("validation failure", "type", failure.Type, "offset", failure.Offset, "details", failure.Details)
	}

	if report.Valid() {
		metricStreams.WithLabelValues(resultValid).Inc()
		logger.Info("stream is valid", "frames", report.Frames, "bytes", report.Bytes)
	} else {
		metricStreams.WithLabelValues(resultInvalid).Inc()
		logger.Info("stream is invalid", "frames", report.Frames, "bytes", report.Bytes, "failures", len(report.Failures))
	}

	return report, tracing.ErrHandler(span, nil, "", logger)
}
