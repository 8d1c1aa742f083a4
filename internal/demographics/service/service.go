package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"agedist/internal/demographics/models"
	"agedist/internal/demographics/shaper"
	"agedist/internal/demographics/tracer"
	"agedist/internal/platform/metrics"
	dErrors "agedist/pkg/domain-errors"
)

const flightKey = "report"

// Fetcher retrieves one batch of person records.
type Fetcher interface {
	Fetch(ctx context.Context) (*models.Batch, error)
}

// Service turns upstream batches into reports. Concurrent calls to Report
// share a single upstream fetch.
type Service struct {
	fetcher Fetcher
	shaper  *shaper.Shaper
	topN    int
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	now     func() time.Time
	group   singleflight.Group
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithTopN sets how many of the oldest records the report carries.
// Values below 1 are ignored.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithShaper replaces the default seven-bucket shaper.
func WithShaper(sh *shaper.Shaper) Option {
	return func(s *Service) {
		if sh != nil {
			s.shaper = sh
		}
	}
}

// WithClock overrides the time source stamped on reports.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher: fetcher,
		shaper:  shaper.Default(),
		topN:    shaper.DefaultTopN,
		logger:  slog.Default(),
		tracer:  tracer.NewNoop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report fetches a fresh batch and shapes it. Callers that arrive while a
// fetch is in flight receive that fetch's result. The shared fetch is detached
// from any single caller's cancellation; each caller stops waiting when its
// own ctx is done.
func (s *Service) Report(ctx context.Context) (report *models.Report, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanReport, tracer.Int(tracer.AttrTopN, s.topN))
	defer func() { span.End(err) }()

	fetchCtx := context.WithoutCancel(ctx)
	leader := false
	ch := s.group.DoChan(flightKey, func() (any, error) {
		leader = true
		start := time.Now()
		batch, err := s.fetcher.Fetch(fetchCtx)
		elapsed := time.Since(start)
		if err != nil {
			s.observeFetch(metrics.OutcomeFailure, elapsed, 0)
			return nil, err
		}
		records := 0
		if batch != nil {
			records = len(batch.Results)
		}
		s.observeFetch(metrics.OutcomeSuccess, elapsed, records)
		s.logger.DebugContext(fetchCtx, "person batch fetched",
			"records", records,
			"duration_ms", elapsed.Milliseconds(),
		)
		return batch, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "report abandoned by caller", "error", ctx.Err())
		return nil, callerGone(ctx.Err())
	case res = <-ch:
	}

	v, err, shared := res.Val, res.Err, res.Shared
	span.SetAttributes(tracer.Bool(tracer.AttrShared, shared))
	if !leader {
		s.observeFetch(metrics.OutcomeShared, 0, 0)
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "person batch fetch failed",
			"error", err,
			"code", dErrors.CodeOf(err),
			"shared", shared,
		)
		return nil, err
	}

	batch, ok := v.(*models.Batch)
	if !ok || batch == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "fetcher returned no batch")
	}

	report = s.Shape(ctx, batch)
	s.logger.InfoContext(ctx, "report built",
		"records", report.Total,
		"unbucketed", report.Unbucketed,
		"shared", shared,
	)
	return report, nil
}

// Shape builds a report from an already fetched batch.
func (s *Service) Shape(ctx context.Context, batch *models.Batch) *models.Report {
	_, span := s.tracer.Start(ctx, tracer.SpanShape, tracer.Int(tracer.AttrRecords, len(batch.Results)))
	defer span.End(nil)

	buckets, dropped := s.shaper.Histogram(shaper.Ages(batch.Results))
	span.SetAttributes(tracer.Int(tracer.AttrUnbucketed, dropped))
	if s.metrics != nil {
		s.metrics.AddUnbucketed(dropped)
	}

	return &models.Report{
		Buckets:    buckets,
		Oldest:     shaper.TopOldest(batch.Results, s.topN),
		Total:      len(batch.Results),
		Unbucketed: dropped,
		Seed:       batch.Info.Seed,
		FetchedAt:  s.now().UTC(),
	}
}

func callerGone(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "report: deadline exceeded while waiting for upstream")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "report: request canceled")
}

func (s *Service) observeFetch(outcome string, elapsed time.Duration, records int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveFetch(outcome, elapsed.Seconds(), records)
}
