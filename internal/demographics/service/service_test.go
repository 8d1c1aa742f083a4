package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Fetcher

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"agedist/internal/demographics/models"
	"agedist/internal/demographics/service/mocks"
	"agedist/internal/platform/metrics"
	dErrors "agedist/pkg/domain-errors"
	fixtures "agedist/pkg/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	fetcher *mocks.MockFetcher
	metrics *metrics.Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.fetcher = mocks.NewMockFetcher(s.ctrl)
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.service = New(s.fetcher,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func batchOf(ages ...int) *models.Batch {
	return fixtures.BatchOf(fixtures.PeopleAged(ages...)...)
}

func (s *ServiceSuite) TestReport_ShapesFetchedBatch() {
	s.fetcher.EXPECT().Fetch(gomock.Any()).Return(batchOf(15, 25, 25, 47, 83, 91), nil)

	report, err := s.service.Report(context.Background())
	s.Require().NoError(err)

	counts := report.Counts()
	if diff := cmp.Diff([]int{2, 0, 1, 0, 0, 0, 2}, counts); diff != "" {
		s.Failf("unexpected counts", "(-want +got):\n%s", diff)
	}
	s.Equal(6, report.Total)
	s.Equal(1, report.Unbucketed)
	s.Equal("testseed", report.Seed)
	s.Equal(fixedNow, report.FetchedAt)

	s.Require().Len(report.Oldest, 6)
	s.Equal(91, report.Oldest[0].Age)
	s.Equal(83, report.Oldest[1].Age)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.UpstreamFetches.WithLabelValues(metrics.OutcomeSuccess)))
	s.Equal(6.0, testutil.ToFloat64(s.metrics.RecordsFetched))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RecordsUnbucketed))
}

func (s *ServiceSuite) TestReport_TopNCapsOldest() {
	svc := New(s.fetcher, WithTopN(2), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.fetcher.EXPECT().Fetch(gomock.Any()).Return(batchOf(30, 80, 50), nil)

	report, err := svc.Report(context.Background())
	s.Require().NoError(err)
	s.Require().Len(report.Oldest, 2)
	s.Equal(80, report.Oldest[0].Age)
	s.Equal(50, report.Oldest[1].Age)
}

func (s *ServiceSuite) TestReport_EmptyBatch() {
	s.fetcher.EXPECT().Fetch(gomock.Any()).Return(&models.Batch{Results: []models.PersonRecord{}}, nil)

	report, err := s.service.Report(context.Background())
	s.Require().NoError(err)
	s.Len(report.Buckets, 7)
	s.Empty(report.Oldest)
	s.Zero(report.Total)
}

func (s *ServiceSuite) TestReport_PropagatesFetchError() {
	upstream := dErrors.New(dErrors.CodeBadGateway, "randomuser: unexpected status 503")
	s.fetcher.EXPECT().Fetch(gomock.Any()).Return(nil, upstream)

	report, err := s.service.Report(context.Background())
	s.Nil(report)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadGateway))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.UpstreamFetches.WithLabelValues(metrics.OutcomeFailure)))
}

func (s *ServiceSuite) TestReport_NilBatchIsInternal() {
	s.fetcher.EXPECT().Fetch(gomock.Any()).Return(nil, nil)

	_, err := s.service.Report(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestReport_ConcurrentCallsShareOneFetch() {
	entered := make(chan struct{})
	release := make(chan struct{})
	s.fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(context.Context) (*models.Batch, error) {
		close(entered)
		<-release
		return batchOf(40, 60), nil
	}).Times(1)

	const callers = 5
	var wg sync.WaitGroup
	reports := make([]*models.Report, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		reports[0], errs[0] = s.service.Report(context.Background())
	}()
	<-entered

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], errs[i] = s.service.Report(context.Background())
		}(i)
	}
	// Give the followers time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range callers {
		s.Require().NoError(errs[i])
		s.Equal(2, reports[i].Total)
	}
	s.Equal(1.0, testutil.ToFloat64(s.metrics.UpstreamFetches.WithLabelValues(metrics.OutcomeSuccess)))
	s.Equal(float64(callers-1), testutil.ToFloat64(s.metrics.UpstreamFetches.WithLabelValues(metrics.OutcomeShared)))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.RecordsFetched), "shared results are not double counted")
}

func (s *ServiceSuite) TestReport_FirstCallerCancelDoesNotFailOthers() {
	entered := make(chan struct{})
	release := make(chan struct{})
	s.fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(ctx context.Context) (*models.Batch, error) {
		close(entered)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-release:
			return batchOf(40, 60), nil
		}
	}).Times(1)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	var wg sync.WaitGroup
	var firstErr, otherErr error
	var other *models.Report

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = s.service.Report(firstCtx)
	}()
	<-entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		other, otherErr = s.service.Report(context.Background())
	}()
	// Let the second caller join the in-flight fetch before cancelling.
	time.Sleep(50 * time.Millisecond)
	cancelFirst()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	s.Require().Error(firstErr)
	s.ErrorIs(firstErr, context.Canceled)
	s.Require().NoError(otherErr)
	s.Equal(2, other.Total)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.UpstreamFetches.WithLabelValues(metrics.OutcomeSuccess)))
}

func (s *ServiceSuite) TestReport_CallerDeadlineIsTimeout() {
	release := make(chan struct{})
	done := make(chan struct{})
	s.fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(context.Context) (*models.Batch, error) {
		defer close(done)
		<-release
		return batchOf(30), nil
	}).Times(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.service.Report(ctx)
	close(release)
	<-done

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *ServiceSuite) TestReport_ConcurrentFailuresKeepUpstreamCode() {
	s.fetcher.EXPECT().Fetch(gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeBadGateway, "randomuser: unexpected status 502")).
		AnyTimes()

	result := fixtures.RunConcurrent(20, func(int) error {
		_, err := s.service.Report(context.Background())
		return err
	})

	s.Equal(int32(20), result.Total())
	s.Equal(int32(20), result.Upstream)
	s.Zero(result.Successes)
}

func (s *ServiceSuite) TestReport_SequentialCallsFetchAgain() {
	s.fetcher.EXPECT().Fetch(gomock.Any()).Return(batchOf(22), nil).Times(2)

	_, err := s.service.Report(context.Background())
	s.Require().NoError(err)
	_, err = s.service.Report(context.Background())
	s.Require().NoError(err)
}
