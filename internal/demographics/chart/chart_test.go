package chart

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"agedist/internal/demographics/models"
)

type HandleSuite struct {
	suite.Suite
	handle *Handle
}

func TestHandleSuite(t *testing.T) {
	suite.Run(t, new(HandleSuite))
}

func (s *HandleSuite) SetupTest() {
	s.handle = NewHandle(WithSize(320, 320))
}

func reportWith(counts ...int) *models.Report {
	labels := []string{"20-29", "30-39", "40-49", "50-59", "60-69", "70-79", ">=80"}
	r := &models.Report{}
	for i, n := range counts {
		r.Buckets = append(r.Buckets, models.AgeBucket{Label: labels[i], Count: n})
	}
	return r
}

func (s *HandleSuite) TestRender_ProducesSVG() {
	c, err := s.handle.Render(context.Background(), reportWith(120, 160, 150, 140, 130, 100, 60))
	s.Require().NoError(err)

	s.Equal(DefaultTitle, c.Title)
	s.Equal(DefaultDatasetLabel, c.DatasetLabel)
	s.Equal([]int{120, 160, 150, 140, 130, 100, 60}, c.Counts)
	s.True(strings.HasPrefix(strings.TrimSpace(string(c.SVG)), "<svg"), "output should be an svg document")
	s.Contains(string(c.SVG), "</svg>")
}

func (s *HandleSuite) TestRender_DisposesPriorChart() {
	first, err := s.handle.Render(context.Background(), reportWith(1, 2, 3, 4, 5, 6, 7))
	s.Require().NoError(err)
	s.Zero(s.handle.Disposals())

	second, err := s.handle.Render(context.Background(), reportWith(7, 6, 5, 4, 3, 2, 1))
	s.Require().NoError(err)

	s.Equal(1, s.handle.Disposals())
	s.Greater(second.Generation, first.Generation)

	current, ok := s.handle.Current()
	s.Require().True(ok)
	s.Equal(second.Generation, current.Generation)
	s.NotEmpty(first.SVG, "copies handed out earlier stay readable")
}

func (s *HandleSuite) TestRender_FailureLeavesHandleEmpty() {
	_, err := s.handle.Render(context.Background(), reportWith(3, 0, 0, 0, 0, 0, 0))
	s.Require().NoError(err)

	_, err = s.handle.Render(context.Background(), reportWith(0, 0, 0, 0, 0, 0, 0))
	s.ErrorIs(err, ErrNoData)

	_, ok := s.handle.Current()
	s.False(ok)
	s.Equal(1, s.handle.Disposals())
}

func (s *HandleSuite) TestDispose() {
	s.handle.Dispose()
	s.Zero(s.handle.Disposals(), "disposing an empty handle is a no-op")

	_, err := s.handle.Render(context.Background(), reportWith(1))
	s.Require().NoError(err)
	s.handle.Dispose()

	_, ok := s.handle.Current()
	s.False(ok)
	s.Equal(1, s.handle.Disposals())
}

func (s *HandleSuite) TestCurrent_ReturnsCopy() {
	_, err := s.handle.Render(context.Background(), reportWith(4, 4))
	s.Require().NoError(err)

	c, _ := s.handle.Current()
	c.Counts[0] = 99
	again, _ := s.handle.Current()
	s.Equal(4, again.Counts[0])
}

func (s *HandleSuite) TestRender_ConcurrentCallersKeepOneChart() {
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.handle.Render(context.Background(), reportWith(i+1, 2, 3))
		}()
	}
	wg.Wait()

	_, ok := s.handle.Current()
	s.True(ok)
	s.Equal(7, s.handle.Disposals())
}

func TestRenderSVG_Validation(t *testing.T) {
	_, err := RenderSVG("t", []string{"a"}, []int{1, 2}, 100, 100)
	assert.Error(t, err)

	_, err = RenderSVG("t", nil, nil, 100, 100)
	assert.ErrorIs(t, err, ErrNoData)

	svg, err := RenderSVG("t", []string{"a"}, []int{5}, 100, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, svg)
}
