package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is what report steps need from the suite's context.
type TestContext interface {
	GET(path string) error
	GetLastResponseBody() []byte
}

type reportBody struct {
	Buckets []struct {
		Label string `json:"label"`
		Count int    `json:"count"`
	} `json:"buckets"`
	Oldest []struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	} `json:"oldest"`
	Total      int `json:"total"`
	Unbucketed int `json:"unbucketed"`
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &reportSteps{tc: tc}

	ctx.Step(`^I load the page (\d+) times$`, steps.loadPageTimes)
	ctx.Step(`^at least one of those loads should be highlighted$`, steps.someHighlighted)
	ctx.Step(`^highlighted loads should be (\d+) loads apart$`, steps.highlightsApart)
	ctx.Step(`^the report should list buckets "([^"]*)"$`, steps.bucketsShouldBe)
	ctx.Step(`^the bucket counts should add up to the records aged 20 or more$`, steps.bucketSumMatches)
	ctx.Step(`^the report should list at most (\d+) oldest people in descending age$`, steps.oldestSorted)
}

type reportSteps struct {
	tc TestContext
	// highlighted holds the indexes of the highlighted loads of the last run.
	highlighted []int
}

func (s *reportSteps) decode() (*reportBody, error) {
	var r reportBody
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

func (s *reportSteps) loadPageTimes(_ context.Context, n int) error {
	s.highlighted = nil
	for i := range n {
		if err := s.tc.GET("/"); err != nil {
			return err
		}
		if strings.Contains(string(s.tc.GetLastResponseBody()), "content2 visible-background") {
			s.highlighted = append(s.highlighted, i)
		}
	}
	return nil
}

// The stored counter is somewhere in [0,5] when a run starts, so any six
// consecutive loads contain at least one highlight whatever ran before.
func (s *reportSteps) someHighlighted(context.Context) error {
	if len(s.highlighted) == 0 {
		return fmt.Errorf("no highlighted load")
	}
	return nil
}

func (s *reportSteps) highlightsApart(_ context.Context, gap int) error {
	for i := 1; i < len(s.highlighted); i++ {
		if d := s.highlighted[i] - s.highlighted[i-1]; d != gap {
			return fmt.Errorf("highlighted loads %v are %d apart, want %d", s.highlighted, d, gap)
		}
	}
	return nil
}

func (s *reportSteps) bucketsShouldBe(_ context.Context, labels string) error {
	r, err := s.decode()
	if err != nil {
		return err
	}
	want := strings.Split(labels, ",")
	if len(r.Buckets) != len(want) {
		return fmt.Errorf("expected %d buckets, got %d", len(want), len(r.Buckets))
	}
	for i, b := range r.Buckets {
		if b.Label != want[i] {
			return fmt.Errorf("bucket %d is %q, want %q", i, b.Label, want[i])
		}
	}
	return nil
}

func (s *reportSteps) bucketSumMatches(context.Context) error {
	r, err := s.decode()
	if err != nil {
		return err
	}
	sum := 0
	for _, b := range r.Buckets {
		sum += b.Count
	}
	if sum != r.Total-r.Unbucketed {
		return fmt.Errorf("bucket counts sum to %d, want %d", sum, r.Total-r.Unbucketed)
	}
	return nil
}

func (s *reportSteps) oldestSorted(_ context.Context, n int) error {
	r, err := s.decode()
	if err != nil {
		return err
	}
	if len(r.Oldest) > n {
		return fmt.Errorf("expected at most %d rows, got %d", n, len(r.Oldest))
	}
	for i := 1; i < len(r.Oldest); i++ {
		if r.Oldest[i].Age > r.Oldest[i-1].Age {
			return fmt.Errorf("row %d (age %d) is older than row %d (age %d)",
				i, r.Oldest[i].Age, i-1, r.Oldest[i-1].Age)
		}
	}
	return nil
}
