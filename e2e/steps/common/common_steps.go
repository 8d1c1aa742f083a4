package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is what common steps need from the suite's context.
type TestContext interface {
	GET(path string) error
	POST(path string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader(key string) string
}

// RegisterSteps registers step definitions shared by every feature.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the agedist server is running$`, steps.serverIsRunning)

	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^I POST to "([^"]*)"$`, steps.post)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
	ctx.Step(`^the response should not contain "([^"]*)"$`, steps.responseShouldNotContain)
	ctx.Step(`^the response header "([^"]*)" should contain "([^"]*)"$`, steps.headerShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serverIsRunning(context.Context) error {
	if err := s.tc.GET("/health/live"); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 200 {
		return fmt.Errorf("server not live: status %d", s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *commonSteps) get(_ context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) post(_ context.Context, path string) error {
	return s.tc.POST(path)
}

func (s *commonSteps) responseStatusShouldBe(_ context.Context, expected int) error {
	if actual := s.tc.GetLastResponseStatus(); actual != expected {
		return fmt.Errorf("expected status %d but got %d", expected, actual)
	}
	return nil
}

func (s *commonSteps) responseShouldContain(_ context.Context, text string) error {
	if !strings.Contains(string(s.tc.GetLastResponseBody()), text) {
		return fmt.Errorf("response does not contain %q", text)
	}
	return nil
}

func (s *commonSteps) responseShouldNotContain(_ context.Context, text string) error {
	if strings.Contains(string(s.tc.GetLastResponseBody()), text) {
		return fmt.Errorf("response unexpectedly contains %q", text)
	}
	return nil
}

func (s *commonSteps) headerShouldContain(_ context.Context, key, want string) error {
	if got := s.tc.GetLastResponseHeader(key); !strings.Contains(got, want) {
		return fmt.Errorf("header %s is %q, want it to contain %q", key, got, want)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(_ context.Context, field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %s to be %q but got %q", field, expected, got)
	}
	return nil
}
