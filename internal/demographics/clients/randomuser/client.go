package randomuser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agedist/internal/demographics/models"
	"agedist/internal/demographics/tracer"
	"agedist/internal/platform/config"
	dErrors "agedist/pkg/domain-errors"
)

const apiPath = "/api/"

// maxBodyBytes caps the decoded response. A thousand records is roughly 1.2MB.
const maxBodyBytes = 16 << 20

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Query selects which batch to fetch.
type Query struct {
	Results     int
	Gender      string
	Nationality string
}

// Values encodes q the way the upstream API expects it. Empty fields are omitted.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Results > 0 {
		v.Set("results", strconv.Itoa(q.Results))
	}
	if q.Gender != "" {
		v.Set("gender", q.Gender)
	}
	if q.Nationality != "" {
		v.Set("nat", q.Nationality)
	}
	return v
}

// Client fetches person batches from a randomuser-compatible API.
type Client struct {
	baseURL string
	query   Query
	timeout time.Duration
	http    HTTPDoer
	tracer  tracer.Tracer
}

type Option func(*Client)

func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.http = doer
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// New builds a client from the randomuser configuration block. A zero
// timeout leaves the fetch bound only by the caller's context.
func New(cfg config.RandomUser, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		query: Query{
			Results:     cfg.Results,
			Gender:      cfg.Gender,
			Nationality: cfg.Nationality,
		},
		timeout: cfg.Timeout,
		http:    http.DefaultClient,
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the request URL for the configured query.
func (c *Client) URL() string {
	u := c.baseURL + apiPath
	if enc := c.query.Values().Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// Fetch performs one GET against the API and decodes the batch.
//
// Failures are classified into domain errors:
//   - CodeTimeout when the deadline expires before a response is read
//   - CodeBadGateway for transport failures and non-2xx statuses
//   - CodeBadData when the body is not a valid batch
func (c *Client) Fetch(ctx context.Context) (batch *models.Batch, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanUpstreamFetch,
		tracer.Int(tracer.AttrResults, c.query.Results),
		tracer.String(tracer.AttrGender, c.query.Gender),
		tracer.String(tracer.AttrNationality, c.query.Nationality),
	)
	defer func() { span.End(err) }()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "randomuser: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(tracer.Int(tracer.AttrStatusCode, resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, dErrors.New(dErrors.CodeBadGateway,
			fmt.Sprintf("randomuser: unexpected status %d", resp.StatusCode))
	}

	var out models.Batch
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, classifyTransport(ctx, err)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadData, "randomuser: decode response: "+err.Error())
	}
	if out.Results == nil {
		return nil, dErrors.New(dErrors.CodeBadData, "randomuser: response has no results")
	}

	span.SetAttributes(tracer.Int(tracer.AttrRecords, len(out.Results)))
	return &out, nil
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "randomuser: request timed out")
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeBadGateway, "randomuser: request canceled")
	}
	return dErrors.Wrap(err, dErrors.CodeBadGateway, "randomuser: "+err.Error())
}
