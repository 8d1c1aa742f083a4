package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	gochart "github.com/wcharczuk/go-chart/v2"

	"agedist/internal/demographics/models"
	"agedist/internal/demographics/tracer"
)

const (
	DefaultTitle        = "Age distribution of men in France"
	DefaultDatasetLabel = "Male age distribution in France"

	defaultWidth  = 640
	defaultHeight = 640
)

// ErrNoData is returned when every bucket is empty. A pie of zeros has no
// slices to draw.
var ErrNoData = errors.New("chart: no ages to plot")

// Chart is one rendered pie chart. Values handed out by Handle are copies
// and stay valid after the handle disposes its own.
type Chart struct {
	Title        string
	DatasetLabel string
	Labels       []string
	Counts       []int
	SVG          []byte
	Generation   int
}

// Handle owns at most one live chart. Rendering a new chart disposes the
// previous one first, so two charts never coexist on the same handle.
type Handle struct {
	mu           sync.Mutex
	current      *Chart
	generation   int
	disposals    int
	title        string
	datasetLabel string
	width        int
	height       int
	tracer       tracer.Tracer
}

type Option func(*Handle)

func WithTitle(title string) Option {
	return func(h *Handle) {
		h.title = title
	}
}

func WithDatasetLabel(label string) Option {
	return func(h *Handle) {
		h.datasetLabel = label
	}
}

// WithSize sets the canvas size in pixels. Non-positive values are ignored.
func WithSize(width, height int) Option {
	return func(h *Handle) {
		if width > 0 {
			h.width = width
		}
		if height > 0 {
			h.height = height
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(h *Handle) {
		h.tracer = t
	}
}

func NewHandle(opts ...Option) *Handle {
	h := &Handle{
		title:        DefaultTitle,
		datasetLabel: DefaultDatasetLabel,
		width:        defaultWidth,
		height:       defaultHeight,
		tracer:       tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Render disposes the chart currently held, then draws the report's buckets
// as a pie. On error the handle is left empty.
func (h *Handle) Render(ctx context.Context, report *models.Report) (c Chart, err error) {
	_, span := h.tracer.Start(ctx, tracer.SpanChartRender)
	defer func() { span.End(err) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current != nil {
		h.disposeLocked()
		span.AddEvent(tracer.EventPriorChartDisposed)
	}

	labels := report.Labels()
	counts := report.Counts()
	svg, err := RenderSVG(h.title, labels, counts, h.width, h.height)
	if err != nil {
		return Chart{}, err
	}

	h.generation++
	h.current = &Chart{
		Title:        h.title,
		DatasetLabel: h.datasetLabel,
		Labels:       labels,
		Counts:       counts,
		SVG:          svg,
		Generation:   h.generation,
	}
	return h.current.clone(), nil
}

// Current returns a copy of the live chart. ok is false when nothing has
// been rendered yet or the last chart was disposed.
func (h *Handle) Current() (c Chart, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return Chart{}, false
	}
	return h.current.clone(), true
}

// Disposals returns how many charts this handle has released.
func (h *Handle) Disposals() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disposals
}

// Dispose releases the live chart, if any.
func (h *Handle) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disposeLocked()
}

func (h *Handle) disposeLocked() {
	if h.current == nil {
		return
	}
	h.current = nil
	h.disposals++
}

func (c *Chart) clone() Chart {
	out := *c
	out.Labels = slices.Clone(c.Labels)
	out.Counts = slices.Clone(c.Counts)
	out.SVG = bytes.Clone(c.SVG)
	return out
}

// RenderSVG draws labels and counts as an SVG pie chart. Empty buckets are
// left out of the pie since go-chart cannot draw zero-width slices.
func RenderSVG(title string, labels []string, counts []int, width, height int) ([]byte, error) {
	if len(labels) != len(counts) {
		return nil, fmt.Errorf("chart: %d labels for %d counts", len(labels), len(counts))
	}

	values := make([]gochart.Value, 0, len(counts))
	for i, n := range counts {
		if n <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s (%d)", labels[i], n),
			Value: float64(n),
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := gochart.PieChart{
		Title:  title,
		Width:  width,
		Height: height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(gochart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("chart: render pie: %w", err)
	}
	return buf.Bytes(), nil
}
