package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agedist/internal/demographics/chart"
	"agedist/internal/demographics/models"
	"agedist/internal/demographics/view"
	"agedist/internal/platform/metrics"
	"agedist/internal/platform/middleware"
	"agedist/internal/visits"
	dErrors "agedist/pkg/domain-errors"
	"agedist/pkg/platform/httputil"
)

// ReportService builds a fresh report per call.
type ReportService interface {
	Report(ctx context.Context) (*models.Report, error)
}

// VisitCounter counts page loads.
type VisitCounter interface {
	Tick(ctx context.Context) (visits.Visit, error)
}

// Handler serves the age distribution page, its chart and the JSON report.
type Handler struct {
	service ReportService
	counter VisitCounter
	charts  *chart.Handle
	view    *view.Renderer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithChartHandle shares a chart handle with the handler. By default the
// handler owns a private one.
func WithChartHandle(c *chart.Handle) Option {
	return func(h *Handler) {
		h.charts = c
	}
}

func WithRenderer(r *view.Renderer) Option {
	return func(h *Handler) {
		h.view = r
	}
}

// New creates the page handler. counter may be nil, in which case page loads
// are never highlighted.
func New(service ReportService, counter VisitCounter, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		counter: counter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.charts == nil {
		h.charts = chart.NewHandle()
	}
	if h.view == nil {
		h.view = view.MustNew()
	}
	return h
}

// Register mounts the handler routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandlePage)
	r.Post("/fetch", h.HandleFetch)
	r.Get("/chart.svg", h.HandleChart)
	r.Get("/api/v1/report", h.HandleReport)
}

// HandlePage handles GET / requests. Each load is counted; nothing is fetched.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	highlighted := false
	if h.counter != nil {
		v, err := h.counter.Tick(ctx)
		if err != nil {
			// The background is cosmetic; the page still renders.
			h.logger.WarnContext(ctx, "failed to count visit",
				"error", err,
				"request_id", middleware.GetRequestID(ctx),
			)
		} else {
			highlighted = v.Highlighted
		}
		h.observeLoad(err == nil, highlighted)
	}

	h.renderPage(w, r, http.StatusOK, view.Idle(highlighted))
}

// HandleFetch handles POST /fetch requests: clear the previous views, fetch,
// then show either the chart and table or the error placeholder.
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	h.charts.Dispose()

	report, err := h.service.Report(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch failed",
			"error", err,
			"request_id", requestID,
		)
		h.renderPage(w, r, httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)), view.ForError(err))
		return
	}

	rendered, err := h.charts.Render(ctx, report)
	switch {
	case err == nil:
	case errors.Is(err, chart.ErrNoData):
		rendered = chart.Chart{}
		h.logger.InfoContext(ctx, "no bucketed ages to chart",
			"records", report.Total,
			"request_id", requestID,
		)
	default:
		h.logger.ErrorContext(ctx, "chart render failed",
			"error", err,
			"request_id", requestID,
		)
		h.renderPage(w, r, http.StatusInternalServerError, view.ForError(err))
		return
	}

	h.renderPage(w, r, http.StatusOK, view.ForReport(report, rendered))
}

// HandleChart handles GET /chart.svg requests with the chart currently held.
func (h *Handler) HandleChart(w http.ResponseWriter, _ *http.Request) {
	c, ok := h.charts.Current()
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no chart has been rendered"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.SVG)
}

// HandleReport handles GET /api/v1/report requests.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.service.Report(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "report failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, page view.Page) {
	if h.metrics != nil {
		h.metrics.IncrementPageRenders(string(page.State))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.view.Render(w, page); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page",
			"error", err,
			"state", page.State,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}
}

func (h *Handler) observeLoad(counted, highlighted bool) {
	if h.metrics == nil || !counted {
		return
	}
	h.metrics.IncrementPageLoads(highlighted)
}
