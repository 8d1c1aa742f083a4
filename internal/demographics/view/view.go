// Package view renders the age distribution page.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"agedist/internal/demographics/chart"
	"agedist/internal/demographics/models"
	"agedist/internal/demographics/shaper"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// State selects which region of the page is shown.
type State string

const (
	StateIdle   State = "idle"
	StateReport State = "report"
	StateError  State = "error"
)

const errorPrefix = "Something went wrong: "

// Page is the data behind one render. Only the regions that belong to State
// are drawn; the others are emitted hidden and empty.
type Page struct {
	State       State
	Highlighted bool
	Heading     string
	TableLabel  string
	Chart       template.HTML
	ChartLabel  string
	Headers     []string
	Rows        [][]string
	Error       string
	Total       int
	FetchedAt   time.Time
}

// Idle is the page before anything has been fetched.
func Idle(highlighted bool) Page {
	return Page{State: StateIdle, Highlighted: highlighted}
}

// ForReport fills the chart and table regions. The chart SVG is inlined as is
// and must come from the chart renderer; a zero Chart leaves the region empty.
func ForReport(report *models.Report, rendered chart.Chart) Page {
	rows := make([][]string, len(report.Oldest))
	for i, r := range report.Oldest {
		rows[i] = shaper.Cells(r)
	}
	return Page{
		State:      StateReport,
		TableLabel: fmt.Sprintf("The %d oldest", len(report.Oldest)),
		Chart:      template.HTML(rendered.SVG),
		ChartLabel: rendered.DatasetLabel,
		Headers:    shaper.Headers(report.Oldest),
		Rows:       rows,
		Total:      report.Total,
		FetchedAt:  report.FetchedAt,
	}
}

// ForError fills the placeholder with the failure text.
func ForError(err error) Page {
	return Page{State: StateError, Error: ErrorText(err)}
}

// ErrorText is the message shown to the user for a failed fetch.
func ErrorText(err error) string {
	return errorPrefix + err.Error()
}

// Renderer executes the embedded page template.
type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("page.html.tmpl").ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render writes the page to w. The template is executed into a buffer first
// so a failure never leaves a half-written page.
func (r *Renderer) Render(w io.Writer, p Page) error {
	if p.Heading == "" {
		p.Heading = "Age distribution"
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, p); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
