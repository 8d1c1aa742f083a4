package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"agedist/internal/demographics/models"
	"agedist/internal/demographics/shaper"
)

const barWidth = 40

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Width(7).Align(lipgloss.Right)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	countStyle  = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderReport lays out the histogram above the oldest-people table.
func renderReport(report *models.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Age distribution"))
	b.WriteString("\n")
	b.WriteString(renderHistogram(report.Buckets))
	b.WriteString("\n")
	if t := renderOldest(report.Oldest); t != "" {
		b.WriteString(t)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d records, %d under 20\n", report.Total, report.Unbucketed)
	return b.String()
}

func renderHistogram(buckets []models.AgeBucket) string {
	peak := 0
	total := 0
	for _, bk := range buckets {
		peak = max(peak, bk.Count)
		total += bk.Count
	}

	lines := make([]string, 0, len(buckets))
	for _, bk := range buckets {
		width := 0
		if peak > 0 {
			width = bk.Count * barWidth / peak
		}
		share := 0.0
		if total > 0 {
			share = float64(bk.Count) * 100 / float64(total)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(bk.Label),
			" ",
			barStyle.Render(strings.Repeat("█", width)),
			" ",
			countStyle.Render(fmt.Sprintf("%d (%.1f%%)", bk.Count, share)),
		))
	}
	return strings.Join(lines, "\n") + "\n"
}

// renderOldest returns "" when there are no rows, mirroring the page which
// draws no header row for an empty table.
func renderOldest(rows []models.TableRow) string {
	headers := shaper.Headers(rows)
	if headers == nil {
		return ""
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(shaper.Cells(r)...)
	}
	return t.String()
}
