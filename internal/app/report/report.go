// Package report renders the human-readable power measurement report: one
// column per captured rail, rows for slot, shunt, status, and the
// min/max/avg statistics of voltage, current, and power.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/touilkhouloud/acme-utils/internal/domain"
)

const (
	firstColWidth = 13
	colWidthMin   = 7
	colPad        = 2

	title = " Power Measurement Report "
)

// Meta carries the run settings echoed in the report header.
type Meta struct {
	Date              time.Time
	Channels          []domain.Channel
	OversamplingRatio int
	AsyncReads        bool
	Duration          time.Duration
}

// Render builds the full report text from the aggregated rows.
func Render(meta Meta, rows []domain.ReportRow) string {
	lines := headerLines(meta, len(rows))
	lines = append(lines, tableLines(rows)...)

	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	dashes := maxLen - len(title)
	if dashes < 2 {
		dashes = 2
	}
	left := dashes / 2
	right := dashes - left

	out := make([]string, 0, len(lines)+2)
	out = append(out, strings.Repeat("-", left)+title+strings.Repeat("-", right))
	out = append(out, lines...)
	out = append(out, strings.Repeat("-", maxLen))
	return strings.Join(out, "\n") + "\n"
}

func headerLines(meta Meta, railCount int) []string {
	names := make([]string, len(meta.Channels))
	for i, ch := range meta.Channels {
		names[i] = ch.String()
	}
	return []string{
		fmt.Sprintf("Date: %s", meta.Date.Format("20060102-150405")),
		fmt.Sprintf("Captured Channels: %s", strings.Join(names, ", ")),
		fmt.Sprintf("Oversampling ratio: %d", meta.OversamplingRatio),
		fmt.Sprintf("Asynchronous reads: %t", meta.AsyncReads),
		fmt.Sprintf("Power Rails: %d", railCount),
		fmt.Sprintf("Duration: %s", meta.Duration),
		"",
	}
}

func tableLines(rows []domain.ReportRow) []string {
	widths := make([]int, len(rows))
	for i, row := range rows {
		w := colWidthMin
		if l := len(row.Probe.Label()); l > w {
			w = l
		}
		widths[i] = w + colPad
	}

	cell := func(i int, s string) string {
		return fmt.Sprintf("%*s", widths[i], s)
	}
	value := func(i int, v float64) string {
		return cell(i, fmt.Sprintf("%.1f", v))
	}

	type statRow struct {
		label string
		pick  func(domain.ReportRow) float64
	}
	sections := []struct {
		header string
		stats  []statRow
	}{
		{"Voltage", []statRow{
			{" Min (mV)", func(r domain.ReportRow) float64 { return r.VoltageStats.Min }},
			{" Max (mV)", func(r domain.ReportRow) float64 { return r.VoltageStats.Max }},
			{" Avg (mV)", func(r domain.ReportRow) float64 { return r.VoltageStats.Avg }},
		}},
		{"Current", []statRow{
			{" Min (mA)", func(r domain.ReportRow) float64 { return r.CurrentStats.Min }},
			{" Max (mA)", func(r domain.ReportRow) float64 { return r.CurrentStats.Max }},
			{" Avg (mA)", func(r domain.ReportRow) float64 { return r.CurrentStats.Avg }},
		}},
		{"Power", []statRow{
			{" Min (mW)", func(r domain.ReportRow) float64 { return r.PowerStats.Min }},
			{" Max (mW)", func(r domain.ReportRow) float64 { return r.PowerStats.Max }},
			{" Avg (mW)", func(r domain.ReportRow) float64 { return r.PowerStats.Avg }},
		}},
	}

	pad := func(label string) string {
		if len(label) >= firstColWidth {
			return label
		}
		return label + strings.Repeat(" ", firstColWidth-len(label))
	}

	var lines []string

	line := pad("Slot")
	for i, row := range rows {
		line += cell(i, row.Probe.Label())
	}
	lines = append(lines, line)

	line = pad("Shunt (mohm)")
	for i, row := range rows {
		line += value(i, row.Probe.ShuntMilliOhm())
	}
	lines = append(lines, line)

	line = pad("Status")
	for i, row := range rows {
		status := "OK"
		if row.Failed {
			status = "FAILED"
		}
		line += cell(i, status)
	}
	lines = append(lines, line)

	for _, section := range sections {
		lines = append(lines, pad(section.header))
		for _, stat := range section.stats {
			line = pad(stat.label)
			for i, row := range rows {
				line += value(i, stat.pick(row))
			}
			lines = append(lines, line)
		}
	}
	return lines
}
