package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nick-merrill/life-expectancy/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

// histogramLines renders the distribution as horizontal bars, at most maxRows
// of them. Adjacent ages are grouped so a full-length table still fits on
// screen; a group that reaches the open-ended terminal bucket is labeled "N+".
// The bin holding markAge is flagged as the median.
func histogramLines(d domain.ConditionalDistribution, maxRows, barWidth int, th Theme, markAge int) []string {
	n := len(d.Buckets)
	if n == 0 || maxRows <= 0 {
		return nil
	}
	if barWidth < 1 {
		barWidth = 1
	}

	span := (n + maxRows - 1) / maxRows

	type bin struct {
		from, to int
		prob     float64
	}
	var bins []bin
	for i := 0; i < n; i += span {
		j := i + span
		if j > n {
			j = n
		}
		b := bin{from: d.Buckets[i].Age, to: d.Buckets[j-1].Age}
		for _, bk := range d.Buckets[i:j] {
			b.prob += bk.Prob
		}
		bins = append(bins, b)
	}

	maxProb := 0.0
	for _, b := range bins {
		if b.prob > maxProb {
			maxProb = b.prob
		}
	}
	if maxProb <= 0 {
		return nil
	}

	terminalAge := d.Buckets[n-1].Age

	lines := make([]string, 0, len(bins))
	for _, b := range bins {
		label := fmt.Sprintf("%d", b.from)
		switch {
		case b.to == terminalAge:
			label = fmt.Sprintf("%d+", b.from)
		case b.to != b.from:
			label = fmt.Sprintf("%d-%d", b.from, b.to)
		}

		w := int(b.prob / maxProb * float64(barWidth))
		if w == 0 && b.prob > 0 {
			w = 1
		}

		line := fmt.Sprintf("%8s %s %.1f%%", label, th.Bar.Render(strings.Repeat("█", w)), b.prob*100)
		if markAge >= b.from && markAge <= b.to {
			line += th.Marker.Render(" ◂ median")
		}
		lines = append(lines, line)
	}
	return lines
}

func renderSummary(s domain.Summary) string {
	var b strings.Builder

	for _, p := range s.Percentiles {
		fmt.Fprintf(&b, "%d%% chance of dying before %.1f  (%.0f weeks after age %d)\n",
			p.P, p.Age, s.WeeksUntil(p), s.MinAge)
	}

	fmt.Fprintf(&b, "\nMean age of death: %.1f  (σ %.1f)\n", s.MeanAge, s.StdDev)
	fmt.Fprintf(&b, "Expected years left: %.1f\n", s.YearsLeft)
	return b.String()
}
