package chartpng

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/nick-merrill/life-expectancy/internal/app/template"
	"github.com/nick-merrill/life-expectancy/internal/domain"
	"github.com/nick-merrill/life-expectancy/internal/ports"
)

// barColor approximates matplotlib's "lightblue".
var barColor = drawing.Color{R: 173, G: 216, B: 230, A: 255}

// Percentile markers cycle through red, black and green in percentile order.
var markerColors = []drawing.Color{
	chart.ColorRed,
	chart.ColorBlack,
	chart.ColorGreen,
}

type Renderer struct {
	width         int
	height        int
	titleTemplate string
}

type Option func(*Renderer)

func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// WithTitleTemplate overrides the chart title. The template may reference
// {{table}} and {{min_age}}.
func WithTitleTemplate(tpl string) Option {
	return func(r *Renderer) {
		if strings.TrimSpace(tpl) != "" {
			r.titleTemplate = tpl
		}
	}
}

func NewRenderer(opts ...Option) *Renderer {
	cfg := domain.DefaultConfig()
	r := &Renderer{
		width:         cfg.Chart.Width,
		height:        cfg.Chart.Height,
		titleTemplate: cfg.Chart.Title,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.ChartRenderer = (*Renderer)(nil)

// Render draws the death-age distribution as a PNG histogram with one marker
// bar per percentile and a mean/stddev/cohort annotation block.
func (r *Renderer) Render(w io.Writer, a domain.Analysis) error {
	d := a.Distribution
	if len(d.Buckets) == 0 {
		return &domain.OpError{
			Op:   "chartpng.render",
			Kind: domain.KindInvalidInput,
			Path: a.ChartPath,
			Err:  fmt.Errorf("distribution has no buckets: %w", domain.ErrInvalidInput),
		}
	}

	title, err := template.RenderString(r.titleTemplate, map[string]string{
		"table":   a.Table,
		"min_age": strconv.Itoa(d.MinAge),
	})
	if err != nil {
		return err
	}

	ages := make([]float64, len(d.Buckets))
	probs := make([]float64, len(d.Buckets))
	var maxProb float64
	for i, b := range d.Buckets {
		ages[i] = float64(b.Age)
		probs[i] = b.Prob
		if b.Prob > maxProb {
			maxProb = b.Prob
		}
	}

	series := []chart.Series{
		chart.HistogramSeries{
			Name: "Actual deaths per age",
			Style: chart.Style{
				FillColor:   barColor,
				StrokeColor: barColor,
			},
			InnerSeries: chart.ContinuousSeries{XValues: ages, YValues: probs},
		},
	}

	for i, p := range a.Summary.Percentiles {
		col := markerColors[i%len(markerColors)]
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("%dth percentile age of death: %.1f", p.P, p.Age),
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 3},
			XValues: []float64{p.Age, p.Age},
			YValues: []float64{0, maxProb / 2},
		})
	}

	series = append(series, chart.AnnotationSeries{
		Style: chart.Style{StrokeColor: chart.ColorBlack},
		Annotations: []chart.Value2{
			{XValue: ages[0], YValue: maxProb * 0.6, Label: fmt.Sprintf("μ = %.1f years", a.Summary.MeanAge)},
			{XValue: ages[0], YValue: maxProb * 0.54, Label: fmt.Sprintf("σ = %.1f years", a.Summary.StdDev)},
			{XValue: ages[0], YValue: maxProb * 0.48, Label: fmt.Sprintf("n = %s people", groupThousands(a.Summary.People))},
		},
	})

	ch := chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 24}},
		XAxis: chart.XAxis{
			Name: "Age of death",
			// Half a bar of air on each side; also keeps the range valid when
			// every death lands in a single bucket.
			Range: &chart.ContinuousRange{Min: ages[0] - 0.5, Max: ages[len(ages)-1] + 0.5},
		},
		YAxis: chart.YAxis{
			Name:  "Probability of death",
			Range: &chart.ContinuousRange{Min: 0, Max: maxProb * 1.05},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return &domain.OpError{
			Op:   "chartpng.render",
			Kind: domain.KindExecution,
			Path: a.ChartPath,
			Err:  err,
		}
	}
	return nil
}

// RenderFile renders into memory first and writes tmp-then-rename, so a failed
// render never leaves a truncated PNG behind.
func (r *Renderer) RenderFile(path string, a domain.Analysis) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, a); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.OpError{
			Op:   "chartpng.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return &domain.OpError{
			Op:   "chartpng.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{
			Op:   "chartpng.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	return nil
}

// DefaultChartName builds the default output filename for an analysis,
// e.g. "us-total-population-from-37.png".
func DefaultChartName(table string, minAge int) string {
	slug := slugify(table)
	if slug == "" {
		slug = "table"
	}
	return fmt.Sprintf("%s-from-%d.png", slug, minAge)
}

// groupThousands renders 3047552 as "3,047,552".
func groupThousands(n float64) string {
	s := strconv.FormatFloat(n, 'f', 0, 64)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
