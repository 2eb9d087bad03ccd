package usecase

import (
	"context"
	"fmt"

	"github.com/nick-merrill/life-expectancy/internal/domain"
	"github.com/nick-merrill/life-expectancy/internal/ports"
)

// AnalyzeRequest carries the fully resolved parameters of one analysis.
type AnalyzeRequest struct {
	TablePath   string
	MinAge      int
	Optimistic  bool
	Percentiles []int
	ChartPath   string // empty skips chart rendering
}

type Analyze struct {
	tables ports.TableLoader
	charts ports.ChartRenderer
}

func NewAnalyze(tl ports.TableLoader, cr ports.ChartRenderer) *Analyze {
	return &Analyze{tables: tl, charts: cr}
}

// Execute loads the table, conditions the death-age distribution on the
// requested minimum age, summarizes it, and renders the chart when a chart
// path is set.
func (uc *Analyze) Execute(ctx context.Context, req AnalyzeRequest) (domain.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return domain.Analysis{}, err
	}

	for _, p := range req.Percentiles {
		if p < 1 || p > 99 {
			return domain.Analysis{}, &domain.OpError{
				Op:   "analyze.request",
				Kind: domain.KindInvalidInput,
				Err:  fmt.Errorf("percentile %d outside [1, 99]: %w", p, domain.ErrInvalidInput),
			}
		}
	}

	table, err := uc.tables.LoadTable(req.TablePath)
	if err != nil {
		return domain.Analysis{}, err
	}

	var distOpts []domain.DistOption
	if req.Optimistic {
		distOpts = append(distOpts, domain.WithTailSpread())
	}
	dist, err := domain.NewConditional(table, req.MinAge, distOpts...)
	if err != nil {
		return domain.Analysis{}, err
	}

	sumOpts := []domain.SummaryOption{domain.WithPercentiles(req.Percentiles...)}
	if req.Optimistic {
		sumOpts = append(sumOpts, domain.WithMidyear())
	}

	a := domain.Analysis{
		Table:        table.Name,
		TablePath:    req.TablePath,
		Optimistic:   req.Optimistic,
		Distribution: dist,
		Summary:      domain.Summarize(dist, sumOpts...),
	}

	if req.ChartPath != "" {
		if err := ctx.Err(); err != nil {
			return domain.Analysis{}, err
		}
		if err := uc.charts.RenderFile(req.ChartPath, a); err != nil {
			return domain.Analysis{}, err
		}
		a.ChartPath = req.ChartPath
	}

	return a, nil
}
