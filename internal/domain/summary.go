package domain

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WeeksPerYear converts remaining years into the whole weeks quoted in summaries.
const WeeksPerYear = 52

// DefaultPercentiles are the cumulative cut points reported when none are configured.
var DefaultPercentiles = []int{10, 50, 90}

// Percentile is one cumulative cut point of the death-age distribution: by
// age Age, P percent of the conditioned cohort has died.
type Percentile struct {
	P   int     `json:"p"`
	Age float64 `json:"age"`
}

// Summary holds the headline statistics of a conditional distribution.
type Summary struct {
	MinAge      int          `json:"min_age"`
	People      float64      `json:"people"`     // cohort deaths behind the distribution
	MeanAge     float64      `json:"mean_age"`   // death-weighted mean age at death
	StdDev      float64      `json:"std_dev"`    // population standard deviation
	YearsLeft   float64      `json:"years_left"` // Σ (age − min_age) × P(death at age)
	Percentiles []Percentile `json:"percentiles"`
	Midyear     bool         `json:"midyear"` // percentile ages carry the +0.5y midyear shift
}

type summaryOptions struct {
	percentiles []int
	midyear     bool
}

// SummaryOption configures Summarize.
type SummaryOption func(*summaryOptions)

// WithPercentiles overrides the reported percentile set.
func WithPercentiles(ps ...int) SummaryOption {
	return func(o *summaryOptions) {
		if len(ps) > 0 {
			o.percentiles = ps
		}
	}
}

// WithMidyear shifts percentile lookups half a year forward, on the assumption
// that deaths fall in the middle of the age year rather than at its start.
// The mean and standard deviation are left unshifted.
func WithMidyear() SummaryOption {
	return func(o *summaryOptions) { o.midyear = true }
}

// Summarize computes the summary statistics of a conditional distribution.
// Percentile ages are read off the empirical cumulative distribution: the
// first age whose cumulative death share reaches the requested fraction.
func Summarize(d ConditionalDistribution, opts ...SummaryOption) Summary {
	o := summaryOptions{percentiles: DefaultPercentiles}
	for _, opt := range opts {
		opt(&o)
	}

	ages := make([]float64, len(d.Buckets))
	weights := make([]float64, len(d.Buckets))
	for i, b := range d.Buckets {
		ages[i] = float64(b.Age)
		weights[i] = b.Deaths
	}

	s := Summary{
		MinAge:    d.MinAge,
		People:    floats.Sum(weights),
		MeanAge:   stat.Mean(ages, weights),
		StdDev:    stat.PopStdDev(ages, weights),
		YearsLeft: d.ExpectedRemainingYears(),
		Midyear:   o.midyear,
	}

	qAges := ages
	if o.midyear {
		qAges = make([]float64, len(ages))
		for i, a := range ages {
			qAges[i] = a + 0.5
		}
	}
	for _, p := range o.percentiles {
		s.Percentiles = append(s.Percentiles, Percentile{
			P:   p,
			Age: stat.Quantile(float64(p)/100, stat.Empirical, qAges, weights),
		})
	}

	return s
}

// YearsUntil returns the remaining years from the summary's min age to the
// percentile's age of death.
func (s Summary) YearsUntil(p Percentile) float64 {
	return p.Age - float64(s.MinAge)
}

// WeeksUntil returns YearsUntil converted to weeks.
func (s Summary) WeeksUntil(p Percentile) float64 {
	return s.YearsUntil(p) * WeeksPerYear
}
