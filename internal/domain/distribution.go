package domain

import (
	"fmt"
	"math"
	"strconv"
)

// tailSpreadSpan bounds how far past the terminal age the optimistic tail
// spread may extend.
const tailSpreadSpan = 10

// Bucket assigns a share of the cohort's deaths to one age interval.
type Bucket struct {
	Age    int     `json:"age"`
	Label  string  `json:"label"`
	Deaths float64 `json:"deaths"` // cohort deaths within the interval
	Prob   float64 `json:"prob"`   // share of all deaths at or above MinAge
}

// ConditionalDistribution is the distribution of age at death given survival
// to MinAge. Buckets are ordered by age and their probabilities sum to 1.
type ConditionalDistribution struct {
	MinAge  int      `json:"min_age"`
	Buckets []Bucket `json:"buckets"`
}

type distOptions struct {
	spreadTail bool
}

// DistOption configures NewConditional.
type DistOption func(*distOptions)

// WithTailSpread redistributes an oversized terminal bucket forward, assuming
// deaths keep falling at the rate observed between the two preceding buckets.
// CDC tables lump everyone reaching the terminal age into one bucket; the
// spread trades that cliff for a decaying tail.
func WithTailSpread() DistOption {
	return func(o *distOptions) { o.spreadTail = true }
}

// NewConditional derives the distribution of age at death conditioned on
// survival to minAge: deaths within [age, age+1) are lx(age) − lx(age+1),
// the terminal bucket absorbs everyone still alive, and the counts are
// normalized so the probabilities sum to 1 (dividing by lx(minAge) unless a
// tail spread rewrote the counts).
func NewConditional(t LifeTable, minAge int, opts ...DistOption) (ConditionalDistribution, error) {
	var o distOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := t.Validate(); err != nil {
		return ConditionalDistribution{}, err
	}

	if minAge > t.MaxAge() {
		return ConditionalDistribution{}, &OpError{
			Op:   "distribution.condition",
			Kind: KindOutOfRange,
			Path: t.Path,
			Err:  fmt.Errorf("min age %d exceeds the table maximum %d: %w", minAge, t.MaxAge(), ErrOutOfRange),
		}
	}

	start := -1
	for i, r := range t.Rows {
		if r.Age == minAge {
			start = i
			break
		}
	}
	if start < 0 {
		return ConditionalDistribution{}, &OpError{
			Op:   "distribution.condition",
			Kind: KindOutOfRange,
			Path: t.Path,
			Err:  fmt.Errorf("table has no row for age %d: %w", minAge, ErrOutOfRange),
		}
	}

	rows := t.Rows[start:]
	if rows[0].Survivors <= 0 {
		return ConditionalDistribution{}, &OpError{
			Op:   "distribution.condition",
			Kind: KindOutOfRange,
			Path: t.Path,
			Err:  fmt.Errorf("no survivors at age %d, conditioning is undefined: %w", minAge, ErrOutOfRange),
		}
	}

	buckets := make([]Bucket, 0, len(rows))
	for i, r := range rows {
		deaths := r.Survivors // terminal bucket absorbs everyone still alive
		if i+1 < len(rows) {
			deaths = r.Survivors - rows[i+1].Survivors
		}
		buckets = append(buckets, Bucket{Age: r.Age, Label: r.Label, Deaths: deaths})
	}

	if o.spreadTail {
		buckets = spreadTail(buckets)
	}

	total := 0.0
	for i := range buckets {
		total += buckets[i].Deaths
	}
	for i := range buckets {
		buckets[i].Prob = buckets[i].Deaths / total
	}

	return ConditionalDistribution{MinAge: minAge, Buckets: buckets}, nil
}

// spreadTail rewrites the terminal bucket when it holds more deaths than the
// bucket before it: the pile is paid out year by year at the decay rate
// deaths[-2]/deaths[-3], truncated to whole deaths, stopping once the pile is
// empty or the age runs tailSpreadSpan years past the original terminal age.
// Whatever remains at the cap stays in the last bucket so no mass is lost.
func spreadTail(buckets []Bucket) []Bucket {
	n := len(buckets)
	if n < 3 {
		return buckets
	}

	last, prev, before := buckets[n-1], buckets[n-2], buckets[n-3]
	if last.Deaths <= prev.Deaths || before.Deaths <= 0 {
		return buckets
	}

	rate := prev.Deaths / before.Deaths
	capAge := last.Age + tailSpreadSpan

	out := buckets[:n-1]
	remaining := last.Deaths
	prevDeaths := prev.Deaths
	age := last.Age
	for remaining > 0 {
		deaths := math.Min(remaining, math.Max(0, math.Trunc(prevDeaths*rate)))
		out = append(out, Bucket{Age: age, Label: strconv.Itoa(age), Deaths: deaths})
		remaining -= deaths
		prevDeaths = deaths
		age++
		if age > capAge {
			break
		}
	}
	if remaining > 0 {
		out[len(out)-1].Deaths += remaining
	}

	return out
}

// Total returns the probability mass across all buckets.
func (d ConditionalDistribution) Total() float64 {
	sum := 0.0
	for _, b := range d.Buckets {
		sum += b.Prob
	}
	return sum
}

// CohortSize returns the total number of deaths the distribution was scaled
// from; without a tail spread this equals lx(MinAge).
func (d ConditionalDistribution) CohortSize() float64 {
	sum := 0.0
	for _, b := range d.Buckets {
		sum += b.Deaths
	}
	return sum
}

// ProbAt returns the death probability of the bucket starting at age, or 0 if
// no such bucket exists.
func (d ConditionalDistribution) ProbAt(age int) float64 {
	for _, b := range d.Buckets {
		if b.Age == age {
			return b.Prob
		}
		if b.Age > age {
			break
		}
	}
	return 0
}

// ExpectedRemainingYears returns Σ (age − MinAge) × P(death at age), the
// documented expected-remaining-life formula.
func (d ConditionalDistribution) ExpectedRemainingYears() float64 {
	sum := 0.0
	for _, b := range d.Buckets {
		sum += float64(b.Age-d.MinAge) * b.Prob
	}
	return sum
}
